package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration and password login. Passwords
// are stored as bcrypt hashes; login failures are indistinguishable
// between unknown user and wrong password.
type AccountService struct {
	accounts repository.AccountRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewAccountService(accounts repository.AccountRepository, logger *zap.Logger) (*AccountService, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{accounts: accounts, logger: logger, now: time.Now}, nil
}

func (s *AccountService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("accountId", account.ID),
		zap.String("username", account.Username),
	)
	return account, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		// Same error whether the user is unknown or the password wrong.
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to record login time", zap.Error(err))
	}
	return account, nil
}
