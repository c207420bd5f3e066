package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/umutkarci/notify-manager/internal/adapter"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/repository"
	"go.uber.org/zap"
)

// DestinationService manages an account's configured endpoints and
// can fire a one-off test message through the real adapter without
// writing a delivery record.
type DestinationService struct {
	destinations repository.DestinationRepository
	registry     AdapterRegistry
	logger       *zap.Logger
}

func NewDestinationService(
	destinations repository.DestinationRepository,
	registry AdapterRegistry,
	logger *zap.Logger,
) (*DestinationService, error) {
	if destinations == nil {
		return nil, fmt.Errorf("destination repository is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("adapter registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DestinationService{
		destinations: destinations,
		registry:     registry,
		logger:       logger,
	}, nil
}

type DestinationInput struct {
	Name     string
	Platform string
	Endpoint string
	Secret   *string
	IsActive *bool
}

func (s *DestinationService) Create(ctx context.Context, accountID string, input DestinationInput) (*domain.Destination, error) {
	platform, err := domain.ParsePlatformFromString(input.Platform)
	if err != nil {
		return nil, err
	}

	destination := &domain.Destination{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Name:      strings.TrimSpace(input.Name),
		Platform:  platform,
		Endpoint:  strings.TrimSpace(input.Endpoint),
		Secret:    input.Secret,
		IsActive:  true,
	}
	if input.IsActive != nil {
		destination.IsActive = *input.IsActive
	}
	if err := destination.Validate(); err != nil {
		return nil, err
	}

	if err := s.destinations.Create(ctx, destination); err != nil {
		return nil, err
	}
	s.logger.Info("destination created",
		zap.String("destinationId", destination.ID),
		zap.String("platform", destination.Platform.String()),
	)
	return destination, nil
}

func (s *DestinationService) List(ctx context.Context, accountID string) ([]domain.Destination, error) {
	return s.destinations.ListByAccount(ctx, accountID)
}

func (s *DestinationService) GetOwned(ctx context.Context, accountID string, id string) (*domain.Destination, error) {
	destination, err := s.destinations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if destination.AccountID != accountID {
		return nil, fmt.Errorf("%w: destination %s", domain.ErrNotFound, id)
	}
	return destination, nil
}

// Update applies the input to an owned destination. Empty input fields
// keep their current values; IsActive only changes when set.
func (s *DestinationService) Update(ctx context.Context, accountID string, id string, input DestinationInput) (*domain.Destination, error) {
	destination, err := s.GetOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		destination.Name = name
	}
	if input.Platform != "" {
		platform, err := domain.ParsePlatformFromString(input.Platform)
		if err != nil {
			return nil, err
		}
		destination.Platform = platform
	}
	if endpoint := strings.TrimSpace(input.Endpoint); endpoint != "" {
		destination.Endpoint = endpoint
	}
	if input.Secret != nil {
		destination.Secret = input.Secret
	}
	if input.IsActive != nil {
		destination.IsActive = *input.IsActive
	}

	if err := destination.Validate(); err != nil {
		return nil, err
	}
	if err := s.destinations.Update(ctx, destination); err != nil {
		return nil, err
	}
	return destination, nil
}

func (s *DestinationService) Delete(ctx context.Context, accountID string, id string) error {
	return s.destinations.Delete(ctx, accountID, id)
}

// Test sends a canned message through the destination's adapter and
// returns the raw outcome. Test sends are not recorded as deliveries.
func (s *DestinationService) Test(ctx context.Context, accountID string, id string) (*adapter.Outcome, error) {
	destination, err := s.GetOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	send := s.registry.Resolve(*destination)
	if send == nil {
		return nil, fmt.Errorf("%w: unsupported platform %q", domain.ErrValidation, destination.Platform)
	}

	outcome := send.Send(ctx, "This is a test message from notify-manager.")
	s.logger.Info("destination test send finished",
		zap.String("destinationId", destination.ID),
		zap.Bool("success", outcome.Success),
		zap.Int("statusCode", outcome.StatusCode),
	)
	return &outcome, nil
}
