package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/umutkarci/notify-manager/internal/adapter"
	"github.com/umutkarci/notify-manager/internal/cache"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/observability"
	"github.com/umutkarci/notify-manager/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSendConcurrency = 8
	minSendConcurrency     = 1
)

// AdapterRegistry resolves a destination to the adapter able to reach
// it, or nil when the platform type is unknown.
type AdapterRegistry interface {
	Resolve(destination domain.Destination) adapter.Adapter
}

// DispatchResult is the per-destination outcome list returned to the
// caller. Partial failure lives here, never in an error.
type DispatchResult struct {
	BatchID  string
	Outcomes []DestinationOutcome
}

type DestinationOutcome struct {
	Destination string
	Platform    string
	Success     bool
	StatusCode  int
}

// DispatchService fans a message out to an account's destinations,
// records every attempt, and aggregates the outcomes.
type DispatchService struct {
	destinations repository.DestinationRepository
	deliveries   repository.DeliveryRepository
	templates    repository.TemplateRepository
	registry     AdapterRegistry
	cache        *cache.Cache
	logger       *zap.Logger
	metrics      *observability.Metrics
	concurrency  int
	now          func() time.Time
}

func NewDispatchService(
	destinations repository.DestinationRepository,
	deliveries repository.DeliveryRepository,
	templates repository.TemplateRepository,
	registry AdapterRegistry,
	c *cache.Cache,
	concurrency int,
	logger *zap.Logger,
) (*DispatchService, error) {
	if destinations == nil {
		return nil, fmt.Errorf("destination repository is required")
	}
	if deliveries == nil {
		return nil, fmt.Errorf("delivery repository is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("adapter registry is required")
	}
	if concurrency < minSendConcurrency {
		concurrency = defaultSendConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DispatchService{
		destinations: destinations,
		deliveries:   deliveries,
		templates:    templates,
		registry:     registry,
		cache:        c,
		logger:       logger,
		concurrency:  concurrency,
		now:          time.Now,
	}, nil
}

func (s *DispatchService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Dispatch sends message to the account's active destinations. When
// destinationName is non-empty only destinations with that name are
// addressed. template, when non-nil, marks a templated send whose
// usage counter is incremented after the audit write.
func (s *DispatchService) Dispatch(
	ctx context.Context,
	account *domain.Account,
	message string,
	destinationName string,
	template *domain.Template,
) (*DispatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account is required", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	candidates, err := s.resolveDestinations(ctx, account.ID, destinationName)
	if err != nil {
		return nil, err
	}

	// Unknown platform types are excluded from the attempt set as if
	// inactive: no outcome, no record.
	type target struct {
		destination domain.Destination
		send        adapter.Adapter
	}
	targets := make([]target, 0, len(candidates))
	for _, destination := range candidates {
		a := s.registry.Resolve(destination)
		if a == nil {
			s.logger.Debug("skipping destination with unknown platform",
				zap.String("destinationId", destination.ID),
				zap.String("platform", destination.Platform.String()),
			)
			continue
		}
		targets = append(targets, target{destination: destination, send: a})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no usable destination", domain.ErrNotFound)
	}

	batchID := uuid.NewString()
	outcomes := make([]adapter.Outcome, len(targets))

	// Fan out with a bounded worker set; outcomes land at the target's
	// index so the result order stays stable regardless of completion
	// order.
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range targets {
		g.Go(func() error {
			t := targets[i]
			platform := t.destination.Platform.String()
			if s.metrics != nil {
				s.metrics.IncDispatchInFlight(platform)
				defer s.metrics.DecDispatchInFlight(platform)
			}

			start := s.now()
			outcomes[i] = t.send.Send(groupCtx, message)
			if s.metrics != nil {
				s.metrics.ObserveDeliveryDuration(platform, s.now().Sub(start))
				s.metrics.IncDelivery(platform, outcomes[i].Success)
			}
			return nil
		})
	}
	// Send errors are folded into outcomes; the group never returns one.
	_ = g.Wait()

	records := make([]domain.DeliveryRecord, 0, len(targets))
	results := make([]DestinationOutcome, 0, len(targets))
	sentAt := s.now().UTC()
	for i, t := range targets {
		outcome := outcomes[i]
		record := domain.DeliveryRecord{
			ID:            uuid.NewString(),
			AccountID:     account.ID,
			DestinationID: t.destination.ID,
			BatchID:       batchID,
			Message:       message,
			Status:        domain.DeliverySuccess,
			StatusCode:    outcome.StatusCode,
			SentAt:        sentAt,
		}
		if template != nil {
			id := template.ID
			record.TemplateID = &id
		}
		if !outcome.Success {
			record.Status = domain.DeliveryFailed
			response := outcome.Response
			record.ErrorMessage = &response
		}
		records = append(records, record)

		results = append(results, DestinationOutcome{
			Destination: t.destination.Name,
			Platform:    t.destination.Platform.String(),
			Success:     outcome.Success,
			StatusCode:  outcome.StatusCode,
		})
	}

	if err := s.deliveries.CreateBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to persist delivery records: %w", err)
	}

	if template != nil && s.templates != nil {
		if err := s.templates.IncrementUsage(ctx, template.ID); err != nil {
			s.logger.Warn("failed to increment template usage",
				zap.String("templateId", template.ID),
				zap.Error(err),
			)
		}
	}

	s.cache.EvictStats(ctx, account.ID)

	return &DispatchResult{BatchID: batchID, Outcomes: results}, nil
}

func (s *DispatchService) resolveDestinations(ctx context.Context, accountID string, name string) ([]domain.Destination, error) {
	name = strings.TrimSpace(name)

	var (
		destinations []domain.Destination
		err          error
	)
	if name != "" {
		destinations, err = s.destinations.ListActiveByName(ctx, accountID, name)
	} else {
		destinations, err = s.destinations.ListActive(ctx, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destinations: %w", err)
	}

	if len(destinations) == 0 {
		if name != "" {
			return nil, fmt.Errorf("%w: no active destination named %q", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: no usable destination", domain.ErrNotFound)
	}

	return destinations, nil
}
