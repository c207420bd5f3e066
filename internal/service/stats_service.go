package service

import (
	"context"
	"fmt"

	"github.com/umutkarci/notify-manager/internal/cache"
	"github.com/umutkarci/notify-manager/internal/domain"
	"github.com/umutkarci/notify-manager/internal/repository"
	"go.uber.org/zap"
)

// StatsService serves per-account delivery aggregates with a short
// cache in front. Dispatches evict the cached entry, so figures are
// fresh after each send and at worst the cache TTL stale otherwise.
type StatsService struct {
	destinations repository.DestinationRepository
	deliveries   repository.DeliveryRepository
	cache        *cache.Cache
	logger       *zap.Logger
}

func NewStatsService(
	destinations repository.DestinationRepository,
	deliveries repository.DeliveryRepository,
	c *cache.Cache,
	logger *zap.Logger,
) (*StatsService, error) {
	if destinations == nil || deliveries == nil {
		return nil, fmt.Errorf("destination and delivery repositories are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		destinations: destinations,
		deliveries:   deliveries,
		cache:        c,
		logger:       logger,
	}, nil
}

func (s *StatsService) Get(ctx context.Context, accountID string) (*domain.AccountStats, error) {
	if cached, ok := s.cache.GetStats(ctx, accountID); ok {
		return cached, nil
	}

	destinationCount, err := s.destinations.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	succeeded, err := s.deliveries.CountByStatus(ctx, accountID, domain.DeliverySuccess)
	if err != nil {
		return nil, err
	}
	failed, err := s.deliveries.CountByStatus(ctx, accountID, domain.DeliveryFailed)
	if err != nil {
		return nil, err
	}

	stats := &domain.AccountStats{
		TotalDestinations: destinationCount,
		SuccessCount:      succeeded,
		FailedCount:       failed,
		TotalCount:        succeeded + failed,
	}
	s.cache.SetStats(ctx, accountID, stats)
	return stats, nil
}
