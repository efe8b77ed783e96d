package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"support-be/internal/cache"
	"support-be/internal/domain"
	"support-be/internal/repository"
	"support-be/pkg/errors"
	"support-be/pkg/logger"
)

// StatsService computes aggregate counters over sessions, escalations and
// messages, behind a single-entry TTL cache so admin polling does not hammer
// the store.
type StatsService struct {
	sessions     repository.SessionRepository
	escalations  repository.EscalationRepository
	messages     repository.MessageRepository
	cache        *cache.TTL[*domain.StatsSnapshot]
	storeTimeout time.Duration
	logger       *logger.Logger
	now          func() time.Time
}

// NewStatsService creates the stats aggregator
func NewStatsService(
	sessions repository.SessionRepository,
	escalations repository.EscalationRepository,
	messages repository.MessageRepository,
	ttl time.Duration,
	storeTimeout time.Duration,
	log *logger.Logger,
) *StatsService {
	return &StatsService{
		sessions:     sessions,
		escalations:  escalations,
		messages:     messages,
		cache:        cache.NewTTL[*domain.StatsSnapshot](ttl),
		storeTimeout: storeTimeout,
		logger:       log.Named("stats"),
		now:          time.Now,
	}
}

// GetStats returns the aggregate snapshot, recomputing when the cached one
// has expired. A failed recompute degrades to the last known value.
func (s *StatsService) GetStats(ctx context.Context) (*domain.StatsSnapshot, cache.Status, error) {
	snapshot, status, err := s.cache.GetOrCompute(ctx, s.now(), s.compute)
	if err != nil {
		if status == cache.StatusStale {
			s.logger.WithError(err).Warn("Stats recompute failed, serving last known snapshot")
			return snapshot, status, nil
		}
		return nil, status, errors.NewServiceUnavailableError("Stats store unavailable", err)
	}
	return snapshot, status, nil
}

// compute issues the count queries in parallel and assembles the snapshot.
// When the session-summary collection is empty (historical data written by
// the legacy message-only path has not been backfilled), total and unique
// counts are derived by scanning raw messages instead.
func (s *StatsService) compute(ctx context.Context) (*domain.StatsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	now := s.now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var totalChats, escalated, pending, today int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalChats, err = s.sessions.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		escalated, err = s.escalations.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.escalations.CountByStatus(gctx, domain.EscalationPending)
		return err
	})
	g.Go(func() error {
		var err error
		today, err = s.messages.CountSince(gctx, startOfToday)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var uniqueUsers int64
	if totalChats == 0 {
		sessions, users, err := s.messages.DistinctCounts(ctx)
		if err != nil {
			return nil, err
		}
		totalChats = sessions
		uniqueUsers = users
	} else {
		users, err := s.sessions.CountDistinctUsers(ctx)
		if err != nil {
			return nil, err
		}
		uniqueUsers = users
	}

	return &domain.StatsSnapshot{
		TotalChats:         totalChats,
		EscalatedChats:     escalated,
		PendingEscalations: pending,
		UniqueUsers:        uniqueUsers,
		TodayChats:         today,
		ComputedAt:         now,
	}, nil
}
