// internal/service/stats_service.go
package service

import (
	"context"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/repository"
)

// StatsService computes the system-wide snapshot. Nothing is cached.
type StatsService struct {
	base
}

func NewStatsService(store *repository.Store, opts ...Option) *StatsService {
	return &StatsService{base: newBase(store, opts)}
}

// Snapshot is available to any resolved caller; it is not owner-scoped.
func (s *StatsService) Snapshot(ctx context.Context, caller Caller) (*models.Stats, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	stats, err := s.store.Repos().Stats.Snapshot(ctx, s.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &stats, nil
}
