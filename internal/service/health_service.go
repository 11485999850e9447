// internal/service/health_service.go
package service

import (
	"context"
	"time"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/repository"
)

// Version is reported by the health check.
const Version = "1.0.0"

const probeTimeout = 3 * time.Second

type HealthReport struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Database    string    `json:"database"`
	Environment string    `json:"environment"`
}

type HealthService struct {
	base
	environment string
}

func NewHealthService(store *repository.Store, environment string, opts ...Option) *HealthService {
	return &HealthService{base: newBase(store, opts), environment: environment}
}

// Check verifies store connectivity. It needs no caller.
func (s *HealthService) Check(ctx context.Context) (*HealthReport, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		return nil, apperror.Unavailable(err)
	}
	return &HealthReport{
		Status:      "OK",
		Timestamp:   s.now(),
		Version:     Version,
		Database:    "connected",
		Environment: s.environment,
	}, nil
}
