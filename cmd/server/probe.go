// cmd/server/probe.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/gurkanbulca/taskboard/internal/service"
)

// healthChecker is satisfied by *service.HealthService.
type healthChecker interface {
	Check(ctx context.Context) (*service.HealthReport, error)
}

// statusSetter is satisfied by *health.Server.
type statusSetter interface {
	SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus)
}

// healthProbe periodically mirrors the store health into the gRPC health
// server. The empty service name is the overall status.
type healthProbe struct {
	cron    *cron.Cron
	checker healthChecker
	status  statusSetter
}

func newHealthProbe(checker healthChecker, status statusSetter, interval time.Duration) (*healthProbe, error) {
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		return nil, fmt.Errorf("probe interval must be at least 1s, got %s", interval)
	}

	p := &healthProbe{
		cron:    cron.New(cron.WithSeconds()),
		checker: checker,
		status:  status,
	}
	if _, err := p.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), p.probe); err != nil {
		return nil, err
	}
	return p, nil
}

// Start runs one probe immediately so the status is known before the
// first tick.
func (p *healthProbe) Start() {
	p.probe()
	p.cron.Start()
}

func (p *healthProbe) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

func (p *healthProbe) probe() {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if _, err := p.checker.Check(context.Background()); err != nil {
		log.Printf("[WARN] Health probe failed: %v", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	p.status.SetServingStatus("", status)
}

// storeService is the health service name answered by a live store check
// rather than the last probe result.
const storeService = "taskboard.Store"

// healthGateway serves the standard health API. Checks of storeService run
// the store check and return its error as-is.
type healthGateway struct {
	*health.Server
	checker healthChecker
}

func (g *healthGateway) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if req.GetService() != storeService {
		return g.Server.Check(ctx, req)
	}
	if _, err := g.checker.Check(ctx); err != nil {
		return nil, err
	}
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}
