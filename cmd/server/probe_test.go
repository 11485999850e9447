// cmd/server/probe_test.go
package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/middleware"
	"github.com/gurkanbulca/taskboard/internal/service"
)

type fakeChecker struct{ err error }

func (f fakeChecker) Check(context.Context) (*service.HealthReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.HealthReport{Status: "OK"}, nil
}

type recordingStatus struct {
	statuses []grpc_health_v1.HealthCheckResponse_ServingStatus
}

func (r *recordingStatus) SetServingStatus(_ string, s grpc_health_v1.HealthCheckResponse_ServingStatus) {
	r.statuses = append(r.statuses, s)
}

func TestHealthProbe(t *testing.T) {
	t.Run("serving", func(t *testing.T) {
		rec := &recordingStatus{}
		p, err := newHealthProbe(fakeChecker{}, rec, time.Minute)
		require.NoError(t, err)
		p.probe()
		assert.Equal(t, []grpc_health_v1.HealthCheckResponse_ServingStatus{grpc_health_v1.HealthCheckResponse_SERVING}, rec.statuses)
	})

	t.Run("store down", func(t *testing.T) {
		rec := &recordingStatus{}
		p, err := newHealthProbe(fakeChecker{err: errors.New("connection refused")}, rec, time.Minute)
		require.NoError(t, err)
		p.probe()
		assert.Equal(t, []grpc_health_v1.HealthCheckResponse_ServingStatus{grpc_health_v1.HealthCheckResponse_NOT_SERVING}, rec.statuses)
	})

	t.Run("interval below a second", func(t *testing.T) {
		_, err := newHealthProbe(fakeChecker{}, &recordingStatus{}, 500*time.Millisecond)
		assert.Error(t, err)
	})
}

func TestHealthGateway(t *testing.T) {
	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	ctx := context.Background()

	t.Run("overall status comes from the probe", func(t *testing.T) {
		g := &healthGateway{Server: hs, checker: fakeChecker{}}
		resp, err := g.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
	})

	t.Run("store check runs live", func(t *testing.T) {
		g := &healthGateway{Server: hs, checker: fakeChecker{}}
		resp, err := g.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: storeService})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
	})

	t.Run("store down is unavailable", func(t *testing.T) {
		g := &healthGateway{Server: hs, checker: fakeChecker{err: apperror.Unavailable(errors.New("connection refused"))}}
		req := &grpc_health_v1.HealthCheckRequest{Service: storeService}
		_, err := middleware.UnaryErrors()(ctx, req, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
			func(ctx context.Context, req interface{}) (interface{}, error) {
				return g.Check(ctx, req.(*grpc_health_v1.HealthCheckRequest))
			})
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})
}
