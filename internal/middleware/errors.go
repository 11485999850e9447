// internal/middleware/errors.go
package middleware

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/gurkanbulca/taskboard/internal/apperror"
)

// UnaryErrors turns handler errors into gRPC statuses. Application errors
// keep their code and field violations; anything unclassified becomes
// Internal with its cause logged, not sent.
func UnaryErrors() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			if appErr.Kind == apperror.KindInternal {
				log.Printf("[ERROR] gRPC %s: %v", info.FullMethod, err)
			}
			return resp, appErr.GRPCStatus().Err()
		}
		if _, ok := status.FromError(err); ok {
			return resp, err
		}
		log.Printf("[ERROR] gRPC %s: %v", info.FullMethod, err)
		return resp, apperror.Internal(err).GRPCStatus().Err()
	}
}
