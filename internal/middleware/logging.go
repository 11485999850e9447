// internal/middleware/logging.go
package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RequestLogger logs one line per request once the handler has finished.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		caller := "-"
		if id := CallerFrom(c).ID; id != uuid.Nil {
			caller = id.String()
		}
		info := GetClientInfoFromContext(c.Request.Context())
		level := "[INFO]"
		if c.Writer.Status() >= 500 {
			level = "[ERROR]"
		}
		log.Printf("%s %s %s %d %s (caller: %s, ip: %s, request: %s)",
			level, c.Request.Method, path, c.Writer.Status(), time.Since(start), caller, info.IPAddress, info.RequestID)
	}
}

// UnaryLogger logs gRPC calls with their status code.
func UnaryLogger() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		client := GetClientInfoFromContext(ctx)
		log.Printf("[INFO] gRPC %s %s %s (ip: %s)", info.FullMethod, status.Code(err), time.Since(start), client.IPAddress)
		return resp, err
	}
}
