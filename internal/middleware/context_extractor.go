// internal/middleware/context_extractor.go
package middleware

import (
	"context"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// ContextKeys for storing request metadata
type ContextKey string

const (
	ContextKeyIPAddress ContextKey = "ip_address"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyRequestID ContextKey = "request_id"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// ClientInfo holds what is known about the client of a request.
type ClientInfo struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// ClientInfoMiddleware stores client metadata in the request context and echoes the
// request id. An incoming X-Request-ID is kept.
func ClientInfoMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := withClientInfo(c.Request.Context(), ClientInfo{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UnaryClientInfo is the gRPC counterpart of ClientInfoMiddleware.
func UnaryClientInfo() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		return handler(withClientInfo(ctx, ClientInfo{
			IPAddress: extractIPAddress(ctx),
			UserAgent: extractUserAgent(ctx),
			RequestID: uuid.NewString(),
		}), req)
	}
}

func withClientInfo(ctx context.Context, info ClientInfo) context.Context {
	if info.IPAddress != "" {
		ctx = context.WithValue(ctx, ContextKeyIPAddress, info.IPAddress)
	}
	if info.UserAgent != "" {
		ctx = context.WithValue(ctx, ContextKeyUserAgent, info.UserAgent)
	}
	return context.WithValue(ctx, ContextKeyRequestID, info.RequestID)
}

// extractIPAddress extracts the client IP address from the context
func extractIPAddress(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok {
		return ""
	}
	if tcpAddr, ok := p.Addr.(*net.TCPAddr); ok {
		return tcpAddr.IP.String()
	}

	addr := p.Addr.String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// extractUserAgent extracts the user agent from gRPC metadata
func extractUserAgent(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, header := range []string{"user-agent", "grpc-user-agent", "x-user-agent"} {
		if values := md.Get(header); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// GetClientInfoFromContext extracts all client information from context
func GetClientInfoFromContext(ctx context.Context) ClientInfo {
	var info ClientInfo
	info.IPAddress, _ = ctx.Value(ContextKeyIPAddress).(string)
	info.UserAgent, _ = ctx.Value(ContextKeyUserAgent).(string)
	info.RequestID, _ = ctx.Value(ContextKeyRequestID).(string)
	return info
}
