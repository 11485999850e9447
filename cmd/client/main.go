// cmd/client/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func main() {
	var (
		addr    string
		service string
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "taskboard-client",
		Short: "Probe a running task board server",
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health endpoint; exits non-zero unless serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return checkHealth(ctx, addr, service)
		},
	}
	healthCmd.Flags().StringVar(&addr, "addr", "localhost:50051", "gRPC server address")
	healthCmd.Flags().StringVar(&service, "service", "", "service name; taskboard.Store runs a live store check")
	healthCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")

	rootCmd.AddCommand(healthCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func checkHealth(ctx context.Context, addr, service string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.Unavailable {
			return fmt.Errorf("server unavailable at %s: %s", addr, st.Message())
		}
		return fmt.Errorf("health check: %w", err)
	}

	fmt.Printf("%s: %s\n", addr, resp.GetStatus())
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("server is %s", resp.GetStatus())
	}
	return nil
}
