// internal/middleware/errors_test.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gurkanbulca/taskboard/internal/apperror"
)

func TestUnaryErrors(t *testing.T) {
	interceptor := UnaryErrors()
	info := &grpc.UnaryServerInfo{FullMethod: "/taskboard.Test/Call"}
	call := func(err error) error {
		_, out := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
			return nil, err
		})
		return out
	}

	t.Run("success", func(t *testing.T) {
		assert.NoError(t, call(nil))
	})

	t.Run("validation keeps field violations", func(t *testing.T) {
		err := call(fmt.Errorf("create: %w", apperror.Validation(apperror.Violation{Field: "name", Message: "can't be blank"})))
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.InvalidArgument, st.Code())

		require.Len(t, st.Details(), 1)
		br, ok := st.Details()[0].(*errdetails.BadRequest)
		require.True(t, ok)
		require.Len(t, br.GetFieldViolations(), 1)
		assert.Equal(t, "name", br.GetFieldViolations()[0].GetField())
		assert.Equal(t, "can't be blank", br.GetFieldViolations()[0].GetDescription())
	})

	t.Run("store unavailable", func(t *testing.T) {
		err := call(apperror.Unavailable(errors.New("dial tcp: connection refused")))
		assert.Equal(t, codes.Unavailable, status.Code(err))
		assert.NotContains(t, err.Error(), "connection refused")
	})

	t.Run("foreign error is hidden", func(t *testing.T) {
		err := call(errors.New("pq: relation does not exist"))
		assert.Equal(t, codes.Internal, status.Code(err))
		assert.NotContains(t, err.Error(), "relation")
	})

	t.Run("status errors pass through", func(t *testing.T) {
		err := call(status.Error(codes.NotFound, "unknown service"))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}
