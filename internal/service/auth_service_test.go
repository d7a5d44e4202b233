package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petvend/site/internal/middleware"
	"github.com/petvend/site/internal/rpc"
)

func contextWithAdmin() context.Context {
	return middleware.WithUser(context.Background(), "admin-id", adminEmail)
}

func TestLogin(t *testing.T) {
	env := setupTestServer(t, testOptions{})
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
			Email:    "OPS@petvend.example",
			Password: adminPassword,
		}))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Msg.Token)
		assert.Equal(t, env.admin.ID, resp.Msg.User.ID)
		assert.Equal(t, adminEmail, resp.Msg.User.Email)

		claims, err := env.jwt.Validate(resp.Msg.Token)
		require.NoError(t, err)
		assert.Equal(t, env.admin.ID, claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
			Email:    adminEmail,
			Password: "wrong-password",
		}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
			Email:    "nobody@petvend.example",
			Password: adminPassword,
		}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestGetCurrentUser(t *testing.T) {
	env := setupTestServer(t, testOptions{})
	ctx := context.Background()

	_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&rpc.GetCurrentUserRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	resp, err := env.auth.GetCurrentUser(ctx, withToken(&rpc.GetCurrentUserRequest{}, env.adminToken(t)))
	require.NoError(t, err)
	assert.Equal(t, env.admin.ID, resp.Msg.User.ID)
	assert.Equal(t, "Ops", resp.Msg.User.DisplayName)
	assert.NotZero(t, resp.Msg.User.CreatedAt)
}

func TestGetCurrentUserDeletedAccount(t *testing.T) {
	env := setupTestServer(t, testOptions{})
	svc := NewAuthService(nil, env.store, env.jwt, discardLogger())

	_, err := svc.GetCurrentUser(contextWithAdmin(), connect.NewRequest(&rpc.GetCurrentUserRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestAuthWithoutDatabase(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, discardLogger())

	_, err := svc.Login(context.Background(), connect.NewRequest(&rpc.LoginRequest{
		Email:    adminEmail,
		Password: adminPassword,
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = svc.GetCurrentUser(contextWithAdmin(), connect.NewRequest(&rpc.GetCurrentUserRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}
