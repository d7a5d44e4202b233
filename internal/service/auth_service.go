package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/middleware"
	"github.com/petvend/site/internal/rpc"
)

// ErrSignInUnavailable is returned when the server runs without a database.
var ErrSignInUnavailable = errors.New("admin sign-in requires a database")

// AuthService implements the AuthService RPC interface for admin sign-in.
type AuthService struct {
	authenticator auth.Authenticator
	users         auth.UserStorage
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

var _ rpc.AuthServiceHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users auth.UserStorage, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Login authenticates an admin and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[rpc.LoginRequest]) (*connect.Response[rpc.LoginResponse], error) {
	email := strings.ToLower(strings.TrimSpace(req.Msg.Email))
	s.logger.Info("Login request", "email", email)

	if email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	if s.authenticator == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrSignInUnavailable)
	}

	user, err := s.authenticator.Authenticate(ctx, email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Admin logged in", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&rpc.LoginResponse{
		Token: token,
		User:  rpc.UserFromModel(user),
	}), nil
}

// GetCurrentUser returns the signed-in admin's account.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[rpc.GetCurrentUserRequest]) (*connect.Response[rpc.GetCurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	if s.users == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrSignInUnavailable)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load current user", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if user == nil {
		// The account was removed after the token was issued.
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("account no longer exists"))
	}

	return connect.NewResponse(&rpc.GetCurrentUserResponse{User: rpc.UserFromModel(user)}), nil
}
