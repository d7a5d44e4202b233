package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/cache"
	"github.com/petvend/site/internal/metrics"
	"github.com/petvend/site/internal/middleware"
	"github.com/petvend/site/internal/models"
	"github.com/petvend/site/internal/rpc"
	"github.com/petvend/site/internal/storage/sqlite"
)

const (
	adminEmail    = "ops@petvend.example"
	adminPassword = "correct-horse-battery"
)

type testEnv struct {
	calc  *rpc.CalculatorServiceClient
	leads *rpc.LeadServiceClient
	auth  *rpc.AuthServiceClient

	store   *sqlite.SQLiteStore
	cache   *cache.LRU
	metrics *metrics.Metrics
	jwt     *auth.JWTManager
	admin   *models.User
	logs    *bytes.Buffer
}

type testOptions struct {
	sink LeadSink
}

// setupTestServer starts all three services behind the real interceptors,
// backed by a temporary SQLite database.
func setupTestServer(t *testing.T, opts testOptions) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	lru, err := cache.NewLRU(64)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := metrics.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	admin, err := authenticator.Register(context.Background(), adminEmail, "Ops", adminPassword)
	require.NoError(t, err)

	sink := opts.sink
	if sink == nil {
		sink = StoreSink{Store: store}
	}

	handlerOpts := rpc.HandlerOptions(
		middleware.LoggingInterceptor(logger, m),
		middleware.RequireAuth(jwtManager, rpc.PublicProcedures),
	)

	mux := http.NewServeMux()
	mux.Handle(rpc.NewCalculatorServiceHandler(NewCalculatorService(lru, m, logger), handlerOpts...))
	mux.Handle(rpc.NewLeadServiceHandler(NewLeadService(sink, store, m, logger), handlerOpts...))
	mux.Handle(rpc.NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, logger), handlerOpts...))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		calc:    rpc.NewCalculatorServiceClient(http.DefaultClient, server.URL),
		leads:   rpc.NewLeadServiceClient(http.DefaultClient, server.URL),
		auth:    rpc.NewAuthServiceClient(http.DefaultClient, server.URL),
		store:   store,
		cache:   lru,
		metrics: m,
		jwt:     jwtManager,
		admin:   admin,
		logs:    logs,
	}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.jwt.Generate(e.admin)
	require.NoError(t, err)
	return token
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
