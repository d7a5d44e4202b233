package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/metrics"
	"github.com/petvend/site/internal/models"
	"github.com/petvend/site/internal/rpc"
)

type whoAmI struct {
	UserID string `json:"userId"`
}

const (
	publicProcedure  = "/test.v1.Test/Public"
	privateProcedure = "/test.v1.Test/Private"
)

func newAuthServer(t *testing.T, jwtManager *auth.JWTManager, logs io.Writer) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts := rpc.HandlerOptions(
		LoggingInterceptor(logger, metrics.New()),
		RequireAuth(jwtManager, map[string]bool{publicProcedure: true}),
	)
	handle := func(ctx context.Context, req *connect.Request[struct{}]) (*connect.Response[whoAmI], error) {
		return connect.NewResponse(&whoAmI{UserID: GetUserID(ctx)}), nil
	}

	mux := http.NewServeMux()
	mux.Handle(publicProcedure, connect.NewUnaryHandler(publicProcedure, handle, opts...))
	mux.Handle(privateProcedure, connect.NewUnaryHandler(privateProcedure, handle, opts...))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, procedure, token string) (*whoAmI, error) {
	t.Helper()

	client := connect.NewClient[struct{}, whoAmI](http.DefaultClient, server.URL+procedure, rpc.ClientOptions()...)
	req := connect.NewRequest(&struct{}{})
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	var logs bytes.Buffer
	server := newAuthServer(t, jwtManager, &logs)

	admin := models.NewUser("admin@petvend.example", "Admin", "")
	token, err := jwtManager.Generate(admin)
	require.NoError(t, err)

	t.Run("public without token", func(t *testing.T) {
		msg, err := call(t, server, publicProcedure, "")
		require.NoError(t, err)
		assert.Empty(t, msg.UserID)
	})

	t.Run("public with token gets identity", func(t *testing.T) {
		msg, err := call(t, server, publicProcedure, token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, msg.UserID)
	})

	t.Run("private without token", func(t *testing.T) {
		_, err := call(t, server, privateProcedure, "")
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("private with bad token", func(t *testing.T) {
		_, err := call(t, server, privateProcedure, "garbage")
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("private with token", func(t *testing.T) {
		msg, err := call(t, server, privateProcedure, token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, msg.UserID)
	})

	assert.Contains(t, logs.String(), "RPC error")
	assert.Contains(t, logs.String(), "RPC ok")
}

func TestRequestLoggingCapturesStatus(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	h := RequestLogging(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	assert.Contains(t, logs.String(), `"status":418`)
	assert.Contains(t, logs.String(), `"path":"/brew"`)
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	h := SecurityHeaders(CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "preflight short-circuits")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCompression(t *testing.T) {
	body := strings.Repeat("fresh food for happy pets ", 200)
	compress, err := Compression(1024)
	require.NoError(t, err)
	h := compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, body)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Less(t, rec.Body.Len(), len(body))
}

func TestCompressionRejectsNegativeMinSize(t *testing.T) {
	compress, err := Compression(-1)
	require.Error(t, err)
	assert.Nil(t, compress)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, nil)
	defer rl.Stop()

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = ip + ":12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"), "clients are limited independently")

	rl.now = func() time.Time { return time.Now().Add(2 * limiterIdleTimeout) }
	rl.evictIdle()
	rl.mu.Lock()
	assert.Empty(t, rl.clients)
	rl.mu.Unlock()

	rl.Stop()
}

func TestRateLimiterIgnoresForgedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Stop()

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	accepted := 0
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "198.51.100.4:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			accepted++
		}
	}

	assert.Equal(t, 1, accepted, "a rotating header must not reset the bucket")
	rl.mu.Lock()
	assert.Len(t, rl.clients, 1)
	rl.mu.Unlock()
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", ""})
	require.NoError(t, err)

	tests := []struct {
		name       string
		proxies    *TrustedProxies
		remoteAddr string
		forwarded  []string
		want       string
	}{
		{"no proxies configured", nil, "192.0.2.7:4000", nil, "192.0.2.7"},
		{"header ignored without trusted proxies", nil, "192.0.2.7:4000", []string{"203.0.113.9"}, "192.0.2.7"},
		{"header ignored from untrusted peer", proxies, "198.51.100.4:4000", []string{"203.0.113.9"}, "198.51.100.4"},
		{"trusted peer forwards client", proxies, "10.1.2.3:4000", []string{"203.0.113.9"}, "203.0.113.9"},
		{"bare address is trusted", proxies, "192.0.2.1:4000", []string{"203.0.113.9"}, "203.0.113.9"},
		{"spoofed leftmost hop is skipped", proxies, "10.1.2.3:4000", []string{"1.2.3.4, 203.0.113.9, 10.0.0.5"}, "203.0.113.9"},
		{"repeated headers are joined", proxies, "10.1.2.3:4000", []string{"1.2.3.4", "203.0.113.9"}, "203.0.113.9"},
		{"malformed hop stops the walk", proxies, "10.1.2.3:4000", []string{"203.0.113.9, junk, 10.0.0.5"}, "10.0.0.5"},
		{"trusted peer without header", proxies, "10.1.2.3:4000", nil, "10.1.2.3"},
		{"remote addr without port", nil, "192.0.2.7", nil, "192.0.2.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for _, v := range tt.forwarded {
				req.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, tt.proxies.ClientIP(req))
		})
	}
}

func TestParseTrustedProxiesRejectsGarbage(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}
