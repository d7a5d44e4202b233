package server

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/cache"
	"github.com/petvend/site/internal/config"
	"github.com/petvend/site/internal/content"
	"github.com/petvend/site/internal/metrics"
	"github.com/petvend/site/internal/models"
	"github.com/petvend/site/internal/rpc"
	"github.com/petvend/site/internal/site"
	"github.com/petvend/site/internal/storage/sqlite"
)

const siteYAML = `
name: PetVend
tagline: Fresh food for pets
description: Fresh pet food vending machines.
baseURL: https://petvend.example
repo: petvend
products:
  - slug: beef-rice
    name: Beef & rice
    description: Lean beef with rice.
    species: [dogs]
    price: 290
    portion: 300 g
`

type options struct {
	githubPages    bool
	withStore      bool
	rateLimit      int
	trustedProxies []string
}

func newTestServer(t *testing.T, opts options) (*Server, *httptest.Server) {
	t.Helper()

	siteCfg, err := site.ParseConfig([]byte(siteYAML), opts.githubPages)
	require.NoError(t, err)
	lib := &content.Library{
		Articles: []models.Article{{
			Slug:  "fresh-food",
			Href:  "/blog/fresh-food",
			Title: "Why fresh food",
			Date:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			HTML:  "<p>Fresh food is better.</p>",
		}},
	}
	renderer, err := site.NewRenderer(siteCfg, lib)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Server.Port = 0
	if opts.rateLimit > 0 {
		cfg.RateLimit.LeadsPerMinute = opts.rateLimit
		cfg.RateLimit.Burst = 1
	}
	cfg.Server.TrustedProxies = opts.trustedProxies

	lru, err := cache.NewLRU(16)
	require.NoError(t, err)

	deps := Deps{
		Config:   cfg,
		Renderer: renderer,
		Cache:    lru,
		Metrics:  metrics.New(),
		JWT:      auth.NewJWTManager("test-secret", time.Hour),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if opts.withStore {
		store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		deps.Store = store
		deps.Authenticator = auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	}

	srv, err := New(deps)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPages(t *testing.T) {
	_, ts := newTestServer(t, options{})

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "Fresh food for pets"},
		{"/products", http.StatusOK, "Beef &amp; rice"},
		{"/products/", http.StatusOK, "Beef &amp; rice"},
		{"/blog/fresh-food", http.StatusOK, "Fresh food is better."},
		{"/calculators/cost?weight=10", http.StatusOK, "<html"},
		{"/blog/missing", http.StatusNotFound, "Page not found"},
		{"/no/such/page", http.StatusNotFound, "Page not found"},
		{"/404", http.StatusNotFound, "Page not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body, tt.contains)
			assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		})
	}
}

func TestGitHubPagesBasePath(t *testing.T) {
	_, ts := newTestServer(t, options{githubPages: true})

	resp, body := get(t, ts.URL+"/petvend/products")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/petvend/`)

	resp, _ = get(t, ts.URL+"/petvend")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "redirected to the base path")
	assert.Equal(t, "/petvend/", resp.Request.URL.Path)

	resp, _ = get(t, ts.URL+"/products")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = get(t, ts.URL+"/petvend/sitemap.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "https://petvend.example/petvend/products")
}

func TestSiteFiles(t *testing.T) {
	_, ts := newTestServer(t, options{})

	resp, body := get(t, ts.URL+"/sitemap.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<loc>https://petvend.example/blog/fresh-food</loc>")
	assert.NotContains(t, body, "/404")

	resp, body = get(t, ts.URL+"/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sitemap: https://petvend.example/sitemap.xml")

	resp, body = get(t, ts.URL+"/static/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body)
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, options{})

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["database"])

	calc := rpc.NewCalculatorServiceClient(http.DefaultClient, ts.URL)
	_, err := calc.CalculateCost(context.Background(), connect.NewRequest(&rpc.CalculateCostRequest{Weight: "10"}))
	require.NoError(t, err)

	resp, body = get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `petvend_calculations_total{calculator="cost",outcome="ok"} 1`)
}

func TestRPC(t *testing.T) {
	_, ts := newTestServer(t, options{withStore: true})
	ctx := context.Background()

	calc := rpc.NewCalculatorServiceClient(http.DefaultClient, ts.URL)
	resp, err := calc.CalculateCost(ctx, connect.NewRequest(&rpc.CalculateCostRequest{Weight: "10"}))
	require.NoError(t, err)
	assert.InDelta(t, 250, resp.Msg.Result.DailyPortion, 1e-9)

	leads := rpc.NewLeadServiceClient(http.DefaultClient, ts.URL)
	submitted, err := leads.SubmitLead(ctx, connect.NewRequest(&rpc.SubmitLeadRequest{
		Kind:  "franchise",
		Name:  "Anna",
		Email: "anna@example.com",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, submitted.Msg.ID)

	_, err = leads.ListLeads(ctx, connect.NewRequest(&rpc.ListLeadsRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	authClient := rpc.NewAuthServiceClient(http.DefaultClient, ts.URL)
	_, err = authClient.Login(ctx, connect.NewRequest(&rpc.LoginRequest{Email: "nobody@example.com", Password: "wrong-password"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestRateLimit(t *testing.T) {
	_, ts := newTestServer(t, options{rateLimit: 1})
	ctx := context.Background()
	leads := rpc.NewLeadServiceClient(http.DefaultClient, ts.URL)

	submit := func() error {
		_, err := leads.SubmitLead(ctx, connect.NewRequest(&rpc.SubmitLeadRequest{
			Kind:  "newsletter",
			Email: "anna@example.com",
		}))
		return err
	}
	require.NoError(t, submit())

	err := submit()
	require.Error(t, err)
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	calc := rpc.NewCalculatorServiceClient(http.DefaultClient, ts.URL)
	for range 3 {
		_, err := calc.CalculateCost(ctx, connect.NewRequest(&rpc.CalculateCostRequest{Weight: "5"}))
		require.NoError(t, err, "calculators are not rate limited")
	}
}

func TestRateLimitBehindProxy(t *testing.T) {
	submitFrom := func(leads *rpc.LeadServiceClient, forwardedFor string) error {
		req := connect.NewRequest(&rpc.SubmitLeadRequest{Kind: "newsletter", Email: "anna@example.com"})
		req.Header().Set("X-Forwarded-For", forwardedFor)
		_, err := leads.SubmitLead(context.Background(), req)
		return err
	}

	t.Run("untrusted peer cannot pick its identity", func(t *testing.T) {
		_, ts := newTestServer(t, options{rateLimit: 1})
		leads := rpc.NewLeadServiceClient(http.DefaultClient, ts.URL)

		require.NoError(t, submitFrom(leads, "203.0.113.1"))
		err := submitFrom(leads, "203.0.113.2")
		assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
	})

	t.Run("trusted proxy forwards distinct clients", func(t *testing.T) {
		_, ts := newTestServer(t, options{rateLimit: 1, trustedProxies: []string{"127.0.0.1", "::1"}})
		leads := rpc.NewLeadServiceClient(http.DefaultClient, ts.URL)

		require.NoError(t, submitFrom(leads, "203.0.113.1"))
		require.NoError(t, submitFrom(leads, "203.0.113.2"))
		err := submitFrom(leads, "203.0.113.1")
		assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
	})
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"negative compression size", func(c *config.Config) { c.Server.CompressMinSize = -1 }},
		{"bad trusted proxy", func(c *config.Config) { c.Server.TrustedProxies = []string{"not-an-ip"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(&cfg)
			srv, err := New(Deps{Config: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
			require.Error(t, err)
			assert.Nil(t, srv)
		})
	}
}

func TestCompression(t *testing.T) {
	_, ts := newTestServer(t, options{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "PetVend"))
}

func TestRun(t *testing.T) {
	srv, _ := newTestServer(t, options{})

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, ready) }()

	var addr net.Addr
	select {
	case addr = <-ready:
	case err := <-errCh:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	port := addr.(*net.TCPAddr).Port
	resp, _ := get(t, "http://127.0.0.1:"+strconv.Itoa(port)+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
