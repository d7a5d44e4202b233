// Package server composes the PetVend HTTP server: the RPC services, the
// rendered site, metrics and health endpoints, behind the shared middleware.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/cache"
	"github.com/petvend/site/internal/config"
	"github.com/petvend/site/internal/metrics"
	"github.com/petvend/site/internal/middleware"
	"github.com/petvend/site/internal/rpc"
	"github.com/petvend/site/internal/service"
	"github.com/petvend/site/internal/site"
	"github.com/petvend/site/internal/storage"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Config   config.Config
	Renderer *site.Renderer

	// Store is optional. Without it leads are only logged and the admin
	// procedures are unavailable.
	Store storage.Store

	Cache         cache.Cache
	Metrics       *metrics.Metrics
	JWT           *auth.JWTManager
	Authenticator auth.Authenticator
	Logger        *slog.Logger
}

// Server is the PetVend HTTP server.
type Server struct {
	cfg      config.Config
	deps     Deps
	logger   *slog.Logger
	handler  http.Handler
	proxies  *middleware.TrustedProxies
	compress func(http.Handler) http.Handler
	limiters []*middleware.RateLimiter
}

// New builds the router and middleware chain.
func New(deps Deps) (*Server, error) {
	proxies, err := middleware.ParseTrustedProxies(deps.Config.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}
	compress, err := middleware.Compression(deps.Config.Server.CompressMinSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      deps.Config,
		deps:     deps,
		logger:   deps.Logger,
		proxies:  proxies,
		compress: compress,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the complete handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	d := s.deps
	r := mux.NewRouter()

	r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet, http.MethodHead)

	interceptors := rpc.HandlerOptions(
		middleware.LoggingInterceptor(d.Logger, d.Metrics),
		middleware.RequireAuth(d.JWT, rpc.PublicProcedures),
	)

	var sink service.LeadSink = service.LogSink{Logger: d.Logger}
	if d.Store != nil {
		sink = service.StoreSink{Store: d.Store}
	}

	calcPath, calcHandler := rpc.NewCalculatorServiceHandler(
		service.NewCalculatorService(d.Cache, d.Metrics, d.Logger), interceptors...)
	leadPath, leadHandler := rpc.NewLeadServiceHandler(
		service.NewLeadService(sink, d.Store, d.Metrics, d.Logger), interceptors...)
	authPath, authHandler := rpc.NewAuthServiceHandler(
		service.NewAuthService(d.Authenticator, d.Store, d.JWT, d.Logger), interceptors...)

	// Public write endpoints get a per-IP budget.
	leadLimiter := s.newLimiter()
	loginLimiter := s.newLimiter()
	r.Handle(rpc.SubmitLeadProcedure, leadLimiter.Middleware(leadHandler))
	r.Handle(rpc.LoginProcedure, loginLimiter.Middleware(authHandler))

	r.PathPrefix(calcPath).Handler(calcHandler)
	r.PathPrefix(leadPath).Handler(leadHandler)
	r.PathPrefix(authPath).Handler(authHandler)

	pages := r
	if bp := d.Renderer.Config().BasePath; bp != "" {
		r.Handle(bp, http.RedirectHandler(bp+"/", http.StatusMovedPermanently))
		pages = r.PathPrefix(bp).Subrouter()
	}
	pages.HandleFunc("/sitemap.xml", s.sitemap).Methods(http.MethodGet, http.MethodHead)
	pages.HandleFunc("/robots.txt", s.robots).Methods(http.MethodGet, http.MethodHead)
	pages.PathPrefix("/static/").Handler(http.StripPrefix(d.Renderer.Config().Link("/static/"), http.FileServerFS(site.Static())))
	pages.HandleFunc("/blog/{slug}", s.page).Methods(http.MethodGet, http.MethodHead)
	pages.HandleFunc("/case-studies/{slug}", s.page).Methods(http.MethodGet, http.MethodHead)
	pages.PathPrefix("/").HandlerFunc(s.page).Methods(http.MethodGet, http.MethodHead)
	r.NotFoundHandler = http.HandlerFunc(s.notFound)

	var h http.Handler = r
	h = s.compress(h)
	h = middleware.CORS(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.RequestLogging(d.Logger, s.proxies)(h)
	return h
}

func (s *Server) newLimiter() *middleware.RateLimiter {
	l := middleware.NewRateLimiter(s.cfg.RateLimit.LeadsPerMinute, s.cfg.RateLimit.Burst, s.proxies)
	s.limiters = append(s.limiters, l)
	return l
}

// Close stops background goroutines started by New.
func (s *Server) Close() {
	for _, l := range s.limiters {
		l.Stop()
	}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, s.deps.Renderer.Config().BasePath)
	if path == "" {
		path = "/"
	}

	page, ok := s.deps.Renderer.Lookup(path)
	if !ok || page.Path == site.NotFoundPath {
		s.notFound(w, r)
		return
	}
	s.render(w, r, page, http.StatusOK)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.deps.Renderer.NotFound(), http.StatusNotFound)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page site.Page, status int) {
	var buf bytes.Buffer
	if err := s.deps.Renderer.Render(&buf, page, r.URL.Query()); err != nil {
		s.logger.Error("Failed to render page", "path", page.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) sitemap(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Renderer.Sitemap()
	if err != nil {
		s.logger.Error("Failed to build sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(site.Robots(s.deps.Renderer.Config()))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"database": s.deps.Store != nil,
		"pages":    len(s.deps.Renderer.Pages()),
	})
}

// Run listens on the configured port until ctx is canceled, then shuts down
// gracefully. ready, when not nil, receives the bound address once listening.
func (s *Server) Run(ctx context.Context, ready chan<- net.Addr) error {
	defer s.Close()

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}

	// h2c serves HTTP/2 without TLS, which connect's gRPC protocols need.
	srv := &http.Server{
		Handler:           h2c.NewHandler(s.handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("Server starting", "address", ln.Addr().String(), "url", fmt.Sprintf("http://localhost:%d", ln.Addr().(*net.TCPAddr).Port))
	if ready != nil {
		ready <- ln.Addr()
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
