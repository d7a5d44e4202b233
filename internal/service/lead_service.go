package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/metrics"
	"github.com/petvend/site/internal/middleware"
	"github.com/petvend/site/internal/models"
	"github.com/petvend/site/internal/rpc"
	"github.com/petvend/site/internal/storage"
)

var (
	ErrUnknownLeadKind  = errors.New("unknown form")
	ErrNameRequired     = errors.New("please enter your name")
	ErrEmailRequired    = errors.New("please enter a valid email address")
	ErrLeadsUnavailable = errors.New("lead storage is not configured")
)

// maxFieldLength caps every free-text lead field.
const maxFieldLength = 2000

// LeadSink receives accepted form submissions.
type LeadSink interface {
	Submit(ctx context.Context, lead *models.Lead) error
}

// LogSink only logs submissions. It is the default sink when no database is
// configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Submit(ctx context.Context, lead *models.Lead) error {
	s.Logger.InfoContext(ctx, "Lead submitted",
		"lead_id", lead.ID,
		"kind", lead.Kind,
		"name", lead.Name,
		"email", lead.Email,
		"phone", lead.Phone,
		"city", lead.City,
		"budget", lead.Budget,
		"message", lead.Message,
		"source", lead.Source,
	)
	return nil
}

// StoreSink persists submissions.
type StoreSink struct {
	Store storage.Store
}

func (s StoreSink) Submit(ctx context.Context, lead *models.Lead) error {
	if err := s.Store.CreateLead(ctx, lead); err != nil {
		return fmt.Errorf("failed to store lead: %w", err)
	}
	return nil
}

// LeadService implements the Connect LeadService.
type LeadService struct {
	sink    LeadSink
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

var _ rpc.LeadServiceHandler = (*LeadService)(nil)

// NewLeadService creates a LeadService handing submissions to sink. store may
// be nil, in which case ListLeads reports the dashboard as unavailable.
func NewLeadService(sink LeadSink, store storage.Store, m *metrics.Metrics, logger *slog.Logger) *LeadService {
	return &LeadService{
		sink:    sink,
		store:   store,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// SubmitLead validates a form submission and hands it to the sink.
func (s *LeadService) SubmitLead(ctx context.Context, req *connect.Request[rpc.SubmitLeadRequest]) (*connect.Response[rpc.SubmitLeadResponse], error) {
	lead, err := s.newLead(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.sink.Submit(ctx, lead); err != nil {
		s.logger.Error("Failed to submit lead", "kind", lead.Kind, "error", err)
		return nil, connect.NewError(connect.CodeInternal, errors.New("could not submit the form, please try again"))
	}

	s.metrics.ObserveLead(string(lead.Kind))
	return connect.NewResponse(&rpc.SubmitLeadResponse{ID: lead.ID}), nil
}

func (s *LeadService) newLead(msg *rpc.SubmitLeadRequest) (*models.Lead, error) {
	lead := &models.Lead{
		ID:        uuid.New().String(),
		Kind:      models.LeadKind(strings.ToLower(strings.TrimSpace(msg.Kind))),
		Name:      clean(msg.Name),
		Email:     strings.ToLower(clean(msg.Email)),
		Phone:     clean(msg.Phone),
		City:      clean(msg.City),
		Budget:    clean(msg.Budget),
		Message:   clean(msg.Message),
		Source:    clean(msg.Source),
		CreatedAt: s.now().Unix(),
	}

	if !lead.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLeadKind, msg.Kind)
	}
	if lead.Kind != models.LeadNewsletter && lead.Name == "" {
		return nil, ErrNameRequired
	}
	if !auth.LooksLikeEmail(lead.Email) {
		return nil, ErrEmailRequired
	}
	if lead.Kind == models.LeadNewsletter {
		lead.Name, lead.Phone, lead.City, lead.Budget, lead.Message = "", "", "", "", ""
	}
	return lead, nil
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxFieldLength {
		s = strings.ToValidUTF8(s[:maxFieldLength], "")
	}
	return s
}

// ListLeads returns stored leads, newest first, with per-kind totals.
// Only signed-in admins may call it.
func (s *LeadService) ListLeads(ctx context.Context, req *connect.Request[rpc.ListLeadsRequest]) (*connect.Response[rpc.ListLeadsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if s.store == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrLeadsUnavailable)
	}

	filter := storage.LeadFilter{
		Kind:  models.LeadKind(req.Msg.Kind),
		Since: req.Msg.Since,
		Limit: req.Msg.Limit,
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %q", ErrUnknownLeadKind, req.Msg.Kind))
	}
	if filter.Limit < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("limit must not be negative"))
	}

	leads, err := s.store.ListLeads(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list leads", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	counts, err := s.store.CountLeads(ctx)
	if err != nil {
		s.logger.Error("Failed to count leads", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Listed leads", "user_id", userID, "count", len(leads))
	return connect.NewResponse(&rpc.ListLeadsResponse{Leads: leads, Counts: counts}), nil
}
