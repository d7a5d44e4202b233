// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/petvend/site/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// LeadFilter narrows ListLeads results. Zero values mean no filter.
type LeadFilter struct {
	Kind models.LeadKind

	// Since only returns leads created at or after this Unix timestamp.
	Since int64

	// Limit caps the number of returned leads; 0 means DefaultLeadLimit.
	// Values above MaxLeadLimit are clamped.
	Limit int
}

const (
	// DefaultLeadLimit is used when LeadFilter.Limit is not set.
	DefaultLeadLimit = 100
	// MaxLeadLimit bounds a single ListLeads page.
	MaxLeadLimit = 500
)

// PageSize returns the effective number of leads to fetch for f.
func (f LeadFilter) PageSize() int {
	switch {
	case f.Limit <= 0:
		return DefaultLeadLimit
	case f.Limit > MaxLeadLimit:
		return MaxLeadLimit
	default:
		return f.Limit
	}
}

// Store defines the interface for lead and admin storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateLead persists a new lead.
	// The lead.ID and lead.CreatedAt fields are populated when empty.
	CreateLead(ctx context.Context, lead *models.Lead) error

	// GetLead retrieves a lead by its ID.
	// Returns ErrNotFound if the lead does not exist.
	GetLead(ctx context.Context, leadID string) (*models.Lead, error)

	// ListLeads returns leads matching the filter, newest first.
	ListLeads(ctx context.Context, filter LeadFilter) ([]*models.Lead, error)

	// CountLeads returns the number of stored leads per kind.
	CountLeads(ctx context.Context) (map[models.LeadKind]int, error)

	// CreateUser inserts a new admin account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil and no error when the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil and no error when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
