package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petvend/site/internal/models"
	"github.com/petvend/site/internal/storage"
)

const leadColumns = "id, kind, name, email, phone, city, budget, message, source, created_at"

// CreateLead persists a new lead.
func (s *SQLiteStore) CreateLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt == 0 {
		lead.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO leads ("+leadColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		lead.ID, string(lead.Kind), lead.Name, lead.Email, lead.Phone,
		lead.City, lead.Budget, lead.Message, lead.Source, lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// GetLead retrieves a lead by ID.
func (s *SQLiteStore) GetLead(ctx context.Context, leadID string) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+leadColumns+" FROM leads WHERE id = ?",
		leadID,
	)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lead %s: %w", leadID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListLeads returns leads matching the filter, newest first.
func (s *SQLiteStore) ListLeads(ctx context.Context, filter storage.LeadFilter) ([]*models.Lead, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Since > 0 {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Since)
	}

	query := "SELECT " + leadColumns + " FROM leads"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"

	args = append(args, filter.PageSize())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

// CountLeads returns the number of stored leads per kind.
func (s *SQLiteStore) CountLeads(ctx context.Context) (map[models.LeadKind]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM leads GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadKind]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan lead count: %w", err)
		}
		counts[models.LeadKind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead counts: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	lead := &models.Lead{}
	var kind string
	err := row.Scan(
		&lead.ID,
		&kind,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.City,
		&lead.Budget,
		&lead.Message,
		&lead.Source,
		&lead.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Kind = models.LeadKind(kind)
	return lead, nil
}
