package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"leadflow-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLeadNotFound = errors.New("lead not found in workspace")
)

type LeadRepository struct {
	pool *pgxpool.Pool
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

const leadColumns = `id, workspace_id, full_name, email, phone, company, status, source,
	       owner_id, tags, notes, created_at, updated_at, deleted_at`

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	var deletedAt sql.NullTime
	err := row.Scan(
		&l.ID, &l.WorkspaceID, &l.FullName, &l.Email, &l.Phone, &l.Company,
		&l.Status, &l.Source, &l.OwnerID, &l.Tags, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		l.DeletedAt = &deletedAt.Time
	}
	return &l, nil
}

// List retrieves leads for a workspace with optional filters.
// Multi-tenant isolation enforced by workspace_id filter.
func (r *LeadRepository) List(ctx context.Context, params domain.ListLeadsParams) ([]domain.Lead, string, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE workspace_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{params.WorkspaceID}
	argIdx := 2

	if params.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *params.Status)
		argIdx++
	}

	if params.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argIdx)
		args = append(args, *params.OwnerID)
		argIdx++
	}

	if params.Query != nil && *params.Query != "" {
		query += fmt.Sprintf(" AND (full_name ILIKE '%%' || $%d || '%%' OR email ILIKE '%%' || $%d || '%%' OR company ILIKE '%%' || $%d || '%%')", argIdx, argIdx, argIdx)
		args = append(args, *params.Query)
		argIdx++
	}

	if params.Cursor != nil && *params.Cursor != "" {
		cursorTime, err := time.Parse(time.RFC3339, *params.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor format: %w", err)
		}
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)
		args = append(args, cursorTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, params.Limit+1) // +1 to check if there's a next page

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0, params.Limit)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, "", fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate leads: %w", err)
	}

	var nextCursor string
	if len(leads) > params.Limit {
		nextCursor = leads[params.Limit-1].CreatedAt.Format(time.RFC3339)
		leads = leads[:params.Limit]
	}

	return leads, nextCursor, nil
}

// Get retrieves a single lead by ID, scoped to workspace.
func (r *LeadRepository) Get(ctx context.Context, workspaceID, leadID string) (*domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	l, err := scanLead(r.pool.QueryRow(ctx, query, leadID, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead: %w", err)
	}
	return l, nil
}

// GetByEmail retrieves a lead by normalized email, scoped to workspace.
// Used by webhook ingestion for upsert-by-email.
func (r *LeadRepository) GetByEmail(ctx context.Context, workspaceID, email string) (*domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE workspace_id = $1 AND lower(email) = lower($2) AND deleted_at IS NULL
	`
	l, err := scanLead(r.pool.QueryRow(ctx, query, workspaceID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead by email: %w", err)
	}
	return l, nil
}

// Create inserts a new lead.
func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	query := `
		INSERT INTO leads (id, workspace_id, full_name, email, phone, company, status,
		                   source, owner_id, tags, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		l.ID, l.WorkspaceID, l.FullName, l.Email, l.Phone, l.Company,
		l.Status, l.Source, l.OwnerID, l.Tags, l.Notes, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// Update persists mutable lead fields.
func (r *LeadRepository) Update(ctx context.Context, l *domain.Lead) error {
	query := `
		UPDATE leads
		SET full_name = $3, email = $4, phone = $5, company = $6, status = $7,
		    owner_id = $8, tags = $9, notes = $10, updated_at = $11
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query,
		l.ID, l.WorkspaceID, l.FullName, l.Email, l.Phone, l.Company,
		l.Status, l.OwnerID, l.Tags, l.Notes, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// SoftDelete marks a lead as deleted without removing its history.
func (r *LeadRepository) SoftDelete(ctx context.Context, workspaceID, leadID string, now time.Time) error {
	query := `
		UPDATE leads
		SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, leadID, workspaceID, now)
	if err != nil {
		return fmt.Errorf("soft delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}
