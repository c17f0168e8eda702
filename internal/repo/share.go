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
	ErrShareNotFound = errors.New("share not found")
)

type ShareRepository struct {
	pool *pgxpool.Pool
}

func NewShareRepository(pool *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{pool: pool}
}

const shareColumns = `id, workspace_id, lead_id, kind, share_key, title, url, file_name,
	       created_by, expires_at, created_at, updated_at`

func scanShare(row pgx.Row) (*domain.Share, error) {
	var s domain.Share
	var expiresAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.WorkspaceID, &s.LeadID, &s.Kind, &s.ShareKey, &s.Title, &s.URL, &s.FileName,
		&s.CreatedBy, &expiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		s.ExpiresAt = &expiresAt.Time
	}
	return &s, nil
}

// List retrieves all shares in a workspace, newest first.
func (r *ShareRepository) List(ctx context.Context, workspaceID string) ([]domain.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query shares: %w", err)
	}
	defer rows.Close()

	var shares []domain.Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}
	return shares, nil
}

// ListByLead retrieves all shares for one lead.
func (r *ShareRepository) ListByLead(ctx context.Context, workspaceID, leadID string) ([]domain.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE workspace_id = $1 AND lead_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID, leadID)
	if err != nil {
		return nil, fmt.Errorf("query lead shares: %w", err)
	}
	defer rows.Close()

	var shares []domain.Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}
	return shares, nil
}

// Get retrieves a share by ID, scoped to workspace.
func (r *ShareRepository) Get(ctx context.Context, workspaceID, shareID string) (*domain.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE id = $1 AND workspace_id = $2
	`
	s, err := scanShare(r.pool.QueryRow(ctx, query, shareID, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("query share: %w", err)
	}
	return s, nil
}

// GetByShareKey resolves the opaque public token. Not workspace-scoped:
// the public endpoint has no tenant context.
func (r *ShareRepository) GetByShareKey(ctx context.Context, shareKey string) (*domain.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE share_key = $1
	`
	s, err := scanShare(r.pool.QueryRow(ctx, query, shareKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("query share by key: %w", err)
	}
	return s, nil
}

// Create inserts a new share.
func (r *ShareRepository) Create(ctx context.Context, s *domain.Share) error {
	query := `
		INSERT INTO shares (id, workspace_id, lead_id, kind, share_key, title, url, file_name,
		                    created_by, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID, s.WorkspaceID, s.LeadID, s.Kind, s.ShareKey, s.Title, s.URL, s.FileName,
		s.CreatedBy, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

// Delete removes a share and its recorded views.
func (r *ShareRepository) Delete(ctx context.Context, workspaceID, shareID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM shares WHERE id = $1 AND workspace_id = $2`,
		shareID, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrShareNotFound
	}
	return nil
}

// InsertView records one open of a share.
func (r *ShareRepository) InsertView(ctx context.Context, v *domain.ShareView) error {
	query := `
		INSERT INTO share_views (id, share_id, viewed_at, user_agent, referer)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, v.ID, v.ShareID, v.ViewedAt, v.UserAgent, v.Referer)
	if err != nil {
		return fmt.Errorf("insert share view: %w", err)
	}
	return nil
}

// Analytics aggregates view counts for a share over the given window.
func (r *ShareRepository) Analytics(ctx context.Context, shareID string, since time.Time) (*domain.ShareAnalytics, error) {
	analytics := &domain.ShareAnalytics{ShareID: shareID, ViewsByDay: []domain.ShareViewsByDay{}}

	var lastViewed sql.NullTime
	err := r.pool.QueryRow(ctx,
		`SELECT count(*), max(viewed_at) FROM share_views WHERE share_id = $1`,
		shareID,
	).Scan(&analytics.TotalViews, &lastViewed)
	if err != nil {
		return nil, fmt.Errorf("query share view totals: %w", err)
	}
	if lastViewed.Valid {
		analytics.LastViewed = &lastViewed.Time
	}

	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('day', viewed_at), 'YYYY-MM-DD') AS day, count(*)
		FROM share_views
		WHERE share_id = $1 AND viewed_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`, shareID, since)
	if err != nil {
		return nil, fmt.Errorf("query share views by day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.ShareViewsByDay
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return nil, fmt.Errorf("scan share views by day: %w", err)
		}
		analytics.ViewsByDay = append(analytics.ViewsByDay, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate share views by day: %w", err)
	}

	return analytics, nil
}

// DeleteViewsBefore purges view rows older than the cutoff. Used by the
// cleanup command to keep the table bounded.
func (r *ShareRepository) DeleteViewsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM share_views WHERE viewed_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old share views: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpiredBefore removes shares whose expiry passed before the
// cutoff, along with their views.
func (r *ShareRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM shares WHERE expires_at IS NOT NULL AND expires_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired shares: %w", err)
	}
	return tag.RowsAffected(), nil
}
