package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrActivityNotFound = errors.New("activity not found in workspace")
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

const activityColumns = `id, workspace_id, lead_id, user_id, type, title, description,
	       outcome, duration_minutes, scheduled_for, completed_at, metadata,
	       tags, is_automated, engagement_points, created_at, updated_at`

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	var rawMetadata []byte
	err := row.Scan(
		&a.ID, &a.WorkspaceID, &a.LeadID, &a.UserID, &a.Type, &a.Title, &a.Description,
		&a.Outcome, &a.DurationMinutes, &a.ScheduledFor, &a.CompletedAt, &rawMetadata,
		&a.Tags, &a.IsAutomated, &a.EngagementPoints, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	metadata, err := domain.DecodeMetadata(a.Type, rawMetadata)
	if err != nil {
		return nil, err
	}
	a.Metadata = metadata
	return &a, nil
}

// List retrieves activities for a workspace with optional filters,
// newest first.
func (r *ActivityRepository) List(ctx context.Context, params domain.ListActivitiesParams) ([]domain.Activity, string, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE workspace_id = $1
	`
	args := []interface{}{params.WorkspaceID}
	argIdx := 2

	if params.LeadID != nil {
		query += fmt.Sprintf(" AND lead_id = $%d", argIdx)
		args = append(args, *params.LeadID)
		argIdx++
	}

	if params.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, *params.Type)
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
	args = append(args, params.Limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0, params.Limit)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, "", fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate activities: %w", err)
	}

	var nextCursor string
	if len(activities) > params.Limit {
		nextCursor = activities[params.Limit-1].CreatedAt.Format(time.RFC3339)
		activities = activities[:params.Limit]
	}

	return activities, nextCursor, nil
}

// ListByLead retrieves the full activity history for one lead, used by
// the engagement engine. No pagination: scoring needs the whole list.
func (r *ActivityRepository) ListByLead(ctx context.Context, workspaceID, leadID string) ([]domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE workspace_id = $1 AND lead_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID, leadID)
	if err != nil {
		return nil, fmt.Errorf("query lead activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}

// ListByWorkspace retrieves all activities in a workspace, used for
// workspace-level stats and to seed the score cache at startup.
func (r *ActivityRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query workspace activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}

// Get retrieves a single activity by ID, scoped to workspace.
func (r *ActivityRepository) Get(ctx context.Context, workspaceID, activityID string) (*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = $1 AND workspace_id = $2
	`
	a, err := scanActivity(r.pool.QueryRow(ctx, query, activityID, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("query activity: %w", err)
	}
	return a, nil
}

// Create inserts a new activity.
func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	rawMetadata, err := domain.EncodeMetadata(a.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := `
		INSERT INTO activities (id, workspace_id, lead_id, user_id, type, title, description,
		                        outcome, duration_minutes, scheduled_for, completed_at, metadata,
		                        tags, is_automated, engagement_points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = r.pool.Exec(ctx, query,
		a.ID, a.WorkspaceID, a.LeadID, a.UserID, a.Type, a.Title, a.Description,
		a.Outcome, a.DurationMinutes, a.ScheduledFor, a.CompletedAt, rawMetadata,
		a.Tags, a.IsAutomated, a.EngagementPoints, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Update persists the editable subset of activity fields. Type and
// engagement points are immutable after creation.
func (r *ActivityRepository) Update(ctx context.Context, a *domain.Activity) error {
	query := `
		UPDATE activities
		SET title = $3, description = $4, outcome = $5, tags = $6, updated_at = $7
		WHERE id = $1 AND workspace_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		a.ID, a.WorkspaceID, a.Title, a.Description, a.Outcome, a.Tags, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// Delete removes an activity permanently.
func (r *ActivityRepository) Delete(ctx context.Context, workspaceID, activityID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM activities WHERE id = $1 AND workspace_id = $2`,
		activityID, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}
