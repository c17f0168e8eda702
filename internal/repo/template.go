package repo

import (
	"context"
	"errors"
	"fmt"

	"leadflow-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTemplateNotFound = errors.New("template not found in workspace")
)

type TemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

const templateColumns = `id, workspace_id, name, channel, subject, body, created_by, created_at, updated_at`

func scanTemplate(row pgx.Row) (*domain.MessageTemplate, error) {
	var t domain.MessageTemplate
	err := row.Scan(
		&t.ID, &t.WorkspaceID, &t.Name, &t.Channel, &t.Subject, &t.Body,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List retrieves all templates in a workspace, newest first.
func (r *TemplateRepository) List(ctx context.Context, workspaceID string) ([]domain.MessageTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM message_templates
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.MessageTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// Get retrieves a single template by ID, scoped to workspace.
func (r *TemplateRepository) Get(ctx context.Context, workspaceID, templateID string) (*domain.MessageTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM message_templates
		WHERE id = $1 AND workspace_id = $2
	`
	t, err := scanTemplate(r.pool.QueryRow(ctx, query, templateID, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("query template: %w", err)
	}
	return t, nil
}

// Create inserts a new template.
func (r *TemplateRepository) Create(ctx context.Context, t *domain.MessageTemplate) error {
	query := `
		INSERT INTO message_templates (id, workspace_id, name, channel, subject, body,
		                               created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID, t.WorkspaceID, t.Name, t.Channel, t.Subject, t.Body,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// Update persists mutable template fields.
func (r *TemplateRepository) Update(ctx context.Context, t *domain.MessageTemplate) error {
	query := `
		UPDATE message_templates
		SET name = $3, channel = $4, subject = $5, body = $6, updated_at = $7
		WHERE id = $1 AND workspace_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.WorkspaceID, t.Name, t.Channel, t.Subject, t.Body, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// Delete removes a template permanently.
func (r *TemplateRepository) Delete(ctx context.Context, workspaceID, templateID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM message_templates WHERE id = $1 AND workspace_id = $2`,
		templateID, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
