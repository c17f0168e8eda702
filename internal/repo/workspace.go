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
	ErrMemberNotFound = errors.New("user is not a member of workspace")
)

type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GetMember retrieves the membership row for a user in a workspace.
func (r *WorkspaceRepository) GetMember(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceMember, error) {
	query := `
		SELECT user_id, workspace_id, role, created_at, updated_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`
	var m domain.WorkspaceMember
	err := r.pool.QueryRow(ctx, query, workspaceID, userID).Scan(
		&m.UserID, &m.WorkspaceID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("query workspace member: %w", err)
	}
	return &m, nil
}

// ListMembers retrieves all members of a workspace.
func (r *WorkspaceRepository) ListMembers(ctx context.Context, workspaceID string) ([]domain.WorkspaceMember, error) {
	query := `
		SELECT user_id, workspace_id, role, created_at, updated_at
		FROM workspace_members
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query workspace members: %w", err)
	}
	defer rows.Close()

	var members []domain.WorkspaceMember
	for rows.Next() {
		var m domain.WorkspaceMember
		if err := rows.Scan(&m.UserID, &m.WorkspaceID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspace members: %w", err)
	}
	return members, nil
}

// ListWorkspaceIDs returns every workspace that has at least one member.
// Used at startup to seed the in-memory score cache.
func (r *WorkspaceRepository) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT workspace_id FROM workspace_members`)
	if err != nil {
		return nil, fmt.Errorf("query workspace ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan workspace id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspace ids: %w", err)
	}
	return ids, nil
}
