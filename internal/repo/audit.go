package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEntry is one row in the append-only audit log.
type AuditEntry struct {
	WorkspaceID string
	UserID      string
	Action      string
	EntityType  string
	EntityID    string
	Detail      map[string]interface{}
	CreatedAt   time.Time
}

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Insert appends an audit entry. Callers log failures but never fail the
// operation that produced the entry.
func (r *AuditRepository) Insert(ctx context.Context, e *AuditEntry) error {
	var detail []byte
	if e.Detail != nil {
		var err error
		detail, err = json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
	}

	query := `
		INSERT INTO audit_log (workspace_id, user_id, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		e.WorkspaceID, e.UserID, e.Action, e.EntityType, e.EntityID, detail, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
