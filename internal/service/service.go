// Package service implements the application operations: RBAC checks,
// orchestration across repositories, engagement recomputes and audit
// logging. Handlers stay thin; everything interesting happens here.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/repo"
)

var (
	ErrUnauthorized     = errors.New("user not authorized for this action")
	ErrMemberNotFound   = repo.ErrMemberNotFound
	ErrLeadNotFound     = repo.ErrLeadNotFound
	ErrActivityNotFound = repo.ErrActivityNotFound
	ErrTemplateNotFound = repo.ErrTemplateNotFound
	ErrShareNotFound    = repo.ErrShareNotFound
)

// generateID creates a cuid-like ID compatible with records created by
// the web client.
func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return "c" + strings.ToLower(base32.StdEncoding.EncodeToString(b)[:24])
}

// Clock supplies the current time. Injected so services and their tests
// share one notion of "now" with the engagement engine.
type Clock func() time.Time

// auditLog appends an audit entry, logging failures without failing the
// caller's operation.
func auditLog(ctx context.Context, auditRepo *repo.AuditRepository, log *logger.Logger, module string, e *repo.AuditEntry) {
	if auditRepo == nil {
		return
	}
	if err := auditRepo.Insert(ctx, e); err != nil {
		log.Warn(ctx, "audit log insert failed",
			logger.Module(module),
			logger.Action("audit"),
			zap.String("audit_action", e.Action),
			zap.String("entity_type", e.EntityType),
			zap.Error(err),
		)
	}
}
