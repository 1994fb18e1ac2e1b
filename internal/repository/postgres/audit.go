package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, rec *domain.AuditRecord) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, resource_type, resource_id, actor_user_id, details, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Action, rec.ResourceType, rec.ResourceID, rec.ActorUserID, details, rec.CreatedOn)
	return storageErr("audit.create", err)
}
