package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "recipient", n.RecipientUserID, "type", n.Type)

	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal metadata")
		return err
	}

	query := `INSERT INTO notifications (id, recipient_user_id, type, title, body, related_type, related_id, metadata, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "notifications", "recipient", n.RecipientUserID)
	_, err = r.db.ExecContext(ctx, query, n.ID, n.RecipientUserID, n.Type, n.Title, n.Body, n.RelatedType, n.RelatedID, meta, n.IsRead, n.CreatedOn)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "recipient", n.RecipientUserID)
		return storageErr("notification.create", err)
	}
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipient_user_id, type, title, COALESCE(body, ''), COALESCE(related_type, ''), COALESCE(related_id, ''),
		        metadata, is_read, created_on
		 FROM notifications WHERE recipient_user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, storageErr("notification.list", err)
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var meta []byte
		if err := rows.Scan(&n.ID, &n.RecipientUserID, &n.Type, &n.Title, &n.Body, &n.RelatedType, &n.RelatedID,
			&meta, &n.IsRead, &n.CreatedOn); err != nil {
			return nil, 0, storageErr("notification.list", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &n.Metadata); err != nil {
				return nil, 0, err
			}
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("notification.list", err)
	}

	var count int32
	err = r.db.QueryRowContext(ctx, `SELECT count(*) FROM notifications WHERE recipient_user_id = $1`, userID).Scan(&count)
	if err != nil {
		return nil, 0, storageErr("notification.list", err)
	}
	return notes, count, nil
}
