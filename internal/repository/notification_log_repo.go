package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
)

// ListLimit caps the log list at the most relevant entries.
const ListLimit = 50

type NotificationLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationLogRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationLogRepository {
	return &NotificationLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert persists a new notification log and fills in the generated fields.
func (r *NotificationLogRepository) Insert(ctx context.Context, log *model.Log) error {
	query := `
        INSERT INTO notification_logs
            (user_id, name, subject_type, subject_id, action, payload, message, seen, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW(), NOW())
        RETURNING id, seen, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		log.UserID,
		log.Name,
		log.SubjectType,
		log.SubjectID,
		log.Action,
		log.Payload,
		log.Message,
	).Scan(&log.ID, &log.Seen, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert notification log",
			zap.Int64("user_id", log.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to insert notification log: %w", err)
	}

	return nil
}

// ListByUser returns the user's logs, unseen first, then newest first,
// capped at ListLimit.
func (r *NotificationLogRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Log, error) {
	query := `
        SELECT id, user_id, name, subject_type, subject_id, action, payload, message, seen, created_at, updated_at
        FROM notification_logs
        WHERE user_id = $1
        ORDER BY seen ASC, created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.Log
	for rows.Next() {
		var l model.Log
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.Name,
			&l.SubjectType,
			&l.SubjectID,
			&l.Action,
			&l.Payload,
			&l.Message,
			&l.Seen,
			&l.CreatedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification log: %w", err)
		}
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}

// GetByID returns one log scoped to the owning user.
func (r *NotificationLogRepository) GetByID(ctx context.Context, userID, id int64) (*model.Log, error) {
	query := `
        SELECT id, user_id, name, subject_type, subject_id, action, payload, message, seen, created_at, updated_at
        FROM notification_logs
        WHERE id = $1 AND user_id = $2
    `
	var l model.Log
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&l.ID,
		&l.UserID,
		&l.Name,
		&l.SubjectType,
		&l.SubjectID,
		&l.Action,
		&l.Payload,
		&l.Message,
		&l.Seen,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to get notification log: %w", err)
	}
	return &l, nil
}

// MarkSeen flips the seen flag. The only permitted mutation besides deletion.
func (r *NotificationLogRepository) MarkSeen(ctx context.Context, userID, id int64) error {
	query := `
        UPDATE notification_logs
        SET seen = TRUE, updated_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification log seen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// Delete removes one log scoped to the owning user.
func (r *NotificationLogRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM notification_logs WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// BulkDelete removes the logs in ids that exist and belong to the user,
// ignoring the rest. Returns the number of rows deleted.
func (r *NotificationLogRepository) BulkDelete(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrInvalidBulkRequest
	}

	query := `DELETE FROM notification_logs WHERE user_id = $1 AND id = ANY($2)`
	tag, err := r.db.Exec(ctx, query, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete notification logs: %w", err)
	}

	r.logger.Info("Bulk deleted notification logs",
		zap.Int64("user_id", userID),
		zap.Int("requested", len(ids)),
		zap.Int64("deleted", tag.RowsAffected()),
	)
	return tag.RowsAffected(), nil
}
