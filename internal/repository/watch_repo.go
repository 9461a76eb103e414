package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
)

type WatchRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWatchRepository(db *pgxpool.Pool, logger *zap.Logger) *WatchRepository {
	return &WatchRepository{
		db:     db,
		logger: logger,
	}
}

// ListByProductAndKind returns the watch relations of one kind for a product.
func (r *WatchRepository) ListByProductAndKind(ctx context.Context, productID int64, kind string) ([]*model.Watch, error) {
	query := `
        SELECT id, user_id, product_id, kind, push_notified, created_at
        FROM watches
        WHERE product_id = $1 AND kind = $2
    `
	rows, err := r.db.Query(ctx, query, productID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query watches: %w", err)
	}
	defer rows.Close()

	var watches []*model.Watch
	for rows.Next() {
		var w model.Watch
		err := rows.Scan(&w.ID, &w.UserID, &w.ProductID, &w.Kind, &w.PushNotified, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch: %w", err)
		}
		watches = append(watches, &w)
	}

	return watches, rows.Err()
}

// MarkNotifiedByProduct marks every watch of one kind for a product as
// processed by the sweep.
func (r *WatchRepository) MarkNotifiedByProduct(ctx context.Context, productID int64, kind string) error {
	query := `UPDATE watches SET push_notified = TRUE WHERE product_id = $1 AND kind = $2`
	tag, err := r.db.Exec(ctx, query, productID, kind)
	if err != nil {
		return fmt.Errorf("failed to mark watches notified: %w", err)
	}

	r.logger.Debug("Marked watches notified",
		zap.Int64("product_id", productID),
		zap.String("kind", kind),
		zap.Int64("count", tag.RowsAffected()),
	)
	return nil
}
