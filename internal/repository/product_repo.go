package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
)

type ProductRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProductRepository(db *pgxpool.Pool, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// ListDueUnnotified returns calendar-release products whose release time has
// passed and that have not yet been push-notified. The push_notified predicate
// is what makes the sweep idempotent across runs.
func (r *ProductRepository) ListDueUnnotified(ctx context.Context) ([]*model.Product, error) {
	query := `
        SELECT id, name, calendar_release, calendar_release_at, push_notified
        FROM products
        WHERE calendar_release = TRUE
          AND calendar_release_at <= NOW()
          AND push_notified = FALSE
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query due products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.CalendarRelease, &p.CalendarReleaseAt, &p.PushNotified)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

// MarkNotified flips the product's idempotency flag after its watchers have
// been processed.
func (r *ProductRepository) MarkNotified(ctx context.Context, productID int64) error {
	query := `UPDATE products SET push_notified = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("failed to mark product notified: %w", err)
	}
	return nil
}
