package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/throttle"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/metrics"
)

// ProductStore reads and marks calendar-release products.
type ProductStore interface {
	ListDueUnnotified(ctx context.Context) ([]*model.Product, error)
	MarkNotified(ctx context.Context, productID int64) error
}

// WatchStore reads and marks watch relations.
type WatchStore interface {
	ListByProductAndKind(ctx context.Context, productID int64, kind string) ([]*model.Watch, error)
	MarkNotifiedByProduct(ctx context.Context, productID int64, kind string) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, in DispatchInput) (*model.Log, error)
}

// CalendarSweep periodically discovers due-but-unprocessed calendar releases
// and notifies their watchers. Idempotency across runs comes from the
// push_notified flags; the throttle cache additionally bounds re-notification
// when a crash leaves a product unmarked mid-pass. Deliberately at-least-once:
// at most one notification per user per product per throttle window.
type CalendarSweep struct {
	products       ProductStore
	watches        WatchStore
	dispatcher     dispatcher
	throttle       throttle.Cache
	throttleWindow time.Duration
	logger         *zap.Logger
}

func NewCalendarSweep(
	products ProductStore,
	watches WatchStore,
	d *Dispatcher,
	cache throttle.Cache,
	throttleWindow time.Duration,
	logger *zap.Logger,
) *CalendarSweep {
	return &CalendarSweep{
		products:       products,
		watches:        watches,
		dispatcher:     d,
		throttle:       cache,
		throttleWindow: throttleWindow,
		logger:         logger,
	}
}

// Start runs the sweep on a fixed interval until ctx is cancelled. The first
// pass runs immediately.
func (s *CalendarSweep) Start(ctx context.Context, interval time.Duration) {
	s.logger.Info("Starting calendar release sweep",
		zap.Duration("interval", interval),
		zap.Duration("throttle_window", s.throttleWindow),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.Run(ctx); err != nil {
		s.logger.Error("Calendar sweep failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Calendar sweep stopped")
			return
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.logger.Error("Calendar sweep failed", zap.Error(err))
			}
		}
	}
}

// Run executes one sweep pass. Interrupting mid-product leaves that product
// due-unprocessed; the next pass picks it up again.
func (s *CalendarSweep) Run(ctx context.Context) error {
	start := time.Now()

	products, err := s.products.ListDueUnnotified(ctx)
	if err != nil {
		s.logger.Error("Failed to list due products", zap.Error(err))
		return err
	}

	if len(products) == 0 {
		s.logger.Debug("No due calendar releases")
		return nil
	}

	for _, p := range products {
		s.processProduct(ctx, p)
	}

	metrics.RecordSweepRun(time.Since(start), len(products))
	s.logger.Info("Calendar sweep completed",
		zap.Int("products", len(products)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *CalendarSweep) processProduct(ctx context.Context, p *model.Product) {
	watches, err := s.watches.ListByProductAndKind(ctx, p.ID, model.WatchKindCalendar)
	if err != nil {
		s.logger.Error("Failed to list calendar watchers",
			zap.Int64("product_id", p.ID),
			zap.Error(err),
		)
		// Leave the product unmarked so the next pass retries it.
		return
	}

	notified := 0
	for _, w := range watches {
		if !s.throttle.ShouldSend(w.UserID, p.ID, s.throttleWindow) {
			metrics.IncrementDispatch("push", "throttled")
			s.logger.Debug("Throttled launch notification",
				zap.Int64("user_id", w.UserID),
				zap.Int64("product_id", p.ID),
			)
			continue
		}

		_, err := s.dispatcher.Dispatch(ctx, DispatchInput{
			UserID:      w.UserID,
			Name:        "Product Launched",
			Title:       "Now Available",
			Body:        p.Name + " has launched. Get yours before it sells out.",
			SubjectType: "Product",
			SubjectID:   p.ID,
			Action:      "notification",
			Payload: map[string]any{
				"productId":   p.ID,
				"productName": p.Name,
			},
		})
		if err != nil {
			s.logger.Error("Failed to dispatch launch notification",
				zap.Int64("user_id", w.UserID),
				zap.Int64("product_id", p.ID),
				zap.Error(err),
			)
			continue
		}

		s.throttle.RecordSent(w.UserID, p.ID, time.Now())
		notified++
	}

	if err := s.products.MarkNotified(ctx, p.ID); err != nil {
		s.logger.Error("Failed to mark product notified",
			zap.Int64("product_id", p.ID),
			zap.Error(err),
		)
	}
	if err := s.watches.MarkNotifiedByProduct(ctx, p.ID, model.WatchKindCalendar); err != nil {
		s.logger.Error("Failed to mark watches notified",
			zap.Int64("product_id", p.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("Processed calendar release",
		zap.Int64("product_id", p.ID),
		zap.String("product", p.Name),
		zap.Int("watchers", len(watches)),
		zap.Int("notified", notified),
	)
}
