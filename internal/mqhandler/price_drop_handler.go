package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "github.com/NuralamMRH/soletradeproject-sub004/contracts/mq"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/service"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/throttle"
)

// PriceDropHandler notifies price watchers of a product when its lowest ask
// drops. Throttled per (user, product) so rapid consecutive drops collapse
// into one notification per window.
type PriceDropHandler struct {
	watches        service.WatchStore
	dispatcher     notificationDispatcher
	throttle       throttle.Cache
	throttleWindow time.Duration
	logger         *zap.Logger
}

func NewPriceDropHandler(
	watches service.WatchStore,
	dispatcher *service.Dispatcher,
	cache throttle.Cache,
	throttleWindow time.Duration,
	logger *zap.Logger,
) *PriceDropHandler {
	return &PriceDropHandler{
		watches:        watches,
		dispatcher:     dispatcher,
		throttle:       cache,
		throttleWindow: throttleWindow,
		logger:         logger,
	}
}

func (h *PriceDropHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.PriceDroppedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal PriceDroppedPayload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling price.dropped event",
		zap.Int64("product_id", p.ProductID),
		zap.Float64("old_price", p.OldPrice),
		zap.Float64("new_price", p.NewPrice),
	)

	watches, err := h.watches.ListByProductAndKind(ctx, p.ProductID, model.WatchKindPrice)
	if err != nil {
		h.logger.Error("Failed to list price watchers",
			zap.Int64("product_id", p.ProductID),
			zap.Error(err),
		)
		return err
	}

	for _, w := range watches {
		if !h.throttle.ShouldSend(w.UserID, p.ProductID, h.throttleWindow) {
			h.logger.Debug("Throttled price drop notification",
				zap.Int64("user_id", w.UserID),
				zap.Int64("product_id", p.ProductID),
			)
			continue
		}

		_, err := h.dispatcher.Dispatch(ctx, service.DispatchInput{
			UserID:      w.UserID,
			Name:        "Price Drop",
			Title:       "Price Drop",
			Body:        fmt.Sprintf("%s dropped from %.2f to %.2f", p.ProductName, p.OldPrice, p.NewPrice),
			SubjectType: "Product",
			SubjectID:   p.ProductID,
			Action:      "price_drop",
			Payload: map[string]any{
				"productId":   p.ProductID,
				"productName": p.ProductName,
				"oldPrice":    p.OldPrice,
				"newPrice":    p.NewPrice,
			},
		})
		if err != nil {
			h.logger.Error("Failed to dispatch price drop notification",
				zap.Int64("user_id", w.UserID),
				zap.Int64("product_id", p.ProductID),
				zap.Error(err),
			)
			continue
		}

		h.throttle.RecordSent(w.UserID, p.ProductID, time.Now())
	}

	return nil
}
