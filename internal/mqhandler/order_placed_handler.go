package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "github.com/NuralamMRH/soletradeproject-sub004/contracts/mq"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/service"
)

type notificationDispatcher interface {
	Dispatch(ctx context.Context, in service.DispatchInput) (*model.Log, error)
}

// OrderPlacedHandler notifies both parties of a new order.
type OrderPlacedHandler struct {
	dispatcher notificationDispatcher
	logger     *zap.Logger
}

func NewOrderPlacedHandler(dispatcher *service.Dispatcher, logger *zap.Logger) *OrderPlacedHandler {
	return &OrderPlacedHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *OrderPlacedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.OrderPlacedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal OrderPlacedPayload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling order.placed event",
		zap.Int64("order_id", p.OrderID),
		zap.Int64("buyer_id", p.BuyerID),
		zap.Int64("seller_id", p.SellerID),
	)

	payload := map[string]any{
		"orderId":     p.OrderID,
		"productId":   p.ProductID,
		"productName": p.ProductName,
		"amount":      p.Amount,
	}

	// The seller notification is the one the order flow depends on; a failure
	// here nacks the message for redelivery.
	_, err := h.dispatcher.Dispatch(ctx, service.DispatchInput{
		UserID:      p.SellerID,
		Name:        "Order Placed",
		Title:       "New Order",
		Body:        fmt.Sprintf("You sold %s for %.2f", p.ProductName, p.Amount),
		SubjectType: "Order",
		SubjectID:   p.OrderID,
		Action:      "order_placed",
		Payload:     payload,
	})
	if err != nil {
		h.logger.Error("Failed to dispatch seller notification",
			zap.Int64("order_id", p.OrderID),
			zap.Error(err),
		)
		return err
	}

	_, err = h.dispatcher.Dispatch(ctx, service.DispatchInput{
		UserID:      p.BuyerID,
		Name:        "Order Placed",
		Title:       "Order Confirmed",
		Body:        fmt.Sprintf("Your order for %s is confirmed", p.ProductName),
		SubjectType: "Order",
		SubjectID:   p.OrderID,
		Action:      "order_placed",
		Payload:     payload,
	})
	if err != nil {
		// Seller already notified; requeueing would duplicate that log.
		h.logger.Error("Failed to dispatch buyer notification",
			zap.Int64("order_id", p.OrderID),
			zap.Error(err),
		)
	}

	return nil
}
