package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is the payload delivered to a user's realtime channel.
type Event struct {
	Type  string         `json:"type"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data"`
}

const EventTypeNotification = "notification:new"

// Publisher delivers events over Redis pub/sub, one channel per user. PUBLISH
// to a channel with no subscriber is a no-op, so delivery is strictly
// "whoever is listening right now" -- no ack, no retry, no offline queue.
// The socket gateway subscribes each authenticated connection to its own
// user channel.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{
		rdb:    rdb,
		logger: logger,
	}
}

// UserChannel returns the pub/sub channel name for a user.
func UserChannel(userID int64) string {
	return fmt.Sprintf("user:%d:notifications", userID)
}

// Publish sends an event to the user's channel. The event timestamp is
// stamped here so subscribers see dispatch time, not delivery time.
func (p *Publisher) Publish(ctx context.Context, userID int64, event Event) error {
	if event.Type == "" {
		event.Type = EventTypeNotification
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	event.Data["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event: %w", err)
	}

	if err := p.rdb.Publish(ctx, UserChannel(userID), body).Err(); err != nil {
		return fmt.Errorf("failed to publish realtime event: %w", err)
	}

	p.logger.Debug("Published realtime event",
		zap.Int64("user_id", userID),
		zap.String("type", event.Type),
	)
	return nil
}
