package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "github.com/NuralamMRH/soletradeproject-sub004/contracts/mq"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/realtime"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/metrics"
)

// UserStore resolves notification targets.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// LogStore persists notification logs.
type LogStore interface {
	Insert(ctx context.Context, log *model.Log) error
}

// RealtimePublisher delivers events to a user's realtime channel.
type RealtimePublisher interface {
	Publish(ctx context.Context, userID int64, event realtime.Event) error
}

// PushClient delivers external push notifications.
type PushClient interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// EventPublisher emits domain events onto the marketplace bus.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// DispatchInput describes one notification to one user.
type DispatchInput struct {
	UserID      int64
	Name        string
	Title       string
	Body        string
	SubjectType string
	SubjectID   int64
	Action      string
	Payload     map[string]any
}

// Dispatcher fans one notification out to the durable log, the realtime
// channel, and the push provider, and announces the persisted log on the
// event bus. The log write is the durability anchor: if it fails nothing
// is delivered, and once it succeeds channel failures are logged and
// swallowed.
type Dispatcher struct {
	users    UserStore
	logs     LogStore
	realtime RealtimePublisher
	push     PushClient
	events   EventPublisher
	logger   *zap.Logger
}

// NewDispatcher wires the delivery channels. events may be nil when the
// process has no bus connection of its own.
func NewDispatcher(
	users UserStore,
	logs LogStore,
	rt RealtimePublisher,
	push PushClient,
	events EventPublisher,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		users:    users,
		logs:     logs,
		realtime: rt,
		push:     push,
		events:   events,
		logger:   logger,
	}
}

// Dispatch notifies one user. Returns the persisted log on success. An
// unknown user or a failed log write aborts with no side effects beyond
// what already happened; realtime and push failures never fail the dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) (*model.Log, error) {
	user, err := d.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", in.UserID, err)
	}

	log := &model.Log{
		UserID:      user.ID,
		Name:        in.Name,
		SubjectType: in.SubjectType,
		SubjectID:   in.SubjectID,
		Action:      in.Action,
		Payload:     in.Payload,
		Message:     in.Body,
	}

	if err := d.logs.Insert(ctx, log); err != nil {
		metrics.IncrementDispatch("log", "failed")
		return nil, err
	}
	metrics.IncrementDispatch("log", "success")

	d.logger.Info("Notification log persisted",
		zap.Int64("log_id", log.ID),
		zap.Int64("user_id", user.ID),
		zap.String("action", in.Action),
	)

	// Fire-and-forget from here on: the event is durably recorded and at
	// least attempted on every channel.
	if d.events != nil {
		payload := mqcontracts.NotificationDispatchedPayload{
			LogID:        log.ID,
			UserID:       user.ID,
			SubjectType:  in.SubjectType,
			SubjectID:    in.SubjectID,
			Action:       in.Action,
			DispatchedAt: time.Now().UTC(),
		}
		if err := d.events.Publish(mqcontracts.RoutingKeyNotificationDispatched, payload); err != nil {
			metrics.IncrementDispatch("bus", "failed")
			d.logger.Error("Dispatched event publish failed",
				zap.Int64("user_id", user.ID),
				zap.Int64("log_id", log.ID),
				zap.Error(err),
			)
		} else {
			metrics.IncrementDispatch("bus", "success")
		}
	}

	event := realtime.Event{
		Title: in.Title,
		Body:  in.Body,
		Data:  d.eventData(in, log),
	}
	if err := d.realtime.Publish(ctx, user.ID, event); err != nil {
		metrics.IncrementDispatch("realtime", "failed")
		d.logger.Error("Realtime publish failed",
			zap.Int64("user_id", user.ID),
			zap.Int64("log_id", log.ID),
			zap.Error(err),
		)
	} else {
		metrics.IncrementDispatch("realtime", "success")
	}

	if !user.HasPushToken() {
		metrics.IncrementDispatch("push", "skipped")
		return log, nil
	}

	data := map[string]string{
		"logId":       fmt.Sprintf("%d", log.ID),
		"subjectType": in.SubjectType,
		"subjectId":   fmt.Sprintf("%d", in.SubjectID),
		"action":      in.Action,
	}
	if err := d.push.Send(ctx, *user.PushToken, in.Title, in.Body, data); err != nil {
		metrics.IncrementDispatch("push", "failed")
		d.logger.Error("Push delivery failed",
			zap.Int64("user_id", user.ID),
			zap.Int64("log_id", log.ID),
			zap.Error(err),
		)
	} else {
		metrics.IncrementDispatch("push", "success")
	}

	return log, nil
}

func (d *Dispatcher) eventData(in DispatchInput, log *model.Log) map[string]any {
	data := map[string]any{
		"logId":       log.ID,
		"subjectType": in.SubjectType,
		"subjectId":   in.SubjectID,
		"action":      in.Action,
	}
	for k, v := range in.Payload {
		data[k] = v
	}
	return data
}
