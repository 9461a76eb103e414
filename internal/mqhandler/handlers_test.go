package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "github.com/NuralamMRH/soletradeproject-sub004/contracts/mq"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/service"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/throttle"
)

type fakeDispatcher struct {
	dispatched []service.DispatchInput
	failFor    map[int64]bool
	nextID     int64
}

func (f *fakeDispatcher) Dispatch(_ context.Context, in service.DispatchInput) (*model.Log, error) {
	if f.failFor[in.UserID] {
		return nil, errors.New("dispatch failed")
	}
	f.dispatched = append(f.dispatched, in)
	f.nextID++
	return &model.Log{ID: f.nextID, UserID: in.UserID}, nil
}

type fakeWatchStore struct {
	watches []*model.Watch
}

func (f *fakeWatchStore) ListByProductAndKind(_ context.Context, productID int64, kind string) ([]*model.Watch, error) {
	var out []*model.Watch
	for _, w := range f.watches {
		if w.ProductID == productID && w.Kind == kind {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWatchStore) MarkNotifiedByProduct(_ context.Context, productID int64, kind string) error {
	return nil
}

func orderPayload(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(mqcontracts.OrderPlacedPayload{
		OrderID:     42,
		BuyerID:     2,
		SellerID:    7,
		ProductID:   9,
		ProductName: "Jordan 1",
		Amount:      250,
		PlacedAt:    time.Now(),
	})
	require.NoError(t, err)
	return raw
}

func TestOrderPlacedNotifiesBothParties(t *testing.T) {
	d := &fakeDispatcher{}
	h := &OrderPlacedHandler{dispatcher: d, logger: zap.NewNop()}

	require.NoError(t, h.Handle(context.Background(), orderPayload(t)))

	require.Len(t, d.dispatched, 2)
	assert.Equal(t, int64(7), d.dispatched[0].UserID)
	assert.Equal(t, "New Order", d.dispatched[0].Title)
	assert.Equal(t, int64(2), d.dispatched[1].UserID)
	assert.Equal(t, "Order Confirmed", d.dispatched[1].Title)
	for _, in := range d.dispatched {
		assert.Equal(t, "Order", in.SubjectType)
		assert.Equal(t, int64(42), in.SubjectID)
		assert.Equal(t, "order_placed", in.Action)
	}
}

func TestOrderPlacedSellerFailureRequeues(t *testing.T) {
	d := &fakeDispatcher{failFor: map[int64]bool{7: true}}
	h := &OrderPlacedHandler{dispatcher: d, logger: zap.NewNop()}

	err := h.Handle(context.Background(), orderPayload(t))

	require.Error(t, err)
	assert.Empty(t, d.dispatched)
}

func TestOrderPlacedBuyerFailureDoesNotRequeue(t *testing.T) {
	d := &fakeDispatcher{failFor: map[int64]bool{2: true}}
	h := &OrderPlacedHandler{dispatcher: d, logger: zap.NewNop()}

	// Seller already got their log; a nack would duplicate it.
	require.NoError(t, h.Handle(context.Background(), orderPayload(t)))
	assert.Len(t, d.dispatched, 1)
}

func TestOrderPlacedMalformedPayload(t *testing.T) {
	d := &fakeDispatcher{}
	h := &OrderPlacedHandler{dispatcher: d, logger: zap.NewNop()}

	err := h.Handle(context.Background(), json.RawMessage(`{broken`))

	require.Error(t, err)
	assert.Empty(t, d.dispatched)
}

func pricePayload(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(mqcontracts.PriceDroppedPayload{
		ProductID:   9,
		ProductName: "Jordan 1",
		OldPrice:    250,
		NewPrice:    199,
		ChangedAt:   time.Now(),
	})
	require.NoError(t, err)
	return raw
}

func TestPriceDropNotifiesWatchers(t *testing.T) {
	d := &fakeDispatcher{}
	watches := &fakeWatchStore{watches: []*model.Watch{
		{ID: 1, UserID: 2, ProductID: 9, Kind: model.WatchKindPrice},
		{ID: 2, UserID: 3, ProductID: 9, Kind: model.WatchKindPrice},
		{ID: 3, UserID: 4, ProductID: 9, Kind: model.WatchKindCalendar},
	}}
	h := &PriceDropHandler{
		watches:        watches,
		dispatcher:     d,
		throttle:       throttle.NewMemoryCache(),
		throttleWindow: time.Hour,
		logger:         zap.NewNop(),
	}

	require.NoError(t, h.Handle(context.Background(), pricePayload(t)))

	// Only the price watchers, not the calendar watcher.
	require.Len(t, d.dispatched, 2)
	assert.Equal(t, "price_drop", d.dispatched[0].Action)
	assert.Equal(t, int64(9), d.dispatched[0].SubjectID)
}

func TestPriceDropThrottlesRepeatEvents(t *testing.T) {
	d := &fakeDispatcher{}
	watches := &fakeWatchStore{watches: []*model.Watch{
		{ID: 1, UserID: 2, ProductID: 9, Kind: model.WatchKindPrice},
	}}
	h := &PriceDropHandler{
		watches:        watches,
		dispatcher:     d,
		throttle:       throttle.NewMemoryCache(),
		throttleWindow: time.Hour,
		logger:         zap.NewNop(),
	}

	require.NoError(t, h.Handle(context.Background(), pricePayload(t)))
	require.NoError(t, h.Handle(context.Background(), pricePayload(t)))

	// Second drop inside the window collapses into the first notification.
	assert.Len(t, d.dispatched, 1)
}
