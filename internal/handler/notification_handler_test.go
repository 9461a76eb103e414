package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/repository"
)

type fakeLogStore struct {
	logs map[int64]*model.Log
}

func (f *fakeLogStore) owned(userID int64) []*model.Log {
	var out []*model.Log
	for _, l := range f.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeLogStore) ListByUser(_ context.Context, userID int64) ([]*model.Log, error) {
	// Unseen first, then newest first, matching the repository's ordering.
	logs := f.owned(userID)
	for i := 0; i < len(logs); i++ {
		for j := i + 1; j < len(logs); j++ {
			a, b := logs[i], logs[j]
			swap := false
			if a.Seen != b.Seen {
				swap = a.Seen && !b.Seen
			} else {
				swap = a.CreatedAt.Before(b.CreatedAt)
			}
			if swap {
				logs[i], logs[j] = logs[j], logs[i]
			}
		}
	}
	return logs, nil
}

func (f *fakeLogStore) GetByID(_ context.Context, userID, id int64) (*model.Log, error) {
	l, ok := f.logs[id]
	if !ok || l.UserID != userID {
		return nil, repository.ErrLogNotFound
	}
	return l, nil
}

func (f *fakeLogStore) MarkSeen(_ context.Context, userID, id int64) error {
	l, ok := f.logs[id]
	if !ok || l.UserID != userID {
		return repository.ErrLogNotFound
	}
	l.Seen = true
	return nil
}

func (f *fakeLogStore) Delete(_ context.Context, userID, id int64) error {
	l, ok := f.logs[id]
	if !ok || l.UserID != userID {
		return repository.ErrLogNotFound
	}
	delete(f.logs, id)
	return nil
}

func (f *fakeLogStore) BulkDelete(_ context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, repository.ErrInvalidBulkRequest
	}
	var deleted int64
	for _, id := range ids {
		if l, ok := f.logs[id]; ok && l.UserID == userID {
			delete(f.logs, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestRouter(store *fakeLogStore, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewNotificationHandler(store, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.GET("/notifications", h.List)
	r.GET("/notifications/:id", h.Get)
	r.PATCH("/notifications/:id/seen", h.MarkSeen)
	r.DELETE("/notifications/:id", h.Delete)
	r.POST("/notifications/bulk-delete", h.BulkDelete)
	return r
}

func seedStore() *fakeLogStore {
	now := time.Now()
	return &fakeLogStore{logs: map[int64]*model.Log{
		1: {ID: 1, UserID: 5, Name: "Order Placed", SubjectType: "Order", SubjectID: 42, Action: "order_placed", Seen: true, CreatedAt: now.Add(-3 * time.Hour), UpdatedAt: now},
		2: {ID: 2, UserID: 5, Name: "Price Drop", SubjectType: "Product", SubjectID: 7, Action: "price_drop", CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now},
		3: {ID: 3, UserID: 5, Name: "Product Launched", SubjectType: "Product", SubjectID: 8, Action: "notification", CreatedAt: now.Add(-1 * time.Hour), UpdatedAt: now},
		4: {ID: 4, UserID: 6, Name: "Order Placed", SubjectType: "Order", SubjectID: 43, Action: "order_placed", CreatedAt: now, UpdatedAt: now},
	}}
}

func TestListUnseenFirstNewestFirst(t *testing.T) {
	router := newTestRouter(seedStore(), 5)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Notifications []struct {
			ID   int64 `json:"id"`
			Seen bool  `json:"seen"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 3)

	// Unseen logs (3 newest-first, then 2), seen log (1) last.
	assert.Equal(t, int64(3), body.Notifications[0].ID)
	assert.Equal(t, int64(2), body.Notifications[1].ID)
	assert.Equal(t, int64(1), body.Notifications[2].ID)
	assert.True(t, body.Notifications[2].Seen)
}

func TestMarkSeenMovesLogBehindUnseen(t *testing.T) {
	store := seedStore()
	router := newTestRouter(store, 5)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/notifications/3/seen", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/notifications", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Notifications []struct {
			ID   int64 `json:"id"`
			Seen bool  `json:"seen"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 3)

	// Log 3 is now seen and sorts after the remaining unseen log.
	assert.Equal(t, int64(2), body.Notifications[0].ID)
	assert.False(t, body.Notifications[0].Seen)
	for _, n := range body.Notifications[1:] {
		assert.True(t, n.Seen)
	}
}

func TestGetScopedToOwner(t *testing.T) {
	router := newTestRouter(seedStore(), 5)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications/4", nil)
	router.ServeHTTP(w, req)

	// Log 4 belongs to user 6.
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteNotFound(t *testing.T) {
	router := newTestRouter(seedStore(), 5)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/notifications/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkDeleteMixedIDs(t *testing.T) {
	store := seedStore()
	router := newTestRouter(store, 5)

	payload, _ := json.Marshal(map[string]any{"ids": []int64{1, 2, 999}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/bulk-delete", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.DeletedCount)
	assert.Len(t, store.owned(5), 1)
}

func TestBulkDeleteRejectsEmptyIDSet(t *testing.T) {
	store := seedStore()
	router := newTestRouter(store, 5)

	for _, payload := range []string{`{"ids":[]}`, `{}`, `{"ids":"1,2"}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notifications/bulk-delete", bytes.NewReader([]byte(payload)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %q", payload)
	}

	// Nothing was deleted by the rejected requests.
	assert.Len(t, store.owned(5), 3)
}

func TestInvalidIDParam(t *testing.T) {
	router := newTestRouter(seedStore(), 5)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
