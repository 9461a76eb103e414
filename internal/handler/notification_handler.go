package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/internal/model"
	"github.com/NuralamMRH/soletradeproject-sub004/internal/repository"
)

// LogQueryStore is the slice of the log repository the query surface needs.
type LogQueryStore interface {
	ListByUser(ctx context.Context, userID int64) ([]*model.Log, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Log, error)
	MarkSeen(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID, id int64) error
	BulkDelete(ctx context.Context, userID int64, ids []int64) (int64, error)
}

type NotificationHandler struct {
	logs   LogQueryStore
	logger *zap.Logger
}

func NewNotificationHandler(logs LogQueryStore, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		logs:   logs,
		logger: logger,
	}
}

type logResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	SubjectType string         `json:"subjectType"`
	SubjectID   int64          `json:"subjectId"`
	Action      string         `json:"action"`
	Payload     map[string]any `json:"payload,omitempty"`
	Message     string         `json:"message,omitempty"`
	Seen        bool           `json:"seen"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

func toLogResponse(l *model.Log) logResponse {
	return logResponse{
		ID:          l.ID,
		Name:        l.Name,
		SubjectType: l.SubjectType,
		SubjectID:   l.SubjectID,
		Action:      l.Action,
		Payload:     l.Payload,
		Message:     l.Message,
		Seen:        l.Seen,
		CreatedAt:   l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   l.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List returns the caller's notifications, unseen first, newest first.
// GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")

	logs, err := h.logs.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list notifications",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	out := make([]logResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toLogResponse(l))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

// Get returns one notification by id.
// GET /notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	userID := c.GetInt64("user_id")

	id, ok := h.pathID(c)
	if !ok {
		return
	}

	log, err := h.logs.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrLogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		h.logger.Error("Failed to get notification",
			zap.Int64("user_id", userID),
			zap.Int64("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get notification"})
		return
	}

	c.JSON(http.StatusOK, toLogResponse(log))
}

// MarkSeen flips the seen flag on one notification.
// PATCH /notifications/:id/seen
func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	userID := c.GetInt64("user_id")

	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.logs.MarkSeen(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrLogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		h.logger.Error("Failed to mark notification seen",
			zap.Int64("user_id", userID),
			zap.Int64("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification seen"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "seen", "id": id})
}

// Delete removes one notification.
// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetInt64("user_id")

	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.logs.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrLogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		h.logger.Error("Failed to delete notification",
			zap.Int64("user_id", userID),
			zap.Int64("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// BulkDelete removes the caller's notifications in the id set. Ids that do
// not exist are ignored; an empty or malformed id set is a client error and
// nothing is deleted.
// POST /notifications/bulk-delete
func (h *NotificationHandler) BulkDelete(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be an array of notification ids"})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be a non-empty array"})
		return
	}

	deleted, err := h.logs.BulkDelete(c.Request.Context(), userID, req.IDs)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidBulkRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be a non-empty array"})
			return
		}
		h.logger.Error("Failed to bulk delete notifications",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to bulk delete notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "deleted_count": deleted})
}

func (h *NotificationHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return 0, false
	}
	return id, true
}
