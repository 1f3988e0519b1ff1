package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventManager 일정 조회/추가/삭제/내보내기
type EventManager interface {
	ListUpcoming(ctx context.Context) ([]*model.ProviderEventRecord, error)
	AddEvent(ctx context.Context, req *model.CalendarEventRequest) (*model.ProviderEventRecord, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ExportICS(ctx context.Context) ([]byte, error)
}

// EventHandler 일정 API 처리기
type EventHandler struct {
	eventService EventManager
	logger       *zap.Logger
}

// NewEventHandler 일정 처리기 생성
func NewEventHandler(eventService EventManager, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// ListEvents GET /api/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	records, err := h.eventService.ListUpcoming(c.Request.Context())
	if err != nil {
		h.fail(c, "Error fetching events", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// AddEvent POST /api/add-event
func (h *EventHandler) AddEvent(c *gin.Context) {
	var req model.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	record, err := h.eventService.AddEvent(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "Error adding event", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteEvent DELETE /api/delete-event/:eventId
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		h.fail(c, "Error deleting event", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "이벤트 삭제됨"})
}

// ExportICS GET /api/events.ics
func (h *EventHandler) ExportICS(c *gin.Context) {
	data, err := h.eventService.ExportICS(c.Request.Context())
	if err != nil {
		h.fail(c, "Error exporting events", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chatcal.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// fail 검증 오류는 400, 그 외는 500
func (h *EventHandler) fail(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	status := http.StatusInternalServerError
	if errors.Is(err, model.ErrInvalidEvent) {
		status = http.StatusBadRequest
	}
	c.JSON(status, model.ErrorResponse{Error: message, Details: err.Error()})
}
