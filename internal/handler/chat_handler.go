package handler

import (
	"context"
	"net/http"

	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatDispatcher 채팅 메시지 처리기
type ChatDispatcher interface {
	HandleChatMessage(ctx context.Context, msg model.ChatMessage) (*model.ChatReply, error)
}

// ChatHandler 채팅 API 처리기
type ChatHandler struct {
	chatService ChatDispatcher
	logger      *zap.Logger
}

// NewChatHandler 채팅 처리기 생성
func NewChatHandler(chatService ChatDispatcher, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var msg model.ChatMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reply, err := h.chatService.HandleChatMessage(c.Request.Context(), msg)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.GenericFailureMessage,
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, reply)
}
