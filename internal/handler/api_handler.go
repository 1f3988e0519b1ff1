package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OnlineCounter 접속 세션 수
type OnlineCounter interface {
	OnlineCount() int
}

// APIHandler 공통 API 처리기
type APIHandler struct {
	serviceName string
	sessions    OnlineCounter
}

// NewAPIHandler API 처리기 생성
func NewAPIHandler(serviceName string, sessions OnlineCounter) *APIHandler {
	return &APIHandler{
		serviceName: serviceName,
		sessions:    sessions,
	}
}

// Health 헬스 체크
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "UP",
		"service":         h.serviceName,
		"online_sessions": h.sessions.OnlineCount(),
	})
}
