package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/chatcal/chatcal-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler 웹소켓 채팅 및 캘린더 변경 알림
type WebSocketHandler struct {
	sessionService *service.SessionService
	chatService    ChatDispatcher
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewWebSocketHandler 웹소켓 처리기 생성. allowOrigins 가 비었거나 "*" 를 포함하면 출처를 검사하지 않는다.
func NewWebSocketHandler(sessionService *service.SessionService, chatService ChatDispatcher, allowOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		sessionService: sessionService,
		chatService:    chatService,
		upgrader:       websocket.Upgrader{CheckOrigin: originChecker(allowOrigins)},
		logger:         logger,
	}
}

// HandleWebSocket GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("웹소켓 업그레이드 실패", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	h.sessionService.Register(sessionID, conn, c.ClientIP())
	defer h.sessionService.Remove(sessionID)

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	var inflight sync.WaitGroup
	defer func() {
		cancel()
		inflight.Wait()
	}()

	h.logger.Info("웹소켓 연결", zap.String("sessionId", sessionID))

	for {
		var frame model.SocketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("웹소켓 읽기 오류", zap.String("sessionId", sessionID), zap.Error(err))
			}
			break
		}

		switch frame.Type {
		case model.FrameTypeHeartbeat:
			h.sessionService.UpdateHeartbeat(sessionID)

		case model.MessageTypeChat, model.MessageTypeEvent:
			if frame.MessageID == "" {
				frame.MessageID = uuid.New().String()
			}
			inflight.Add(1)
			go func(frame model.SocketFrame) {
				defer inflight.Done()
				h.dispatch(ctx, sessionID, frame)
			}(frame)

		default:
			h.logger.Warn("알 수 없는 프레임 타입",
				zap.String("sessionId", sessionID),
				zap.String("type", frame.Type))
		}
	}

	h.logger.Info("웹소켓 연결 종료", zap.String("sessionId", sessionID))
}

func (h *WebSocketHandler) dispatch(ctx context.Context, sessionID string, frame model.SocketFrame) {
	reply, err := h.chatService.HandleChatMessage(ctx, model.ChatMessage{Type: frame.Type, Content: frame.Content})

	out := model.SocketFrame{
		MessageID: frame.MessageID,
		Timestamp: time.Now(),
	}
	if err != nil {
		out.Type = model.FrameTypeError
		out.Error = model.GenericFailureMessage
		out.Details = err.Error()
	} else {
		out.Type = model.FrameTypeReply
		out.Reply = reply.Reply
		out.Event = reply.Event
	}

	if err := h.sessionService.Send(sessionID, out); err != nil && !errors.Is(err, service.ErrSessionNotFound) {
		h.logger.Warn("응답 전송 실패", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

func originChecker(allowOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
