package model

import "time"

// ChatMessage 채팅 요청 메시지
type ChatMessage struct {
	Type    string `json:"type"` // chat, event
	Content string `json:"content"`
}

// IsEvent 일정 추가 요청인지 여부
func (m ChatMessage) IsEvent() bool {
	return m.Type == MessageTypeEvent
}

// ChatReply 채팅 응답
type ChatReply struct {
	Reply string               `json:"reply"`
	Event *ProviderEventRecord `json:"event,omitempty"`
}

// ErrorResponse 외부로 노출되는 일반 오류 응답
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GenericFailureMessage 처리 실패 시 사용자에게 보여주는 문구
const GenericFailureMessage = "처리 중 오류 발생"

// 웹소켓 프레임 타입
const (
	FrameTypeHeartbeat       = "heartbeat"
	FrameTypeReply           = "reply"
	FrameTypeError           = "error"
	FrameTypeCalendarChanged = "calendar.changed"
)

// SocketFrame 웹소켓으로 주고받는 프레임
type SocketFrame struct {
	MessageID string               `json:"messageId,omitempty"`
	Type      string               `json:"type"` // chat, event, heartbeat, reply, error, calendar.changed
	Content   string               `json:"content,omitempty"`
	Reply     string               `json:"reply,omitempty"`
	Event     *ProviderEventRecord `json:"event,omitempty"`
	Error     string               `json:"error,omitempty"`
	Details   string               `json:"details,omitempty"`
	Action    string               `json:"action,omitempty"` // created, deleted
	EventID   string               `json:"eventId,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// TranscriptEntry 대화 기록 한 건
type TranscriptEntry struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Reply     string    `json:"reply,omitempty"`
	EventID   string    `json:"eventId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
