package model

import (
	"sync"
	"time"
)

const (
	// MaxMissedBeats 이 횟수만큼 하트비트를 놓치면 세션을 정리한다.
	MaxMissedBeats = 3
	// WriteWait 프레임 하나를 쓰는 데 허용하는 시간
	WriteWait = 10 * time.Second
)

// SocketConn 세션이 사용하는 웹소켓 연결 (*websocket.Conn 이 만족한다)
type SocketConn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// ClientSession 웹소켓 클라이언트 세션
type ClientSession struct {
	SessionID     string
	Conn          SocketConn
	ClientIP      string
	ConnectedAt   time.Time
	LastHeartbeat time.Time
	MissedBeats   int
	mu            sync.RWMutex // 하트비트 필드 보호
	writeMu       sync.Mutex   // 연결 쓰기 직렬화
}

// NewClientSession 세션 생성
func NewClientSession(sessionID string, conn SocketConn, clientIP string, now time.Time) *ClientSession {
	return &ClientSession{
		SessionID:     sessionID,
		Conn:          conn,
		ClientIP:      clientIP,
		ConnectedAt:   now,
		LastHeartbeat: now,
	}
}

// UpdateHeartbeat 하트비트 시각 갱신
func (s *ClientSession) UpdateHeartbeat(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastHeartbeat = now
	s.MissedBeats = 0
}

// SinceHeartbeat 마지막 하트비트 이후 경과 시간
func (s *ClientSession) SinceHeartbeat(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.LastHeartbeat)
}

// IncrementMissedBeats 놓친 하트비트 수 증가
func (s *ClientSession) IncrementMissedBeats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MissedBeats++
	return s.MissedBeats
}

// ShouldBeCleaned 정리 대상인지 여부
func (s *ClientSession) ShouldBeCleaned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MissedBeats >= MaxMissedBeats
}

// WriteMessage 웹소켓에 JSON 쓰기 (동시 호출 안전).
// 쓰기는 WriteWait 안에 끝나야 하며 하트비트 필드 잠금과는 무관하다.
func (s *ClientSession) WriteMessage(message interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.Conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return s.Conn.WriteJSON(message)
}
