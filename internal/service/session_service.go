package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chatcal/chatcal-go/internal/model"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("세션이 없습니다")
)

const (
	heartbeatInterval = 30 * time.Second
	heartbeatTimeout  = 60 * time.Second
)

// Notifier 캘린더 변경 알림
type Notifier interface {
	NotifyCalendarChanged(action, eventID string)
}

// SessionService 웹소켓 세션 관리
type SessionService struct {
	sessions map[string]*model.ClientSession // sessionId -> session
	mu       sync.RWMutex
	now      func() time.Time
	logger   *zap.Logger
}

// NewSessionService 세션 관리 서비스 생성
func NewSessionService(logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: make(map[string]*model.ClientSession),
		now:      time.Now,
		logger:   logger,
	}
}

// Register 세션 등록
func (s *SessionService) Register(sessionID string, conn model.SocketConn, clientIP string) *model.ClientSession {
	session := model.NewClientSession(sessionID, conn, clientIP, s.now())

	s.mu.Lock()
	if existing, ok := s.sessions[sessionID]; ok {
		_ = existing.Conn.Close()
	}
	s.sessions[sessionID] = session
	s.mu.Unlock()

	s.logger.Info("세션 등록",
		zap.String("sessionId", sessionID),
		zap.String("clientIp", clientIP))
	return session
}

// Remove 세션 제거
func (s *SessionService) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; ok {
		delete(s.sessions, sessionID)
		s.logger.Info("세션 제거", zap.String("sessionId", sessionID))
	}
}

// UpdateHeartbeat 하트비트 갱신. 세션이 없으면 false.
func (s *SessionService) UpdateHeartbeat(sessionID string) bool {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return false
	}
	session.UpdateHeartbeat(s.now())
	s.logger.Debug("하트비트 갱신", zap.String("sessionId", sessionID))
	return true
}

// Send 특정 세션에 프레임 전송
func (s *SessionService) Send(sessionID string, frame interface{}) error {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}

	if err := session.WriteMessage(frame); err != nil {
		s.logger.Error("프레임 전송 실패", zap.String("sessionId", sessionID), zap.Error(err))
		s.Remove(sessionID)
		return err
	}
	return nil
}

// Broadcast 모든 세션에 프레임을 동시에 전송하고 끝날 때까지 기다린다.
// 전송에 성공한 세션 수를 돌려준다.
func (s *SessionService) Broadcast(frame interface{}) int {
	sessions := s.snapshot()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
	)
	for _, session := range sessions {
		wg.Add(1)
		go func(session *model.ClientSession) {
			defer wg.Done()
			if err := session.WriteMessage(frame); err != nil {
				s.logger.Warn("브로드캐스트 실패, 세션 제거",
					zap.String("sessionId", session.SessionID),
					zap.Error(err))
				s.Remove(session.SessionID)
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(session)
	}
	wg.Wait()
	return delivered
}

// NotifyCalendarChanged 캘린더 변경을 모든 클라이언트에 알린다.
// 전송은 백그라운드에서 진행되므로 호출자는 클라이언트 쓰기를 기다리지 않는다.
func (s *SessionService) NotifyCalendarChanged(action, eventID string) {
	frame := model.SocketFrame{
		Type:      model.FrameTypeCalendarChanged,
		Action:    action,
		EventID:   eventID,
		Timestamp: s.now(),
	}
	go func() {
		delivered := s.Broadcast(frame)
		s.logger.Debug("캘린더 변경 알림",
			zap.String("action", action),
			zap.String("eventId", eventID),
			zap.Int("delivered", delivered))
	}()
}

// OnlineCount 접속 중인 세션 수
func (s *SessionService) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunHeartbeatChecker ctx 가 끝날 때까지 주기적으로 하트비트를 점검한다.
func (s *SessionService) RunHeartbeatChecker(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(s.now())
		}
	}
}

// sweep 하트비트가 끊긴 세션의 놓친 횟수를 올리고, 한도를 넘으면 연결을 닫는다.
// 세션 상태는 레지스트리 잠금 밖에서 확인한다.
func (s *SessionService) sweep(now time.Time) int {
	var expired []*model.ClientSession
	for _, session := range s.snapshot() {
		if session.SinceHeartbeat(now) <= heartbeatTimeout {
			continue
		}

		missed := session.IncrementMissedBeats()
		if !session.ShouldBeCleaned() {
			s.logger.Warn("하트비트 누락",
				zap.String("sessionId", session.SessionID),
				zap.Int("missedBeats", missed))
			continue
		}
		s.logger.Info("비활성 세션 정리",
			zap.String("sessionId", session.SessionID),
			zap.Int("missedBeats", missed))
		expired = append(expired, session)
	}

	removed := 0
	s.mu.Lock()
	for _, session := range expired {
		if s.sessions[session.SessionID] == session {
			delete(s.sessions, session.SessionID)
			removed++
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		_ = session.Conn.Close()
	}
	return removed
}

func (s *SessionService) snapshot() []*model.ClientSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*model.ClientSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

var _ Notifier = (*SessionService)(nil)
