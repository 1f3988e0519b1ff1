package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatcal/chatcal-go/internal/calendar"
	"github.com/chatcal/chatcal-go/internal/client"
	"github.com/chatcal/chatcal-go/internal/model"
	"go.uber.org/zap"
)

// 캘린더 변경 종류
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TranscriptRecorder 대화 기록 저장소
type TranscriptRecorder interface {
	Append(ctx context.Context, entry model.TranscriptEntry) error
}

// ChatService 채팅 메시지를 일정 추가 또는 일반 대화로 분기한다.
type ChatService struct {
	extractor  *ExtractionService
	llm        client.LLMClient
	provider   calendar.Provider
	notifier   Notifier
	transcript TranscriptRecorder
	timeout    time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewChatService 채팅 서비스 생성. notifier 와 transcript 는 nil 이어도 된다.
func NewChatService(
	extractor *ExtractionService,
	llm client.LLMClient,
	provider calendar.Provider,
	notifier Notifier,
	transcript TranscriptRecorder,
	timeout time.Duration,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		extractor:  extractor,
		llm:        llm,
		provider:   provider,
		notifier:   notifier,
		transcript: transcript,
		timeout:    timeout,
		now:        time.Now,
		logger:     logger,
	}
}

// HandleChatMessage 메시지 처리. 오류는 종류를 유지한 채 돌려주고 외부 응답 변환은 경계에서 한다.
func (s *ChatService) HandleChatMessage(ctx context.Context, msg model.ChatMessage) (*model.ChatReply, error) {
	s.logger.Info("채팅 메시지 처리",
		zap.String("type", msg.Type),
		zap.Int("length", len(msg.Content)))

	var (
		reply *model.ChatReply
		err   error
	)
	if msg.IsEvent() {
		reply, err = s.handleEvent(ctx, msg.Content)
	} else {
		reply, err = s.handleChat(ctx, msg.Content)
	}

	if err != nil {
		s.logger.Error("채팅 메시지 처리 실패", zap.String("type", msg.Type), zap.Error(err))
	}
	s.record(ctx, msg, reply, err)
	return reply, err
}

// handleEvent 추출이 모두 끝난 뒤에만 제공자에 쓴다.
func (s *ChatService) handleEvent(ctx context.Context, content string) (*model.ChatReply, error) {
	req, err := s.extractor.Extract(ctx, content)
	if err != nil {
		return nil, err
	}

	record, err := s.provider.InsertEvent(ctx, req)
	if err != nil {
		if !errors.Is(err, model.ErrProvider) {
			err = fmt.Errorf("%w: %w", model.ErrProvider, err)
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyCalendarChanged(ActionCreated, record.ID)
	}

	return &model.ChatReply{
		Reply: fmt.Sprintf("일정이 추가되었습니다: %s", req.Summary),
		Event: record,
	}, nil
}

// handleChat 내용을 그대로 사용자 메시지로 보내고 모델 응답을 그대로 돌려준다.
func (s *ChatService) handleChat(ctx context.Context, content string) (*model.ChatReply, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.llm.Chat(ctx, []client.Message{{Role: client.RoleUser, Content: content}})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrModelCall, err)
	}
	return &model.ChatReply{Reply: text}, nil
}

func (s *ChatService) record(ctx context.Context, msg model.ChatMessage, reply *model.ChatReply, err error) {
	if s.transcript == nil {
		return
	}

	entry := model.TranscriptEntry{
		Type:      msg.Type,
		Content:   msg.Content,
		Timestamp: s.now(),
	}
	if reply != nil {
		entry.Reply = reply.Reply
		if reply.Event != nil {
			entry.EventID = reply.Event.ID
		}
	}
	if err != nil {
		entry.Error = err.Error()
	}

	// 요청이 취소되어도 기록은 남긴다.
	if appendErr := s.transcript.Append(context.WithoutCancel(ctx), entry); appendErr != nil {
		s.logger.Warn("대화 기록 저장 실패", zap.Error(appendErr))
	}
}
