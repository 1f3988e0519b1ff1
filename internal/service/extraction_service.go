package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chatcal/chatcal-go/internal/client"
	"github.com/chatcal/chatcal-go/internal/kdate"
	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/chatcal/chatcal-go/internal/recurrence"
	"go.uber.org/zap"
)

const (
	defaultStartTime = "00시"
	defaultEndTime   = "23시59분"
	noEndSentinel    = "끝 없음"
)

const extractionPrompt = `Extract event details from the following message.
Return the event title, date (with start and end dates), and time (with start and end times)
as a single JSON object shaped exactly like this:
{
  "eventTitle": "Your Event Title",
  "date": {
    "start": "Start Date",
    "end": "End Date"
  },
  "time": {
    "startTime": "Start Time",
    "endTime": "End Time"
  },
  "recurrence": "weekly/monthly/yearly"
}
Write dates like "12월 25일" and times like "오후 3시". Use "끝 없음" when there is no end date,
and null for anything the message does not mention.
The message is: "%s"`

// ExtractionService 채팅 문장에서 일정 생성 요청을 만든다.
type ExtractionService struct {
	llm     client.LLMClient
	timeout time.Duration
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewExtractionService 일정 추출 서비스 생성. loc 은 벽시계 시각을 해석할 위치이자 타임존 태그이며, nil 이면 Asia/Seoul.
func NewExtractionService(llm client.LLMClient, timeout time.Duration, loc *time.Location, logger *zap.Logger) *ExtractionService {
	if loc == nil {
		loc = time.FixedZone(model.SeoulTimeZone, 9*60*60)
	}
	return &ExtractionService{
		llm:     llm,
		timeout: timeout,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

// Extract 언어 모델로 초안을 받아 기본값을 채우고 정규화한다. 저장은 호출 측 책임.
func (s *ExtractionService) Extract(ctx context.Context, chatText string) (*model.CalendarEventRequest, error) {
	raw, err := s.callModel(ctx, chatText)
	if err != nil {
		return nil, err
	}

	draft, err := decodeDraft(raw)
	if err != nil {
		s.logger.Warn("일정 초안 파싱 실패", zap.String("reply", raw), zap.Error(err))
		return nil, err
	}
	if draft.Date == nil {
		return nil, model.ErrMissingData
	}

	startDate := draftString(draft.Date.Start)
	endDate := draftString(draft.Date.End)
	if endDate == "" || endDate == noEndSentinel {
		endDate = startDate
	}

	startTime, endTime := defaultStartTime, defaultEndTime
	if draft.Time != nil {
		if v := draftString(draft.Time.StartTime); v != "" {
			startTime = v
		}
		if v := draftString(draft.Time.EndTime); v != "" {
			endTime = v
		}
	}

	startParts, err := kdate.Parse(startDate, startTime)
	if err != nil {
		return nil, err
	}
	endParts, err := kdate.Parse(endDate, endTime)
	if err != nil {
		return nil, err
	}

	year := s.now().In(s.loc).Year()
	start, err := s.timestamp(year, startParts)
	if err != nil {
		return nil, err
	}
	end, err := s.timestamp(year, endParts)
	if err != nil {
		return nil, err
	}

	req := &model.CalendarEventRequest{
		Summary: draftText(draft.EventTitle),
		Start:   model.EventDateTime{DateTime: start, TimeZone: s.loc.String()},
		End:     model.EventDateTime{DateTime: end, TimeZone: s.loc.String()},
	}
	if kind := draftString(draft.Recurrence); kind != "" {
		req.Recurrence = recurrence.Rules(kind)
	}

	s.logger.Info("일정 추출 완료",
		zap.String("summary", req.Summary),
		zap.String("start", req.Start.DateTime),
		zap.String("end", req.End.DateTime),
		zap.Strings("recurrence", req.Recurrence))
	return req, nil
}

func (s *ExtractionService) callModel(ctx context.Context, chatText string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.llm.Chat(ctx, []client.Message{
		{Role: client.RoleSystem, Content: fmt.Sprintf(extractionPrompt, chatText)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrModelCall, err)
	}
	return reply, nil
}

// timestamp 현재 연도와 월/일/시를 RFC 3339 로 표현. 범위를 벗어난 월/일은 형식 오류.
func (s *ExtractionService) timestamp(year int, parts model.DateTimeParts) (string, error) {
	if parts.Month < 1 || parts.Month > 12 || parts.Day < 1 || parts.Day > 31 {
		return "", fmt.Errorf("%w: %d월 %d일", model.ErrFormat, parts.Month, parts.Day)
	}
	t := time.Date(year, time.Month(parts.Month), parts.Day, parts.Hour, 0, 0, 0, s.loc)
	return t.Format(time.RFC3339), nil
}

// decodeDraft 코드 펜스나 앞뒤 설명이 붙은 응답에서도 가장 바깥 JSON 객체를 꺼낸다.
func decodeDraft(reply string) (*model.ExtractedEventDraft, error) {
	candidate := strings.TrimSpace(reply)
	if strings.HasPrefix(candidate, "```") {
		candidate = strings.TrimSpace(strings.TrimPrefix(candidate, "```json"))
		candidate = strings.TrimSpace(strings.TrimPrefix(candidate, "```"))
		candidate = strings.TrimSpace(strings.TrimSuffix(candidate, "```"))
	}
	if !strings.HasPrefix(candidate, "{") {
		start := strings.Index(candidate, "{")
		end := strings.LastIndex(candidate, "}")
		if start >= 0 && end > start {
			candidate = candidate[start : end+1]
		}
	}

	var draft model.ExtractedEventDraft
	if err := json.Unmarshal([]byte(candidate), &draft); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrJSONParse, err)
	}
	return &draft, nil
}

func draftValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// draftString 문자열 값만 인정한다. 배열, 숫자, null 등은 빈 문자열.
func draftString(raw json.RawMessage) string {
	if s, ok := draftValue(raw).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// draftText 제목은 숫자나 불리언이어도 글자로 옮긴다.
func draftText(raw json.RawMessage) string {
	switch v := draftValue(raw).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
