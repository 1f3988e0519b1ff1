package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chatcal/chatcal-go/internal/calendar"
	"github.com/chatcal/chatcal-go/internal/ics"
	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/chatcal/chatcal-go/internal/recurrence"
	"go.uber.org/zap"
)

const (
	upcomingLimit = 10
	exportLimit   = 250
)

// EventService 캘린더 일정 조회/추가/삭제
type EventService struct {
	provider calendar.Provider
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewEventService 일정 서비스 생성
func NewEventService(provider calendar.Provider, notifier Notifier, logger *zap.Logger) *EventService {
	return &EventService{
		provider: provider,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// ListUpcoming 다가오는 일정 최대 10개
func (s *EventService) ListUpcoming(ctx context.Context) ([]*model.ProviderEventRecord, error) {
	records, err := s.provider.ListUpcoming(ctx, upcomingLimit)
	if err != nil {
		return nil, asProviderError(err)
	}
	if records == nil {
		records = []*model.ProviderEventRecord{}
	}
	return records, nil
}

// AddEvent 호출 측이 만든 일정 요청을 그대로 저장
func (s *EventService) AddEvent(ctx context.Context, req *model.CalendarEventRequest) (*model.ProviderEventRecord, error) {
	if err := validateEventRequest(req); err != nil {
		return nil, err
	}

	record, err := s.provider.InsertEvent(ctx, req)
	if err != nil {
		return nil, asProviderError(err)
	}

	s.logger.Info("일정 추가", zap.String("eventId", record.ID), zap.String("summary", record.Summary))
	if s.notifier != nil {
		s.notifier.NotifyCalendarChanged(ActionCreated, record.ID)
	}
	return record, nil
}

// DeleteEvent 일정 삭제
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return fmt.Errorf("%w: eventId is required", model.ErrInvalidEvent)
	}

	if err := s.provider.DeleteEvent(ctx, eventID); err != nil {
		return asProviderError(err)
	}

	s.logger.Info("일정 삭제", zap.String("eventId", eventID))
	if s.notifier != nil {
		s.notifier.NotifyCalendarChanged(ActionDeleted, eventID)
	}
	return nil
}

// ExportICS 다가오는 일정을 VCALENDAR 문서로 내보낸다. 시각이 없는 종일 일정은 건너뛴다.
func (s *EventService) ExportICS(ctx context.Context) ([]byte, error) {
	records, err := s.provider.ListUpcoming(ctx, exportLimit)
	if err != nil {
		return nil, asProviderError(err)
	}

	exportable := make([]*model.ProviderEventRecord, 0, len(records))
	for _, rec := range records {
		if !hasTimestamp(rec.Start) || !hasTimestamp(rec.End) {
			s.logger.Debug("내보내기 제외", zap.String("eventId", rec.ID))
			continue
		}
		exportable = append(exportable, rec)
	}

	var buf bytes.Buffer
	if err := ics.Encode(&buf, exportable, s.now()); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func validateEventRequest(req *model.CalendarEventRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", model.ErrInvalidEvent)
	}
	if strings.TrimSpace(req.Summary) == "" {
		return fmt.Errorf("%w: summary is required", model.ErrInvalidEvent)
	}
	if !hasTimestamp(req.Start) {
		return fmt.Errorf("%w: start.dateTime must be RFC 3339", model.ErrInvalidEvent)
	}
	if !hasTimestamp(req.End) {
		return fmt.Errorf("%w: end.dateTime must be RFC 3339", model.ErrInvalidEvent)
	}
	if err := recurrence.Validate(req.Recurrence); err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidEvent, err)
	}
	return nil
}

func hasTimestamp(dt model.EventDateTime) bool {
	_, err := time.Parse(time.RFC3339, dt.DateTime)
	return err == nil
}

func asProviderError(err error) error {
	if errors.Is(err, model.ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrProvider, err)
}
