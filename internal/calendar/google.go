package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatcal/chatcal-go/internal/config"
	"github.com/chatcal/chatcal-go/internal/model"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider 구글 캘린더 제공자
type GoogleProvider struct {
	service    *gcal.Service
	calendarID string
	now        func() time.Time
	logger     *zap.Logger
}

// OAuthConfig 구글 OAuth 설정 생성 (인증 CLI 와 공유)
func OAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// NewGoogleProvider 리프레시 토큰으로 인증된 구글 캘린더 클라이언트 생성
func NewGoogleProvider(ctx context.Context, cfg config.CalendarConfig, logger *zap.Logger) (*GoogleProvider, error) {
	if cfg.Google.RefreshToken == "" {
		return nil, errors.New("google refresh token is required. run chatcal-auth first")
	}

	token := &oauth2.Token{RefreshToken: cfg.Google.RefreshToken}
	httpClient := OAuthConfig(cfg.Google).Client(ctx, token)

	return NewGoogleProviderWithOptions(ctx, cfg.CalendarID, logger, option.WithHTTPClient(httpClient))
}

// NewGoogleProviderWithOptions 클라이언트 옵션을 직접 지정해 생성
func NewGoogleProviderWithOptions(ctx context.Context, calendarID string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleProvider, error) {
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	return &GoogleProvider{
		service:    service,
		calendarID: calendarID,
		now:        time.Now,
		logger:     logger,
	}, nil
}

// InsertEvent 일정 추가
func (p *GoogleProvider) InsertEvent(ctx context.Context, req *model.CalendarEventRequest) (*model.ProviderEventRecord, error) {
	created, err := p.service.Events.Insert(p.calendarID, toGoogleEvent(req)).Context(ctx).Do()
	if err != nil {
		return nil, providerError("insert", err)
	}

	p.logger.Info("구글 캘린더 일정 추가",
		zap.String("eventId", created.Id),
		zap.String("summary", created.Summary))
	return fromGoogleEvent(created), nil
}

// ListUpcoming 현재 시각 이후의 일정을 시작 순으로 조회
func (p *GoogleProvider) ListUpcoming(ctx context.Context, max int) ([]*model.ProviderEventRecord, error) {
	events, err := p.service.Events.List(p.calendarID).
		TimeMin(p.now().Format(time.RFC3339)).
		MaxResults(int64(max)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError("list", err)
	}

	records := make([]*model.ProviderEventRecord, 0, len(events.Items))
	for _, item := range events.Items {
		records = append(records, fromGoogleEvent(item))
	}
	p.logger.Debug("구글 캘린더 일정 조회", zap.Int("count", len(records)))
	return records, nil
}

// DeleteEvent 일정 삭제
func (p *GoogleProvider) DeleteEvent(ctx context.Context, eventID string) error {
	if err := p.service.Events.Delete(p.calendarID, eventID).Context(ctx).Do(); err != nil {
		return providerError("delete", err)
	}
	p.logger.Info("구글 캘린더 일정 삭제", zap.String("eventId", eventID))
	return nil
}

func toGoogleEvent(req *model.CalendarEventRequest) *gcal.Event {
	return &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start:       &gcal.EventDateTime{DateTime: req.Start.DateTime, TimeZone: req.Start.TimeZone},
		End:         &gcal.EventDateTime{DateTime: req.End.DateTime, TimeZone: req.End.TimeZone},
		Recurrence:  req.Recurrence,
	}
}

func fromGoogleEvent(ev *gcal.Event) *model.ProviderEventRecord {
	return &model.ProviderEventRecord{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       fromGoogleDateTime(ev.Start),
		End:         fromGoogleDateTime(ev.End),
		Recurrence:  ev.Recurrence,
		Status:      ev.Status,
		HTMLLink:    ev.HtmlLink,
	}
}

// 종일 일정은 DateTime 대신 Date 만 있다.
func fromGoogleDateTime(dt *gcal.EventDateTime) model.EventDateTime {
	if dt == nil {
		return model.EventDateTime{}
	}
	value := dt.DateTime
	if value == "" {
		value = dt.Date
	}
	return model.EventDateTime{DateTime: value, TimeZone: dt.TimeZone}
}

var _ Provider = (*GoogleProvider)(nil)
