package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/chatcal/chatcal-go/internal/config"
	"github.com/chatcal/chatcal-go/internal/ics"
	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type caldavAPI interface {
	PutCalendarObject(ctx context.Context, path string, cal *ical.Calendar) (*caldav.CalendarObject, error)
	QueryCalendar(ctx context.Context, calendar string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error)
	RemoveAll(ctx context.Context, name string) error
}

// CalDAVProvider CalDAV 서버(iCloud, Nextcloud 등) 제공자
type CalDAVProvider struct {
	client       caldavAPI
	calendarPath string
	now          func() time.Time
	logger       *zap.Logger
}

// NewCalDAVProvider 이름으로 캘린더를 찾아 제공자를 생성
func NewCalDAVProvider(ctx context.Context, cfg config.CalendarConfig, logger *zap.Logger) (*CalDAVProvider, error) {
	httpClient := webdav.HTTPClientWithBasicAuth(&http.Client{Timeout: 30 * time.Second}, cfg.CalDAV.Username, cfg.CalDAV.Password)

	client, err := caldav.NewClient(httpClient, cfg.CalDAV.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	logger.Info("CalDAV 캘린더 검색", zap.String("calendarName", cfg.CalDAV.CalendarName))
	calendarPath, err := findCalendar(ctx, client, cfg.CalDAV.CalendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar %q: %w", cfg.CalDAV.CalendarName, err)
	}
	logger.Info("CalDAV 캘린더 확인", zap.String("path", calendarPath))

	return newCalDAVProvider(client, calendarPath, logger), nil
}

func newCalDAVProvider(client caldavAPI, calendarPath string, logger *zap.Logger) *CalDAVProvider {
	return &CalDAVProvider{
		client:       client,
		calendarPath: calendarPath,
		now:          time.Now,
		logger:       logger,
	}
}

// InsertEvent 새 UID 로 VEVENT 를 저장
func (p *CalDAVProvider) InsertEvent(ctx context.Context, req *model.CalendarEventRequest) (*model.ProviderEventRecord, error) {
	rec := &model.ProviderEventRecord{
		ID:          uuid.NewString(),
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start:       req.Start,
		End:         req.End,
		Recurrence:  req.Recurrence,
		Status:      "confirmed",
	}

	ve, err := ics.EventComponent(rec, p.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidEvent, err)
	}
	cal := ics.NewCalendar()
	cal.Children = append(cal.Children, ve)

	if _, err := p.client.PutCalendarObject(ctx, p.objectPath(rec.ID), cal); err != nil {
		return nil, providerError("insert", err)
	}

	p.logger.Info("CalDAV 일정 추가", zap.String("eventId", rec.ID), zap.String("summary", rec.Summary))
	return rec, nil
}

// ListUpcoming 현재 시각 이후의 일정을 시작 순으로 최대 max 개 조회
func (p *CalDAVProvider) ListUpcoming(ctx context.Context, max int) ([]*model.ProviderEventRecord, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{Name: ical.CompEvent, AllProps: true}},
		},
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{{Name: ical.CompEvent, Start: p.now().UTC()}},
		},
	}

	objects, err := p.client.QueryCalendar(ctx, p.calendarPath, query)
	if err != nil {
		return nil, providerError("list", err)
	}

	var records []*model.ProviderEventRecord
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, child := range obj.Data.Children {
			if child.Name != ical.CompEvent {
				continue
			}
			rec, err := ics.RecordFromComponent(child)
			if err != nil {
				p.logger.Warn("CalDAV 일정 변환 실패", zap.String("path", obj.Path), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}
	}

	ics.SortByStart(records)
	if max > 0 && len(records) > max {
		records = records[:max]
	}
	return records, nil
}

// DeleteEvent 일정 삭제
func (p *CalDAVProvider) DeleteEvent(ctx context.Context, eventID string) error {
	if err := p.client.RemoveAll(ctx, p.objectPath(eventID)); err != nil {
		return providerError("delete", err)
	}
	p.logger.Info("CalDAV 일정 삭제", zap.String("eventId", eventID))
	return nil
}

func (p *CalDAVProvider) objectPath(uid string) string {
	return path.Join(p.calendarPath, uid+".ics")
}

func findCalendar(ctx context.Context, client *caldav.Client, name string) (string, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name || strings.Trim(path.Base(cal.Path), "/") == name {
			return cal.Path, nil
		}
	}
	return "", errors.New("no calendar with that name")
}

var _ Provider = (*CalDAVProvider)(nil)
