// Package ics 일정을 iCalendar(RFC 5545) 형식으로 변환한다.
package ics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // TZID 해석용 내장 타임존 데이터

	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// ProductID VCALENDAR PRODID
const ProductID = "-//chatcal//chatcal-go//KO"

const rrulePrefix = "RRULE:"

// NewCalendar 빈 VCALENDAR 생성
func NewCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	return cal
}

// EventComponent 일정 기록을 VEVENT 로 변환. ID 가 비어 있으면 새 UID 를 만든다.
func EventComponent(rec *model.ProviderEventRecord, stamp time.Time) (*ical.Component, error) {
	start, err := parseDateTime(rec.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := parseDateTime(rec.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	uid := rec.ID
	if uid == "" {
		uid = uuid.NewString()
	}

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, rec.Summary)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, end)

	if rec.Description != "" {
		ve.Props.SetText(ical.PropDescription, rec.Description)
	}
	if rec.Location != "" {
		ve.Props.SetText(ical.PropLocation, rec.Location)
	}
	for _, line := range rec.Recurrence {
		if !strings.HasPrefix(line, rrulePrefix) {
			continue
		}
		p := ical.NewProp(ical.PropRecurrenceRule)
		p.Value = strings.TrimPrefix(line, rrulePrefix)
		ve.Props.Add(p)
	}
	return ve, nil
}

// RecordFromComponent VEVENT 를 일정 기록으로 변환
func RecordFromComponent(comp *ical.Component) (*model.ProviderEventRecord, error) {
	if comp.Name != ical.CompEvent {
		return nil, fmt.Errorf("unexpected component %s", comp.Name)
	}

	uid, err := comp.Props.Text(ical.PropUID)
	if err != nil {
		return nil, fmt.Errorf("uid: %w", err)
	}
	summary, _ := comp.Props.Text(ical.PropSummary)
	description, _ := comp.Props.Text(ical.PropDescription)
	location, _ := comp.Props.Text(ical.PropLocation)
	status, _ := comp.Props.Text(ical.PropStatus)

	start, err := eventDateTime(comp.Props.Get(ical.PropDateTimeStart))
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := eventDateTime(comp.Props.Get(ical.PropDateTimeEnd))
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	rec := &model.ProviderEventRecord{
		ID:          uid,
		Summary:     summary,
		Description: description,
		Location:    location,
		Start:       start,
		End:         end,
		Status:      strings.ToLower(status),
	}
	for _, p := range comp.Props.Values(ical.PropRecurrenceRule) {
		rec.Recurrence = append(rec.Recurrence, rrulePrefix+p.Value)
	}
	return rec, nil
}

// Encode 일정 목록을 하나의 VCALENDAR 문서로 쓴다.
func Encode(w io.Writer, records []*model.ProviderEventRecord, stamp time.Time) error {
	cal := NewCalendar()
	for _, rec := range records {
		ve, err := EventComponent(rec, stamp)
		if err != nil {
			return fmt.Errorf("event %q: %w", rec.ID, err)
		}
		cal.Children = append(cal.Children, ve)
	}
	return ical.NewEncoder(w).Encode(cal)
}

// SortByStart 시작 시각 오름차순 정렬. 파싱할 수 없는 시각은 뒤로 보낸다.
func SortByStart(records []*model.ProviderEventRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, errA := time.Parse(time.RFC3339, records[i].Start.DateTime)
		b, errB := time.Parse(time.RFC3339, records[j].Start.DateTime)
		if errA != nil || errB != nil {
			return errA == nil
		}
		return a.Before(b)
	})
}

func parseDateTime(dt model.EventDateTime) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil {
		return time.Time{}, err
	}
	if dt.TimeZone != "" {
		if loc, err := time.LoadLocation(dt.TimeZone); err == nil {
			return t.In(loc), nil
		}
	}
	return t.UTC(), nil
}

func eventDateTime(prop *ical.Prop) (model.EventDateTime, error) {
	if prop == nil {
		return model.EventDateTime{}, fmt.Errorf("missing property")
	}
	t, err := prop.DateTime(time.UTC)
	if err != nil {
		return model.EventDateTime{}, err
	}
	return model.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: prop.Params.Get(ical.PropParamTZID),
	}, nil
}
