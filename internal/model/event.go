package model

import "encoding/json"

// 메시지 타입
const (
	MessageTypeChat  = "chat"
	MessageTypeEvent = "event"
)

// SeoulTimeZone 캘린더에 기록하는 고정 타임존 태그
const SeoulTimeZone = "Asia/Seoul"

// ExtractedEventDraft 언어 모델이 돌려준 일정 초안 (신뢰하지 않는 입력).
// 값 필드는 타입을 가리지 않고 받아 두고, 해석은 사용하는 쪽에서 한다.
type ExtractedEventDraft struct {
	EventTitle json.RawMessage `json:"eventTitle"`
	Date       *DraftDate      `json:"date"`
	Time       *DraftTime      `json:"time"`
	Recurrence json.RawMessage `json:"recurrence"`
}

// DraftDate 초안의 날짜 부분
type DraftDate struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
}

// DraftTime 초안의 시간 부분
type DraftTime struct {
	StartTime json.RawMessage `json:"startTime"`
	EndTime   json.RawMessage `json:"endTime"`
}

// DateTimeParts 타임존 없는 월/일/시
type DateTimeParts struct {
	Month int `json:"month"`
	Day   int `json:"day"`
	Hour  int `json:"hour"`
}

// EventDateTime 시각과 타임존 태그
type EventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

// CalendarEventRequest 캘린더 제공자에 전달하는 일정 생성 요청
type CalendarEventRequest struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Start       EventDateTime `json:"start"`
	End         EventDateTime `json:"end"`
	Recurrence  []string      `json:"recurrence,omitempty"`
}

// ProviderEventRecord 캘린더 제공자가 저장한 일정
type ProviderEventRecord struct {
	ID          string        `json:"id"`
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Start       EventDateTime `json:"start"`
	End         EventDateTime `json:"end"`
	Recurrence  []string      `json:"recurrence,omitempty"`
	Status      string        `json:"status,omitempty"`
	HTMLLink    string        `json:"htmlLink,omitempty"`
}
