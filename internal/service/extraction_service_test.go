package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chatcal/chatcal-go/internal/client"
	"github.com/chatcal/chatcal-go/internal/model"
	"go.uber.org/zap"
)

var kst = time.FixedZone(model.SeoulTimeZone, 9*3600)

func newTestExtraction(llm client.LLMClient) *ExtractionService {
	s := NewExtractionService(llm, time.Second, kst, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, kst) }
	return s
}

func TestExtractScenarioDefaultTimes(t *testing.T) {
	llm := &fakeLLM{reply: `{"eventTitle":"회의","date":{"start":"12월 25일","end":null},"time":{"startTime":"오후 3시","endTime":null},"recurrence":null}`}
	s := newTestExtraction(llm)

	req, err := s.Extract(context.Background(), "12월 25일 오후 3시에 회의")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if req.Summary != "회의" {
		t.Fatalf("unexpected summary %q", req.Summary)
	}
	if req.Start.DateTime != "2025-12-25T15:00:00+09:00" {
		t.Fatalf("unexpected start %q", req.Start.DateTime)
	}
	// "23시59분" 은 오전/오후 표시가 없어 0시가 된다.
	if req.End.DateTime != "2025-12-25T00:00:00+09:00" {
		t.Fatalf("unexpected end %q", req.End.DateTime)
	}
	if req.Start.TimeZone != "Asia/Seoul" || req.End.TimeZone != "Asia/Seoul" {
		t.Fatalf("expected Asia/Seoul zone tags, got %+v %+v", req.Start, req.End)
	}
	if req.Recurrence != nil {
		t.Fatalf("expected no recurrence, got %v", req.Recurrence)
	}
}

func TestExtractPromptEmbedsTextAsSystemMessage(t *testing.T) {
	llm := &fakeLLM{reply: `{"date":{"start":"4월 1일"}}`}
	s := newTestExtraction(llm)

	text := `내일 "중요" 회의 4월 1일`
	if _, err := s.Extract(context.Background(), text); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(llm.messages) != 1 || llm.messages[0].Role != client.RoleSystem {
		t.Fatalf("expected a single system message, got %+v", llm.messages)
	}
	if !strings.Contains(llm.messages[0].Content, `The message is: "`+text+`"`) {
		t.Fatalf("expected chat text verbatim in prompt, got %q", llm.messages[0].Content)
	}
}

func TestExtractEndDateCollapsesToStart(t *testing.T) {
	cases := map[string]string{
		"sentinel": `{"eventTitle":"여행","date":{"start":"5월 3일","end":"끝 없음"},"time":{"startTime":"오전 9시","endTime":"오후 6시"}}`,
		"missing":  `{"eventTitle":"여행","date":{"start":"5월 3일"},"time":{"startTime":"오전 9시","endTime":"오후 6시"}}`,
		"empty":    `{"eventTitle":"여행","date":{"start":"5월 3일","end":""},"time":{"startTime":"오전 9시","endTime":"오후 6시"}}`,
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestExtraction(&fakeLLM{reply: reply})
			req, err := s.Extract(context.Background(), "5월 3일 여행")
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if req.Start.DateTime != "2025-05-03T09:00:00+09:00" || req.End.DateTime != "2025-05-03T18:00:00+09:00" {
				t.Fatalf("unexpected range %s - %s", req.Start.DateTime, req.End.DateTime)
			}
		})
	}
}

func TestExtractMultiDayRange(t *testing.T) {
	s := newTestExtraction(&fakeLLM{reply: `{"eventTitle":"출장","date":{"start":"7월 1일","end":"7월 3일"},"time":{"startTime":"오전 12시","endTime":"오후 12시"}}`})
	req, err := s.Extract(context.Background(), "출장")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if req.Start.DateTime != "2025-07-01T00:00:00+09:00" {
		t.Fatalf("unexpected start %q", req.Start.DateTime)
	}
	if req.End.DateTime != "2025-07-03T12:00:00+09:00" {
		t.Fatalf("unexpected end %q", req.End.DateTime)
	}
}

func TestExtractRecurrence(t *testing.T) {
	tests := []struct {
		recurrence string
		want       string
	}{
		{`"weekly"`, "FREQ=WEEKLY"},
		{`"monthly"`, "FREQ=MONTHLY"},
		{`"yearly"`, "FREQ=YEARLY"},
		{`"daily"`, ""},
		{`null`, ""},
		{`["weekly"]`, ""},
		{`true`, ""},
		{`1`, ""},
		{`{"freq":"weekly"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.recurrence, func(t *testing.T) {
			reply := `{"eventTitle":"스터디","date":{"start":"3월 4일"},"recurrence":` + tt.recurrence + `}`
			s := newTestExtraction(&fakeLLM{reply: reply})
			req, err := s.Extract(context.Background(), "스터디")
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if tt.want == "" {
				if len(req.Recurrence) != 0 {
					t.Fatalf("expected no recurrence, got %v", req.Recurrence)
				}
				return
			}
			if len(req.Recurrence) != 1 || !strings.HasPrefix(req.Recurrence[0], "RRULE:"+tt.want) {
				t.Fatalf("expected %q rule, got %v", tt.want, req.Recurrence)
			}
		})
	}
}

func TestExtractTitleOfAnyType(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{`"회의"`, "회의"},
		{`123`, "123"},
		{`1.5`, "1.5"},
		{`true`, "true"},
		{`null`, ""},
		{`["회의"]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			reply := `{"eventTitle":` + tt.title + `,"date":{"start":"5월 5일"}}`
			s := newTestExtraction(&fakeLLM{reply: reply})
			req, err := s.Extract(context.Background(), "5월 5일")
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if req.Summary != tt.want {
				t.Fatalf("expected summary %q, got %q", tt.want, req.Summary)
			}
		})
	}
}

func TestExtractToleratesCodeFenceAndProse(t *testing.T) {
	replies := []string{
		"```json\n{\"eventTitle\":\"회의\",\"date\":{\"start\":\"1월 2일\"}}\n```",
		"다음과 같습니다:\n{\"eventTitle\":\"회의\",\"date\":{\"start\":\"1월 2일\"}}\n감사합니다.",
	}
	for _, reply := range replies {
		s := newTestExtraction(&fakeLLM{reply: reply})
		req, err := s.Extract(context.Background(), "회의")
		if err != nil {
			t.Fatalf("Extract failed for %q: %v", reply, err)
		}
		if req.Summary != "회의" || req.Start.DateTime != "2025-01-02T00:00:00+09:00" {
			t.Fatalf("unexpected request %+v", req)
		}
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
		want error
	}{
		{"model call", &fakeLLM{err: errUpstream}, model.ErrModelCall},
		{"not json", &fakeLLM{reply: "죄송합니다, 이해하지 못했어요."}, model.ErrJSONParse},
		{"wrong types", &fakeLLM{reply: `{"date":"12월 25일"}`}, model.ErrJSONParse},
		{"missing date", &fakeLLM{reply: `{"eventTitle":"회의"}`}, model.ErrMissingData},
		{"bad date format", &fakeLLM{reply: `{"date":{"start":"다음 주 화요일"}}`}, model.ErrFormat},
		{"missing start", &fakeLLM{reply: `{"date":{"end":"3월 1일"}}`}, model.ErrFormat},
		{"month out of range", &fakeLLM{reply: `{"date":{"start":"13월 1일"}}`}, model.ErrFormat},
		{"numeric start", &fakeLLM{reply: `{"date":{"start":1225}}`}, model.ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestExtraction(tt.llm)
			req, err := s.Extract(context.Background(), "아무 말")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if req != nil {
				t.Fatalf("expected no request on error, got %+v", req)
			}
		})
	}
}

func TestExtractModelTimeout(t *testing.T) {
	llm := &fakeLLM{block: true}
	s := NewExtractionService(llm, 10*time.Millisecond, kst, zap.NewNop())

	start := time.Now()
	_, err := s.Extract(context.Background(), "회의")
	if !errors.Is(err, model.ErrModelCall) {
		t.Fatalf("expected ErrModelCall, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded to be wrapped, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout did not bound the call")
	}
	if llm.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", llm.calls)
	}
}

func TestExtractZoneTagMatchesOffset(t *testing.T) {
	ny := time.FixedZone("America/New_York", -5*3600)
	s := NewExtractionService(&fakeLLM{reply: `{"date":{"start":"1월 5일"},"time":{"startTime":"오전 9시"}}`}, time.Second, ny, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, ny) }

	req, err := s.Extract(context.Background(), "1월 5일 오전 9시")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if req.Start.DateTime != "2026-01-05T09:00:00-05:00" || req.Start.TimeZone != "America/New_York" {
		t.Fatalf("zone tag and offset disagree: %+v", req.Start)
	}
	if req.End.TimeZone != "America/New_York" {
		t.Fatalf("unexpected end tag %+v", req.End)
	}
}

func TestExtractDefaultsToSeoul(t *testing.T) {
	s := NewExtractionService(&fakeLLM{reply: `{"date":{"start":"1월 5일"}}`}, time.Second, nil, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	req, err := s.Extract(context.Background(), "1월 5일")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if req.Start.DateTime != "2026-01-05T00:00:00+09:00" || req.Start.TimeZone != model.SeoulTimeZone {
		t.Fatalf("unexpected default zone %+v", req.Start)
	}
}

func TestExtractUsesClockYear(t *testing.T) {
	s := newTestExtraction(&fakeLLM{reply: `{"date":{"start":"1월 5일"}}`})
	s.now = func() time.Time { return time.Date(2026, 12, 30, 9, 0, 0, 0, kst) }

	req, err := s.Extract(context.Background(), "1월 5일")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	// 연도는 넘기지 않는다.
	if !strings.HasPrefix(req.Start.DateTime, "2026-01-05") {
		t.Fatalf("expected current year, got %q", req.Start.DateTime)
	}
}
