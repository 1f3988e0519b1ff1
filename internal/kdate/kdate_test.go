package kdate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chatcal/chatcal-go/internal/model"
)

func TestParseDateAllMonthsAndDays(t *testing.T) {
	for month := 1; month <= 12; month++ {
		for day := 1; day <= 31; day++ {
			input := fmt.Sprintf("%d월 %d일", month, day)
			got, err := Parse(input, "")
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", input, err)
			}
			if got.Month != month || got.Day != day {
				t.Fatalf("Parse(%q) = %+v, want month=%d day=%d", input, got, month, day)
			}
		}
	}
}

func TestParseDateInsideSentence(t *testing.T) {
	got, err := Parse("다음 주 3월 7일 금요일", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Month != 3 || got.Day != 7 {
		t.Fatalf("unexpected parts: %+v", got)
	}
}

func TestParsePMHours(t *testing.T) {
	for hour := 1; hour <= 11; hour++ {
		got, err := Parse("1월 1일", fmt.Sprintf("오후 %d시", hour))
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Hour != hour+12 {
			t.Fatalf("오후 %d시: expected hour %d, got %d", hour, hour+12, got.Hour)
		}
	}

	got, _ := Parse("1월 1일", "오후 12시")
	if got.Hour != 12 {
		t.Fatalf("오후 12시: expected hour 12, got %d", got.Hour)
	}
}

func TestParseAMHours(t *testing.T) {
	for hour := 1; hour <= 11; hour++ {
		got, err := Parse("1월 1일", fmt.Sprintf("오전 %d시", hour))
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Hour != hour {
			t.Fatalf("오전 %d시: expected hour %d, got %d", hour, hour, got.Hour)
		}
	}

	got, _ := Parse("1월 1일", "오전 12시")
	if got.Hour != 0 {
		t.Fatalf("오전 12시: expected hour 0, got %d", got.Hour)
	}
}

func TestParseTimeFallsBackToMidnight(t *testing.T) {
	tests := []struct {
		name      string
		timeInput string
	}{
		{name: "empty", timeInput: ""},
		{name: "no period", timeInput: "15시"},
		{name: "end of day default", timeInput: "23시59분"},
		{name: "midnight default", timeInput: "00시"},
		{name: "english", timeInput: "3pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse("5월 5일", tt.timeInput)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Hour != 0 {
				t.Fatalf("expected hour 0, got %d", got.Hour)
			}
		})
	}
}

func TestParseRejectsMissingDatePattern(t *testing.T) {
	for _, input := range []string{"", "내일", "12/25", "12월25일", "월 일"} {
		if _, err := Parse(input, "오후 3시"); !errors.Is(err, model.ErrFormat) {
			t.Fatalf("Parse(%q): expected ErrFormat, got %v", input, err)
		}
	}
}
