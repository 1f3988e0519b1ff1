// Package kdate parses Korean month/day and AM/PM hour expressions
// ("12월 25일", "오후 3시") into zone-naive calendar parts.
package kdate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/chatcal/chatcal-go/internal/model"
)

const (
	periodAM = "오전"
	periodPM = "오후"
)

var (
	datePattern = regexp.MustCompile(`(\d{1,2})월 (\d{1,2})일`)
	timePattern = regexp.MustCompile(`(오전|오후) (\d{1,2})시`)
)

// Parse 날짜/시간 문자열을 월, 일, 시로 변환한다.
// 날짜 패턴이 없으면 model.ErrFormat 을 반환하고, 시간은 없거나 형식이 맞지 않으면 0시로 처리한다.
// 분 단위는 해석하지 않는다.
func Parse(dateString, timeString string) (model.DateTimeParts, error) {
	dateMatch := datePattern.FindStringSubmatch(dateString)
	if dateMatch == nil {
		return model.DateTimeParts{}, fmt.Errorf("%w: %q", model.ErrFormat, dateString)
	}

	month, _ := strconv.Atoi(dateMatch[1])
	day, _ := strconv.Atoi(dateMatch[2])

	return model.DateTimeParts{
		Month: month,
		Day:   day,
		Hour:  parseHour(timeString),
	}, nil
}

// parseHour 12시간제를 24시간제로 변환
func parseHour(timeString string) int {
	if timeString == "" {
		return 0
	}

	timeMatch := timePattern.FindStringSubmatch(timeString)
	if timeMatch == nil {
		return 0
	}

	period := timeMatch[1]
	hour, _ := strconv.Atoi(timeMatch[2])

	switch {
	case period == periodPM && hour != 12:
		hour += 12
	case period == periodAM && hour == 12:
		hour = 0
	}
	return hour
}
