package recurrence

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

const rulePrefix = "RRULE:"

// Kind 반복 주기 키워드
type Kind string

const (
	Weekly  Kind = "weekly"
	Monthly Kind = "monthly"
	Yearly  Kind = "yearly"
)

// horizons 주기별 고정 반복 횟수 (주간·월간 약 2년, 연간 10년)
var horizons = map[Kind]struct {
	freq  rrule.Frequency
	count int
}{
	Weekly:  {freq: rrule.WEEKLY, count: 104},
	Monthly: {freq: rrule.MONTHLY, count: 24},
	Yearly:  {freq: rrule.YEARLY, count: 10},
}

// Rules 반복 키워드를 RRULE 목록으로 변환한다. 알 수 없는 키워드는 nil.
func Rules(kind string) []string {
	h, ok := horizons[Kind(kind)]
	if !ok {
		return nil
	}

	opt := rrule.ROption{
		Freq:     h.freq,
		Interval: 1,
		Count:    h.count,
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return nil
	}
	return []string{rulePrefix + opt.RRuleString()}
}

// Validate 외부에서 받은 반복 규칙 줄들을 검사한다.
// RRULE 외의 줄(EXDATE, RDATE 등)은 통과시킨다.
func Validate(lines []string) error {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(trimmed), rulePrefix) {
			continue
		}
		if _, err := rrule.StrToROption(trimmed[len(rulePrefix):]); err != nil {
			return fmt.Errorf("invalid recurrence %q: %w", line, err)
		}
	}
	return nil
}
