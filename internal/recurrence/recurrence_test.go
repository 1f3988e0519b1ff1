package recurrence

import (
	"strings"
	"testing"

	"github.com/teambition/rrule-go"
)

func TestRulesHorizons(t *testing.T) {
	tests := []struct {
		kind  string
		freq  rrule.Frequency
		count int
	}{
		{kind: "weekly", freq: rrule.WEEKLY, count: 104},
		{kind: "monthly", freq: rrule.MONTHLY, count: 24},
		{kind: "yearly", freq: rrule.YEARLY, count: 10},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			rules := Rules(tt.kind)
			if len(rules) != 1 {
				t.Fatalf("expected one rule, got %v", rules)
			}
			if !strings.HasPrefix(rules[0], "RRULE:") {
				t.Fatalf("expected RRULE prefix, got %q", rules[0])
			}

			opt, err := rrule.StrToROption(strings.TrimPrefix(rules[0], "RRULE:"))
			if err != nil {
				t.Fatalf("generated rule does not parse: %v", err)
			}
			if opt.Freq != tt.freq {
				t.Fatalf("expected freq %v, got %v", tt.freq, opt.Freq)
			}
			if opt.Count != tt.count {
				t.Fatalf("expected count %d, got %d", tt.count, opt.Count)
			}
			if opt.Interval != 1 {
				t.Fatalf("expected interval 1, got %d", opt.Interval)
			}
		})
	}
}

func TestRulesUnknownKind(t *testing.T) {
	for _, kind := range []string{"", "daily", "Weekly", "weekly/monthly/yearly", "매주"} {
		if rules := Rules(kind); rules != nil {
			t.Fatalf("Rules(%q) = %v, want nil", kind, rules)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]string{"RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=104", "EXDATE:20260101T000000Z"}); err != nil {
		t.Fatalf("expected valid recurrence, got %v", err)
	}
	if err := Validate(nil); err != nil {
		t.Fatalf("expected nil recurrence to be valid, got %v", err)
	}
	if err := Validate([]string{"RRULE:FREQ=SOMETIMES"}); err == nil {
		t.Fatalf("expected invalid frequency to fail")
	}
}
