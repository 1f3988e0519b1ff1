package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeList struct {
	pushed  map[string][]string
	expires map[string]time.Duration
	pushErr error
}

func newFakeList() *fakeList {
	return &fakeList{pushed: map[string][]string{}, expires: map[string]time.Duration{}}
}

func (f *fakeList) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.pushErr != nil {
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		f.pushed[key] = append(f.pushed[key], string(v.([]byte)))
	}
	return redis.NewIntResult(int64(len(f.pushed[key])), nil)
}

func (f *fakeList) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func TestTranscriptAppendUsesSeoulDayKey(t *testing.T) {
	fake := newFakeList()
	kst := time.FixedZone("KST", 9*3600)
	s := newTranscriptStore(fake, 24*time.Hour, kst, zap.NewNop())

	// 2025-04-09 16:30 UTC 는 서울 기준 4월 10일
	ts := time.Date(2025, 4, 9, 16, 30, 0, 0, time.UTC)
	err := s.Append(context.Background(), model.TranscriptEntry{
		Type:      model.MessageTypeEvent,
		Content:   "4월 10일 오후 3시 회의",
		Reply:     "일정이 추가되었습니다: 회의",
		EventID:   "evt-1",
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	key := "chatcal:transcript:20250410"
	if len(fake.pushed[key]) != 1 {
		t.Fatalf("expected one entry under %s, got %v", key, fake.pushed)
	}
	if fake.expires[key] != 24*time.Hour {
		t.Fatalf("expected ttl to be set, got %v", fake.expires[key])
	}

	var got model.TranscriptEntry
	if err := json.Unmarshal([]byte(fake.pushed[key][0]), &got); err != nil {
		t.Fatalf("stored entry is not JSON: %v", err)
	}
	if got.EventID != "evt-1" || got.Content != "4월 10일 오후 3시 회의" {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestTranscriptAppendWithoutTTL(t *testing.T) {
	fake := newFakeList()
	s := newTranscriptStore(fake, 0, nil, zap.NewNop())

	if err := s.Append(context.Background(), model.TranscriptEntry{Type: "chat", Timestamp: time.Now()}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if len(fake.expires) != 0 {
		t.Fatalf("expected no expire call, got %v", fake.expires)
	}
}

func TestTranscriptAppendPropagatesRedisError(t *testing.T) {
	fake := newFakeList()
	fake.pushErr = errors.New("connection refused")
	s := newTranscriptStore(fake, time.Hour, nil, zap.NewNop())

	if err := s.Append(context.Background(), model.TranscriptEntry{Type: "chat", Timestamp: time.Now()}); err == nil {
		t.Fatalf("expected error")
	}
}
