package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chatcal/chatcal-go/internal/client"
	"github.com/chatcal/chatcal-go/internal/model"
)

type fakeLLM struct {
	reply string
	err   error
	// block 가 true 이면 ctx 가 끝날 때까지 기다린다.
	block bool

	calls    int
	messages []client.Message
}

func (f *fakeLLM) Chat(ctx context.Context, messages []client.Message) (string, error) {
	f.calls++
	f.messages = messages
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

type fakeProvider struct {
	mu       sync.Mutex
	inserted []*model.CalendarEventRequest
	deleted  []string
	upcoming []*model.ProviderEventRecord
	err      error
	maxSeen  int
}

func (f *fakeProvider) InsertEvent(ctx context.Context, req *model.CalendarEventRequest) (*model.ProviderEventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, req)
	return &model.ProviderEventRecord{
		ID:         fmt.Sprintf("evt-%d", len(f.inserted)),
		Summary:    req.Summary,
		Start:      req.Start,
		End:        req.End,
		Recurrence: req.Recurrence,
		Status:     "confirmed",
	}, nil
}

func (f *fakeProvider) ListUpcoming(ctx context.Context, max int) ([]*model.ProviderEventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxSeen = max
	if f.err != nil {
		return nil, f.err
	}
	return f.upcoming, nil
}

func (f *fakeProvider) DeleteEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

type change struct {
	action  string
	eventID string
}

type fakeNotifier struct {
	changes []change
}

func (f *fakeNotifier) NotifyCalendarChanged(action, eventID string) {
	f.changes = append(f.changes, change{action: action, eventID: eventID})
}

type fakeTranscript struct {
	entries []model.TranscriptEntry
	err     error
}

func (f *fakeTranscript) Append(ctx context.Context, entry model.TranscriptEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

var errUpstream = errors.New("upstream unavailable")
