// Package store 대화 기록 저장소
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chatcal/chatcal-go/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const transcriptKeyPrefix = "chatcal:transcript:"

type listWriter interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// TranscriptStore 날짜별 Redis 리스트에 대화 기록을 쌓는다. 코어 로직은 읽지 않는다.
type TranscriptStore struct {
	client listWriter
	ttl    time.Duration
	loc    *time.Location
	logger *zap.Logger
}

// NewTranscriptStore 대화 기록 저장소 생성
func NewTranscriptStore(client *redis.Client, ttl time.Duration, loc *time.Location, logger *zap.Logger) *TranscriptStore {
	return newTranscriptStore(client, ttl, loc, logger)
}

func newTranscriptStore(client listWriter, ttl time.Duration, loc *time.Location, logger *zap.Logger) *TranscriptStore {
	if loc == nil {
		loc = time.UTC
	}
	return &TranscriptStore{client: client, ttl: ttl, loc: loc, logger: logger}
}

// Append 기록 한 건 추가
func (s *TranscriptStore) Append(ctx context.Context, entry model.TranscriptEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal transcript entry: %w", err)
	}

	key := s.key(entry.Timestamp)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire %s: %w", key, err)
		}
	}

	s.logger.Debug("대화 기록 저장", zap.String("key", key), zap.String("type", entry.Type))
	return nil
}

func (s *TranscriptStore) key(ts time.Time) string {
	return transcriptKeyPrefix + ts.In(s.loc).Format("20060102")
}
