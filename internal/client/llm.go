package client

import (
	"context"
	"fmt"
	"time"

	"github.com/chatcal/chatcal-go/internal/config"
	"go.uber.org/zap"
)

// 메시지 역할
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const defaultTimeout = 30 * time.Second

// Message 대화 메시지
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// LLMClient 언어 모델 채팅 완성 호출
type LLMClient interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// New 설정에 맞는 언어 모델 클라이언트 생성
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg, logger), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}

func timeoutFrom(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(seconds) * time.Second
}
