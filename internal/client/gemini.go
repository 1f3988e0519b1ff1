package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chatcal/chatcal-go/internal/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient Google Gemini 클라이언트
type GeminiClient struct {
	models  geminiModels
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiClient Gemini 클라이언트 생성
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini 클라이언트 생성 실패: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = config.DefaultModel("gemini")
	}

	return &GeminiClient{
		models:  client.Models,
		model:   model,
		timeout: timeoutFrom(cfg.TimeoutSeconds),
		logger:  logger,
	}, nil
}

// Chat system 메시지는 SystemInstruction 으로, 나머지는 대화 내용으로 보낸다.
// 시스템 메시지만 있는 경우 그 내용을 사용자 턴으로 보낸다.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages are required")
	}

	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case RoleAssistant:
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: msg.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: msg.Content}}})
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if len(systemParts) > 0 {
		system := strings.Join(systemParts, "\n\n")
		if len(contents) == 0 {
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: system}}})
		} else {
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini 요청 실패: %w", err)
	}

	text := visibleText(resp)
	c.logger.Debug("gemini 응답 수신", zap.String("model", c.model), zap.Int("length", len(text)))
	return text, nil
}

func visibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

var _ LLMClient = (*GeminiClient)(nil)
