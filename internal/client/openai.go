package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/chatcal/chatcal-go/internal/config"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient OpenAI 채팅 완성 클라이언트
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient OpenAI 클라이언트 생성
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	httpClient := &http.Client{Timeout: timeoutFrom(cfg.TimeoutSeconds)}
	return newOpenAIClientWithHTTPClient(cfg, httpClient, logger)
}

func newOpenAIClientWithHTTPClient(cfg config.LLMConfig, httpClient *http.Client, logger *zap.Logger) *OpenAIClient {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = config.DefaultModel("openai")
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIClient{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Chat 채팅 완성 호출. 첫 번째 선택지의 본문을 돌려준다.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages are required")
	}

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleUser:
			params = append(params, openai.UserMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			return "", fmt.Errorf("unsupported role: %s", msg.Role)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: params,
	})
	if err != nil {
		return "", fmt.Errorf("openai 요청 실패: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai 응답에 선택지가 없습니다")
	}

	c.logger.Debug("openai 응답 수신",
		zap.String("model", resp.Model),
		zap.Int64("totalTokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

var _ LLMClient = (*OpenAIClient)(nil)
