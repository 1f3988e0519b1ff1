// Package calendar 일정을 저장하는 외부 캘린더 제공자 클라이언트
package calendar

import (
	"context"
	"fmt"

	"github.com/chatcal/chatcal-go/internal/config"
	"github.com/chatcal/chatcal-go/internal/model"
	"go.uber.org/zap"
)

// Provider 캘린더 제공자
type Provider interface {
	InsertEvent(ctx context.Context, req *model.CalendarEventRequest) (*model.ProviderEventRecord, error)
	ListUpcoming(ctx context.Context, max int) ([]*model.ProviderEventRecord, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// New 설정된 제공자 생성. main 에서 한 번 만들어 주입한다.
func New(ctx context.Context, cfg config.CalendarConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case "google", "":
		return NewGoogleProvider(ctx, cfg, logger)
	case "caldav":
		return NewCalDAVProvider(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported calendar provider: %q", cfg.Provider)
	}
}

func providerError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrProvider, op, err)
}
