package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatcal/chatcal-go/internal/calendar"
	"github.com/chatcal/chatcal-go/internal/client"
	"github.com/chatcal/chatcal-go/internal/config"
	"github.com/chatcal/chatcal-go/internal/handler"
	"github.com/chatcal/chatcal-go/internal/middleware"
	"github.com/chatcal/chatcal-go/internal/service"
	"github.com/chatcal/chatcal-go/internal/store"
	"github.com/chatcal/chatcal-go/pkg/logger"
	"github.com/chatcal/chatcal-go/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/chatcal.yaml", "설정 파일 경로")
	flag.Parse()

	// 설정 로드
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("설정 로드 실패: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("설정 검증 실패: %v", err)
	}

	// 로거 초기화
	zapLogger, err := logger.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("로거 초기화 실패: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("chatcal 서버 시작 중...",
		zap.String("llmProvider", cfg.LLM.Provider),
		zap.String("calendarProvider", cfg.Calendar.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Calendar.Location()
	if err != nil {
		zapLogger.Fatal("타임존 로드 실패", zap.Error(err))
	}

	// 외부 협력자는 한 번만 만들어 주입한다
	llm, err := client.New(ctx, cfg.LLM, zapLogger)
	if err != nil {
		zapLogger.Fatal("언어 모델 클라이언트 생성 실패", zap.Error(err))
	}
	provider, err := calendar.New(ctx, cfg.Calendar, zapLogger)
	if err != nil {
		zapLogger.Fatal("캘린더 제공자 생성 실패", zap.Error(err))
	}

	var transcript service.TranscriptRecorder
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			zapLogger.Warn("Redis 연결 실패, 대화 기록을 남기지 않습니다", zap.Error(err))
		} else {
			defer redisClient.Close()
			ttl := time.Duration(cfg.Redis.TranscriptTTLHours) * time.Hour
			transcript = store.NewTranscriptStore(redisClient, ttl, loc, zapLogger)
			zapLogger.Info("Redis 연결 성공", zap.String("host", cfg.Redis.Host))
		}
	}

	// 서비스 초기화
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	sessionService := service.NewSessionService(zapLogger)
	go sessionService.RunHeartbeatChecker(ctx)

	extractionService := service.NewExtractionService(llm, timeout, loc, zapLogger)
	chatService := service.NewChatService(extractionService, llm, provider, sessionService, transcript, timeout, zapLogger)
	eventService := service.NewEventService(provider, sessionService, zapLogger)

	// 처리기 초기화
	chatHandler := handler.NewChatHandler(chatService, zapLogger)
	eventHandler := handler.NewEventHandler(eventService, zapLogger)
	apiHandler := handler.NewAPIHandler(cfg.Server.Name, sessionService)
	wsHandler := handler.NewWebSocketHandler(sessionService, chatService, cfg.Server.CORSAllowOrigins, zapLogger)

	// 라우터
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(zapLogger), middleware.CORS(cfg.Server.CORSAllowOrigins))

	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api")
	api.POST("/chat", chatHandler.Chat)
	api.GET("/events", eventHandler.ListEvents)
	api.GET("/events.ics", eventHandler.ExportICS)
	api.POST("/add-event", eventHandler.AddEvent)
	api.DELETE("/delete-event/:eventId", eventHandler.DeleteEvent)
	api.GET("/health", apiHandler.Health)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("chatcal 서버 시작 성공", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("서버 시작 실패", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("종료 신호 수신, 서버 종료 중...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("서버 종료 실패", zap.Error(err))
	}
}
