package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // 컨테이너에 zoneinfo 가 없어도 Asia/Seoul 을 읽는다

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 설정
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Calendar CalendarConfig `yaml:"calendar"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig 서버 설정
type ServerConfig struct {
	Port             int      `yaml:"port"`
	Name             string   `yaml:"name"`
	CORSAllowOrigins []string `yaml:"corsAllowOrigins"`
}

// RedisConfig Redis 설정 (Host 가 비어 있으면 대화 기록을 남기지 않는다)
type RedisConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	TranscriptTTLHours int    `yaml:"transcriptTtlHours"`
}

// Enabled Redis 사용 여부
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// LLMConfig 언어 모델 설정
type LLMConfig struct {
	Provider       string `yaml:"provider"` // openai, gemini
	APIKey         string `yaml:"apiKey"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// CalendarConfig 캘린더 제공자 설정
type CalendarConfig struct {
	Provider   string       `yaml:"provider"` // google, caldav
	CalendarID string       `yaml:"calendarId"`
	TimeZone   string       `yaml:"timeZone"`
	Google     GoogleConfig `yaml:"google"`
	CalDAV     CalDAVConfig `yaml:"caldav"`
}

// defaultTimeZone 일정 시각의 기본 타임존
const defaultTimeZone = "Asia/Seoul"

// Location 벽시계 시각을 해석할 위치. 비어 있으면 Asia/Seoul.
func (c CalendarConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.TimeZone)
	if name == "" {
		name = defaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// GoogleConfig 구글 캘린더 OAuth 설정
type GoogleConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURI  string `yaml:"redirectUri"`
	RefreshToken string `yaml:"refreshToken"`
}

// CalDAVConfig CalDAV 서버 설정
type CalDAVConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	CalendarName string `yaml:"calendarName"`
}

// LogConfig 로그 설정
type LogConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// DefaultModel 제공자별 기본 모델
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.0-flash"
	default:
		return "gpt-3.5-turbo"
	}
}

// Default 기본 설정
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:             3001,
			Name:             "chatcal",
			CORSAllowOrigins: []string{"http://localhost:3000"},
		},
		Redis: RedisConfig{
			Port:               6379,
			TranscriptTTLHours: 24,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			BaseURL:        "https://api.openai.com/v1",
			TimeoutSeconds: 30,
		},
		Calendar: CalendarConfig{
			Provider:   "google",
			CalendarID: "primary",
			TimeZone:   defaultTimeZone,
			Google: GoogleConfig{
				RedirectURI: "http://localhost",
			},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}

// LoadConfig 설정 파일을 읽고 .env 및 환경 변수로 덮어쓴다.
// path 가 비어 있거나 파일이 없으면 기본값에서 시작한다.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
		}
	}

	_ = godotenv.Load(".env")
	applyEnv(&cfg)

	return &cfg, nil
}

// applyEnv 환경 변수 우선 적용
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.CORSAllowOrigins = getEnvCSV("CORS_ALLOW_ORIGINS", cfg.Server.CORSAllowOrigins)

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnvInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	switch cfg.LLM.Provider {
	case "gemini":
		cfg.LLM.APIKey = getEnv("GEMINI_API_KEY", cfg.LLM.APIKey)
	default:
		cfg.LLM.APIKey = getEnv("OPENAI_API_KEY", cfg.LLM.APIKey)
		cfg.LLM.BaseURL = getEnv("OPENAI_BASE_URL", cfg.LLM.BaseURL)
	}
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}
	cfg.LLM.TimeoutSeconds = getEnvInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Calendar.Provider = getEnv("CALENDAR_PROVIDER", cfg.Calendar.Provider)
	cfg.Calendar.CalendarID = getEnv("CALENDAR_ID", cfg.Calendar.CalendarID)
	cfg.Calendar.TimeZone = getEnv("CALENDAR_TIME_ZONE", cfg.Calendar.TimeZone)
	cfg.Calendar.Google.ClientID = getEnv("GOOGLE_CLIENT_ID", cfg.Calendar.Google.ClientID)
	cfg.Calendar.Google.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.Calendar.Google.ClientSecret)
	cfg.Calendar.Google.RedirectURI = getEnv("GOOGLE_REDIRECT_URI", cfg.Calendar.Google.RedirectURI)
	cfg.Calendar.Google.RefreshToken = getEnv("GOOGLE_REFRESH_TOKEN", cfg.Calendar.Google.RefreshToken)
	cfg.Calendar.CalDAV.Endpoint = getEnv("CALDAV_ENDPOINT", cfg.Calendar.CalDAV.Endpoint)
	cfg.Calendar.CalDAV.Username = getEnv("CALDAV_USERNAME", cfg.Calendar.CalDAV.Username)
	cfg.Calendar.CalDAV.Password = getEnv("CALDAV_PASSWORD", cfg.Calendar.CalDAV.Password)
	cfg.Calendar.CalDAV.CalendarName = getEnv("CALDAV_CALENDAR_NAME", cfg.Calendar.CalDAV.CalendarName)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
}

// Validate 제공자별 필수 값 확인
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return errors.New("OPENAI_API_KEY is required")
		}
	case "gemini":
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return errors.New("GEMINI_API_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}

	switch c.Calendar.Provider {
	case "google":
		g := c.Calendar.Google
		if g.ClientID == "" || g.ClientSecret == "" {
			return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
		}
		if g.RefreshToken == "" {
			return errors.New("GOOGLE_REFRESH_TOKEN is required; run chatcal-auth first")
		}
	case "caldav":
		d := c.Calendar.CalDAV
		if d.Endpoint == "" || d.CalendarName == "" {
			return errors.New("CALDAV_ENDPOINT and CALDAV_CALENDAR_NAME are required")
		}
	default:
		return fmt.Errorf("unsupported calendar provider: %q", c.Calendar.Provider)
	}

	if _, err := c.Calendar.Location(); err != nil {
		return err
	}

	if c.Server.Port <= 0 {
		return errors.New("server port must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
