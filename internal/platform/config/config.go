// Package config はアプリケーション設定を環境変数（および .env）から読み込みます。
package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// devJWTSecret is only used outside production when JWT_SECRET is unset.
const devJWTSecret = "dev-only-insecure-secret"

// ErrMissingJWTSecret is returned by Load in production when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET must be set in production")

// Config holds every setting the binary reads.
type Config struct {
	AppEnv     string
	HTTPPort   string
	LogLevel   string
	LogFormat  string
	CORSOrigin string

	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	Kakao KakaoConfig
	Naver NaverConfig

	Crawler CrawlerConfig

	UpstreamTimeout time.Duration
	CacheTTL        time.Duration
	TrackedIndices  []string
}

type DBConfig struct {
	Driver        string // "postgres" | "sqlite"
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	SQLitePath    string
	RunMigrations bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type KakaoConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
}

type NaverConfig struct {
	BaseURL           string
	PollingBaseURL    string
	RequestsPerMinute int
}

type CrawlerConfig struct {
	Binary     string
	MaxRuntime time.Duration
	Schedule   string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "fiflow")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "./fiflow.db")
	v.SetDefault("RUN_MIGRATIONS", false)

	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("CACHE_TTL", 5*time.Minute)

	v.SetDefault("JWT_TTL", 7*24*time.Hour)

	v.SetDefault("KAKAO_AUTH_BASE_URL", "https://kauth.kakao.com")
	v.SetDefault("KAKAO_API_BASE_URL", "https://kapi.kakao.com")

	v.SetDefault("NAVER_BASE_URL", "https://finance.naver.com")
	v.SetDefault("NAVER_POLLING_BASE_URL", "https://polling.finance.naver.com")
	v.SetDefault("NAVER_REQUESTS_PER_MINUTE", 60)

	v.SetDefault("UPSTREAM_TIMEOUT", 10*time.Second)
	v.SetDefault("CRAWLER_MAX_RUNTIME", 10*time.Minute)
	v.SetDefault("TRACKED_INDICES", "KOSPI,KOSDAQ,KPI200")
}

// Load は .env（存在する場合）と環境変数から設定を読み込みます。
// 環境変数が .env より優先されます。
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:     v.GetString("APP_ENV"),
		HTTPPort:   v.GetString("HTTP_PORT"),
		LogLevel:   v.GetString("LOG_LEVEL"),
		LogFormat:  v.GetString("LOG_FORMAT"),
		CORSOrigin: v.GetString("CORS_ORIGIN"),
		DB: DBConfig{
			Driver:        strings.ToLower(v.GetString("DB_DRIVER")),
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			Name:          v.GetString("DB_NAME"),
			SSLMode:       v.GetString("DB_SSLMODE"),
			SQLitePath:    v.GetString("SQLITE_PATH"),
			RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Kakao: KakaoConfig{
			ClientID:     v.GetString("KAKAO_CLIENT_ID"),
			ClientSecret: v.GetString("KAKAO_CLIENT_SECRET"),
			RedirectURI:  v.GetString("KAKAO_REDIRECT_URI"),
			AuthBaseURL:  strings.TrimRight(v.GetString("KAKAO_AUTH_BASE_URL"), "/"),
			APIBaseURL:   strings.TrimRight(v.GetString("KAKAO_API_BASE_URL"), "/"),
		},
		Naver: NaverConfig{
			BaseURL:           strings.TrimRight(v.GetString("NAVER_BASE_URL"), "/"),
			PollingBaseURL:    strings.TrimRight(v.GetString("NAVER_POLLING_BASE_URL"), "/"),
			RequestsPerMinute: v.GetInt("NAVER_REQUESTS_PER_MINUTE"),
		},
		Crawler: CrawlerConfig{
			Binary:     v.GetString("CRAWLER_BINARY"),
			MaxRuntime: v.GetDuration("CRAWLER_MAX_RUNTIME"),
			Schedule:   v.GetString("CRAWL_SCHEDULE"),
		},
		UpstreamTimeout: v.GetDuration("UPSTREAM_TIMEOUT"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		TrackedIndices:  SplitList(v.GetString("TRACKED_INDICES")),
	}

	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
		cfg.JWT.Secret = devJWTSecret
	}

	return cfg, nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
