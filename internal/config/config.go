package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ストアの種類
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env      string
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Booking  BookingConfig
	RabbitMQ RabbitMQConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig は座席・チケットの保存先設定
type StoreConfig struct {
	Driver         string
	MigrationsPath string
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig は認証設定
// JWTSecret が空の場合は X-User-ID ヘッダーを信頼する（ローカル開発用）
type AuthConfig struct {
	JWTSecret string
}

// PaymentConfig は決済ゲートウェイ設定
// GatewayURL が空の場合は SimulatedLimit 以下の課金を承認する疑似ゲートウェイを使う
type PaymentConfig struct {
	GatewayURL     string
	APIKey         string
	Timeout        time.Duration
	SimulatedLimit int
}

// BookingConfig は座席押さえの設定
type BookingConfig struct {
	HoldTTL       time.Duration
	SweepInterval time.Duration
	SeatLockTTL   time.Duration
}

// RabbitMQConfig は照合キューの設定。URL が空なら照合イベントはログのみ
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// Load は環境変数から設定を読み込む
// カレントディレクトリに .env があれば先に読み込む（既存の環境変数は上書きしない）
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver:         getEnv("STORE_DRIVER", StoreDriverPostgres),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "show_booking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Payment: PaymentConfig{
			GatewayURL:     getEnv("PAYMENT_GATEWAY_URL", ""),
			APIKey:         getEnv("PAYMENT_GATEWAY_API_KEY", ""),
			Timeout:        getDurationEnv("PAYMENT_TIMEOUT", 10*time.Second),
			SimulatedLimit: getIntEnv("PAYMENT_SIMULATED_LIMIT", 1000000),
		},
		Booking: BookingConfig{
			HoldTTL:       getDurationEnv("RESERVATION_HOLD_TTL", 15*time.Minute),
			SweepInterval: getDurationEnv("RESERVATION_SWEEP_INTERVAL", time.Minute),
			SeatLockTTL:   getDurationEnv("SEAT_LOCK_TTL", 10*time.Second),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_RECONCILIATION_QUEUE", "booking.reconciliation"),
		},
	}

	// Railway 等の接続URL形式を優先する
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		if db, ok := parseDatabaseURL(raw); ok {
			cfg.Database = db
		}
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		if rc, ok := parseRedisURL(raw, cfg.Redis.DB); ok {
			cfg.Redis = rc
		}
	}

	return cfg
}

// IsProduction は本番環境かを返す
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func parseDatabaseURL(raw string) (DatabaseConfig, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return DatabaseConfig{}, false
	}
	password, _ := u.User.Password()
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "require"
	}
	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, true
}

func parseRedisURL(raw string, db int) (RedisConfig, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return RedisConfig{}, false
	}
	password, _ := u.User.Password()
	port := u.Port()
	if port == "" {
		port = "6379"
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(u.Path, "/")); err == nil {
		db = n
	}
	return RedisConfig{
		Host:     u.Hostname(),
		Port:     port,
		Password: password,
		DB:       db,
	}, true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
