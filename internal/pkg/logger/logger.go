package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

func init() {
	log = NewLogger(os.Getenv("APP_ENV"))
}

// NewLogger は環境に応じたロガーを生成する
// production 以外は開発用の人間向けフォーマットになる
func NewLogger(env string) *zap.Logger {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build(zap.Fields(zap.String("service", "show-booking")))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Init は環境に応じたロガーを生成してグローバルに設定する
func Init(env string) *zap.Logger {
	l := NewLogger(env)
	Set(l)
	return l
}

// ParseLevel はログレベル文字列を解釈する。空または不正な値なら false
func ParseLevel(s string) (zapcore.Level, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return zapcore.InfoLevel, false
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel, false
	}
	return level, true
}

func Get() *zap.Logger {
	return log
}

func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	log.Fatal(msg, fields...)
}

func With(fields ...zap.Field) *zap.Logger {
	return log.With(fields...)
}

func Sync() error {
	return log.Sync()
}

// 予約フローで共通に使うフィールド
func AttemptID(id string) zap.Field  { return zap.String("attempt_id", id) }
func CustomerID(id string) zap.Field { return zap.String("customer_id", id) }
func ShowID(id string) zap.Field     { return zap.String("show_id", id) }
func SeatIDs(ids []string) zap.Field { return zap.Strings("seat_ids", ids) }
func Stage(name string) zap.Field    { return zap.String("stage", name) }
func Amount(amount int) zap.Field    { return zap.Int("amount", amount) }
func ChargeID(id string) zap.Field   { return zap.String("charge_id", id) }
