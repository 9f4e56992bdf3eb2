package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log line and reported by the info endpoints.
const ServiceName = "travel-discovery-service"

// NewLogger builds the process logger from LOG_LEVEL (DEBUG, INFO, WARN, ERROR; default INFO)
// and LOG_FORMAT ("console" for local runs, JSON otherwise).
func NewLogger() (*zap.Logger, error) {
	return loggerConfig(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")).Build()
}

func loggerConfig(level, format string) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]interface{}{"service": ServiceName}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = parseLogLevel(level)
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Sampling = nil
	}
	return cfg
}

func parseLogLevel(s string) zap.AtomicLevel {
	var lvl zapcore.Level
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		lvl = zap.DebugLevel
	case "WARN", "WARNING":
		lvl = zap.WarnLevel
	case "ERROR":
		lvl = zap.ErrorLevel
	default:
		lvl = zap.InfoLevel
	}
	return zap.NewAtomicLevelAt(lvl)
}
