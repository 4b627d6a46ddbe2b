// Package logger configures the process-wide zap logger and the request
// logging middleware.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CorrelationIDHeader carries the per-request correlation ID.
const CorrelationIDHeader = "X-Correlation-ID"

const correlationKey = "correlation_id"

var level = zap.NewAtomicLevel()

// Init builds a production logger at LOG_LEVEL (info by default) and installs
// it as the zap global.
func Init() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if err := SetLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return nil, err
	}
	cfg.Level = level

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// SetLevel changes the level of the logger built by Init. An empty value
// means info.
func SetLevel(raw string) error {
	lvl := zapcore.InfoLevel
	if raw = strings.TrimSpace(raw); raw != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
			return err
		}
	}
	level.SetLevel(lvl)
	return nil
}

// Middleware tags every request with a correlation ID, reusing one supplied
// by the caller, and logs the request once it completes.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationKey, id)
		c.Header(CorrelationIDHeader, id)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String(correlationKey, id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			zap.L().Error("request", fields...)
			return
		}
		zap.L().Info("request", fields...)
	}
}

// CorrelationID returns the ID assigned by Middleware, or "" outside it.
func CorrelationID(c *gin.Context) string {
	return c.GetString(correlationKey)
}
