package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter routes gorm's logging into a Logger. Statements executed with a
// context carrying a request id (see ContextWithRequestID) are logged with it.
type GormAdapter struct {
	logger        *Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormAdapter creates a gorm logger at the given application log level
func NewGormAdapter(logger *Logger, level string) *GormAdapter {
	return &GormAdapter{
		logger:        logger,
		logLevel:      mapToGormLevel(level),
		slowThreshold: 100 * time.Millisecond,
	}
}

// LogMode implements gormlogger.Interface
func (g *GormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	adapter := *g
	adapter.logLevel = level
	return &adapter
}

// Info implements gormlogger.Interface
func (g *GormAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Info {
		g.fields(nil).InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn implements gormlogger.Interface
func (g *GormAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Warn {
		g.fields(nil).WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Error implements gormlogger.Interface
func (g *GormAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Error {
		g.fields(nil).ErrorContext(ctx, fmt.Sprintf(msg, data...), nil)
	}
}

// Trace logs one executed statement
func (g *GormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := map[string]interface{}{
		"elapsed_ms": float64(elapsed.Nanoseconds()) / 1e6,
		"rows":       rows,
		"sql":        sql,
	}

	switch {
	// unknown ids are an expected outcome of lookups
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.logLevel >= gormlogger.Error:
		g.fields(fields).ErrorContext(ctx, "store query failed", err)
	case elapsed > g.slowThreshold && g.logLevel >= gormlogger.Warn:
		g.fields(fields).WarnContext(ctx, "slow store query")
	case g.logLevel >= gormlogger.Info:
		g.fields(fields).DebugContext(ctx, "store query")
	}
}

func (g *GormAdapter) fields(fields map[string]interface{}) *FieldLogger {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["component"] = "store"
	return g.logger.WithFields(fields)
}

// mapToGormLevel maps an application log level to a gorm log level
func mapToGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent", "off":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}
