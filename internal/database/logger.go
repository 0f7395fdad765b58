package database

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"log/slog"
	"time"

	"github.com/cohortclub/berger/internal/util/slogx"
	"github.com/mattn/go-colorable"
	"gorm.io/gorm/logger"
)

// dbLogger routes gorm diagnostics into slog. Only failed and slow queries
// reach the log; routine query tracing stays off outside debug mode.
type dbLogger struct {
	log  *slog.Logger
	slow time.Duration
}

func newLogger(log *slog.Logger, o Options) logger.Interface {
	if o.Debug {
		// Debug mode traces every query through gorm's own colorful logger.
		return logger.New(
			stdlog.New(colorable.NewColorableStdout(), "", stdlog.LstdFlags),
			logger.Config{LogLevel: logger.Info, Colorful: true},
		)
	}
	return &dbLogger{log: log, slow: o.SlowThreshold}
}

func (l *dbLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l *dbLogger) Info(_ context.Context, msg string, args ...any) {
	l.log.Info("db", slog.String("msg", fmt.Sprintf(msg, args...)))
}

func (l *dbLogger) Warn(_ context.Context, msg string, args ...any) {
	l.log.Warn("db", slog.String("msg", fmt.Sprintf(msg, args...)))
}

func (l *dbLogger) Error(_ context.Context, msg string, args ...any) {
	l.log.Error("db", slog.String("msg", fmt.Sprintf(msg, args...)))
}

func (l *dbLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	if err != nil && !errors.Is(err, logger.ErrRecordNotFound) {
		sql, rows := fc()
		l.log.Error("query failed",
			slogx.Err(err),
			slog.Duration("elapsed", elapsed),
			slog.Int64("rows", rows),
			slog.String("sql", sql))
		return
	}
	if l.slow > 0 && elapsed >= l.slow {
		sql, rows := fc()
		l.log.Warn("slow query",
			slog.Duration("elapsed", elapsed),
			slog.Int64("rows", rows),
			slog.String("sql", sql))
	}
}
