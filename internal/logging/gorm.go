package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter routes GORM's logger through a Logger. SQL traces go to debug;
// slow queries and query errors go to warn.
type GormAdapter struct {
	log           Logger
	slowThreshold time.Duration
}

// NewGormAdapter returns an adapter. A zero slowThreshold disables slow-query warnings.
func NewGormAdapter(log Logger, slowThreshold time.Duration) *GormAdapter {
	if log == nil {
		log = Discard()
	}
	return &GormAdapter{log: log, slowThreshold: slowThreshold}
}

// LogMode is a no-op; levels are owned by the Logger.
func (a *GormAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface { return a }

func (a *GormAdapter) Info(_ context.Context, msg string, data ...any) {
	a.log.Debug(fmt.Sprintf(msg, data...))
}

func (a *GormAdapter) Warn(_ context.Context, msg string, data ...any) {
	a.log.Warn(fmt.Sprintf(msg, data...))
}

func (a *GormAdapter) Error(_ context.Context, msg string, data ...any) {
	a.log.Error(fmt.Sprintf(msg, data...))
}

func (a *GormAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.log.Warn("query error",
			String("sql", sql), Int64("rows", rows), Duration("elapsed", elapsed), Error(err))
	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		a.log.Warn("slow query",
			String("sql", sql), Int64("rows", rows), Duration("elapsed", elapsed))
	default:
		a.log.Debug("query", String("sql", sql), Int64("rows", rows), Duration("elapsed", elapsed))
	}
}
