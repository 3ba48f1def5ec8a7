package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	ilog "cdpmock/internal/logger"

	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// gormLogger 将 GORM 日志转发到 logger.Logger，记录不存在不视为错误
type gormLogger struct {
	log   ilog.Logger
	level glogger.LogLevel
}

func newGormLogger(l ilog.Logger) glogger.Interface {
	return &gormLogger{log: l.With("component", "journal"), level: glogger.Warn}
}

func (g *gormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= glogger.Info {
		g.log.Debug(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= glogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= glogger.Error {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= glogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= glogger.Error:
		sql, rows := fc()
		g.log.Err(err, "写入决策日志失败", "sql", sql, "rows", rows)
	case elapsed > slowQuery && g.level >= glogger.Warn:
		sql, _ := fc()
		g.log.Warn("决策日志写入缓慢", "sql", sql, "elapsed", elapsed.String())
	case g.level >= glogger.Info:
		sql, rows := fc()
		g.log.Debug("sql", "sql", sql, "rows", rows, "elapsed", elapsed.String())
	}
}
