package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cdpmock/internal/logger"
	"cdpmock/pkg/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Record 一次拦截决策
type Record struct {
	ID        uint   `gorm:"primaryKey"`
	Session   string `gorm:"index;size:64"`
	Type      string `gorm:"index;size:16"`
	Rule      string `gorm:"size:64"`
	Method    string `gorm:"size:16"`
	URL       string
	Error     string
	CreatedAt time.Time
}

// TableName 表名
func (Record) TableName() string { return "cdpmock_decisions" }

// Journal 基于 SQLite 的决策日志，用于事后排查未模拟的外部请求
type Journal struct {
	db  *gorm.DB
	log logger.Logger
}

// Open 打开或创建数据库并迁移表结构
func Open(dsn string, l logger.Logger) (*Journal, error) {
	if l == nil {
		l = logger.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger(l)})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db, log: l}, nil
}

// Save 写入一条事件
func (j *Journal) Save(ctx context.Context, evt model.Event) error {
	rec := Record{
		Session:   string(evt.Session),
		Type:      evt.Type,
		Method:    evt.Method,
		URL:       evt.URL,
		CreatedAt: time.UnixMilli(evt.Timestamp),
	}
	if evt.Timestamp == 0 {
		rec.CreatedAt = time.Now()
	}
	if evt.Rule != nil {
		rec.Rule = string(*evt.Rule)
	}
	if evt.Error != nil {
		rec.Error = evt.Error.Error()
	}
	return j.db.WithContext(ctx).Create(&rec).Error
}

// Consume 持续写入事件直到通道关闭或 ctx 取消
func (j *Journal) Consume(ctx context.Context, events <-chan model.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := j.Save(ctx, evt); err != nil && !errors.Is(err, context.Canceled) {
				j.log.Err(err, "写入决策日志失败", "url", evt.URL)
			}
		}
	}
}

// Blocked 按时间顺序返回被阻止的请求，session 为空时返回全部
func (j *Journal) Blocked(ctx context.Context, session model.SessionID) ([]Record, error) {
	return j.query(ctx, model.EventBlocked, session)
}

// List 按类型查询
func (j *Journal) List(ctx context.Context, typ string) ([]Record, error) {
	return j.query(ctx, typ, "")
}

func (j *Journal) query(ctx context.Context, typ string, session model.SessionID) ([]Record, error) {
	q := j.db.WithContext(ctx).Order("id")
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	if session != "" {
		q = q.Where("session = ?", string(session))
	}
	var out []Record
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Close 关闭数据库连接
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
