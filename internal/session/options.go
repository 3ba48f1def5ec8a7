package session

import (
	"time"

	"cdpmock/internal/logger"
	"cdpmock/pkg/model"
	"cdpmock/pkg/rulespec"
)

const (
	DefaultServerHost = "127.0.0.1"
	DefaultGrace      = 200 * time.Millisecond
)

type options struct {
	defaults   []rulespec.Rule
	allow      []rulespec.AllowEntry
	serverHost string
	grace      time.Duration
	log        logger.Logger
	events     chan<- model.Event
}

// Option 会话配置项
type Option func(*options)

func defaultOptions() options {
	return options{
		serverHost: DefaultServerHost,
		grace:      DefaultGrace,
		log:        logger.NewNop(),
	}
}

// WithDefaults 每次启动时预置的规则，优先于运行中追加的规则
func WithDefaults(rules ...rulespec.Rule) Option {
	return func(o *options) { o.defaults = append(o.defaults, rules...) }
}

// WithAllow 追加放行项，排在测试服务器放行项之后
func WithAllow(entries ...rulespec.AllowEntry) Option {
	return func(o *options) { o.allow = append(o.allow, entries...) }
}

// WithServerHost 设置测试服务器主机，空串表示不默认放行
func WithServerHost(host string) Option {
	return func(o *options) { o.serverHost = host }
}

// WithGrace 设置停止后的等待时间
func WithGrace(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.grace = d
		}
	}
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithEvents 设置决策事件通道，通道满时丢弃事件
func WithEvents(ch chan<- model.Event) Option {
	return func(o *options) { o.events = ch }
}

func (o *options) allowList() []rulespec.AllowEntry {
	out := make([]rulespec.AllowEntry, 0, len(o.allow)+1)
	if o.serverHost != "" {
		out = append(out, rulespec.Allow(rulespec.Host(o.serverHost)))
	}
	return append(out, o.allow...)
}
