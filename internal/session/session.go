package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cdpmock/internal/logger"
	"cdpmock/internal/rules"
	"cdpmock/pkg/browser"
	"cdpmock/pkg/model"
	"cdpmock/pkg/rulespec"

	"github.com/google/uuid"
)

// Session 管理一个浏览器句柄上唯一的拦截回调
type Session struct {
	id      model.SessionID
	adapter browser.Adapter
	opts    options
	log     logger.Logger

	mu     sync.Mutex
	engine *rules.Engine
	lease  *Lease
}

// Lease 启动拦截后持有的回调槽位，必须 Release
type Lease struct {
	s *Session
}

// New 创建空闲会话
func New(adapter browser.Adapter, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	id := model.SessionID(uuid.NewString())
	return &Session{
		id:      id,
		adapter: adapter,
		opts:    o,
		log:     o.log.With("session", string(id)),
	}
}

// ID 会话 ID
func (s *Session) ID() model.SessionID { return s.id }

// Active 是否已挂载回调
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lease != nil
}

// Start 构建新的规则集并注册回调
//
// 驱动不支持拦截时返回 nil Lease，不视为错误；重复启动返回当前 Lease。
func (s *Session) Start(ctx context.Context) (*Lease, error) {
	if !s.adapter.SupportsInterception() {
		s.log.Debug("驱动不支持网络拦截，跳过")
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease != nil {
		return s.lease, nil
	}

	engine := rules.New(s.opts.defaults, s.opts.allowList())
	if err := s.adapter.Register(ctx, s.callback(engine)); err != nil {
		return nil, fmt.Errorf("register interceptor: %w", err)
	}
	s.engine = engine
	s.lease = &Lease{s: s}
	s.log.Info("开始拦截", "defaults", len(s.opts.defaults))
	return s.lease, nil
}

// Stop 注销回调并等待在途请求结束；未启动时不做任何事
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	return s.stopLocked(ctx, s.lease)
}

// Release 释放槽位；对 nil 或已失效的 Lease 无操作
func (l *Lease) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	l.s.mu.Lock()
	return l.s.stopLocked(ctx, l)
}

// stopLocked 在持有 s.mu 时调用，返回前释放锁
func (s *Session) stopLocked(ctx context.Context, l *Lease) error {
	if l == nil || s.lease != l {
		s.mu.Unlock()
		return nil
	}
	if err := s.adapter.Deregister(ctx); err != nil {
		// 驱动已先行移除回调（例如页面关闭）时槽位已空，按停止成功处理；其余错误向上返回
		if !errors.Is(err, browser.ErrNotRegistered) {
			s.mu.Unlock()
			return fmt.Errorf("deregister interceptor: %w", err)
		}
		s.log.Warn("回调已被驱动移除", "error", err.Error())
	}
	s.lease = nil
	st := s.engine.Stats()
	s.mu.Unlock()

	s.log.Info("停止拦截", "total", st.Total, "mocked", st.Matched, "blocked", st.Blocked)
	if s.opts.grace > 0 {
		t := time.NewTimer(s.opts.grace)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	return nil
}

// Intercept 向当前规则集追加规则；会话未启动时忽略
func (s *Session) Intercept(url rulespec.Matcher, response string, method rulespec.Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease == nil {
		s.log.Debug("会话未启动，忽略规则", "url", url.String())
		return
	}
	s.engine.Add(rulespec.NewRule(url, method, response))
}

// Rules 当前规则快照
func (s *Session) Rules() []rulespec.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}
	return s.engine.Rules()
}

// Stats 最近一次启动以来的匹配统计
func (s *Session) Stats() model.EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return model.EngineStats{ByRule: map[model.RuleID]int64{}}
	}
	return s.engine.Stats()
}

// callback 绑定本次启动的规则集，回调内部不持有会话锁
func (s *Session) callback(engine *rules.Engine) browser.Callback {
	return func(r *browser.Request) {
		method := strings.ToUpper(r.Method)
		d := engine.Resolve(r.URL, method)

		var err error
		evt := model.Event{Session: s.id, Rule: d.Rule, URL: r.URL, Method: method}
		switch d.Kind {
		case rulespec.Mocked:
			evt.Type = model.EventMocked
			err = r.Fulfill(d.Body)
			s.log.Debug("返回模拟响应", "method", method, "url", r.URL, "rule", string(*d.Rule))
		case rulespec.Allowed:
			evt.Type = model.EventAllowed
			err = r.Passthrough()
		default:
			evt.Type = model.EventBlocked
			s.log.Warn(fmt.Sprintf("External request not intercepted: %s %s", method, r.URL), "method", method, "url", r.URL)
			err = r.Fulfill("")
		}
		if err != nil {
			s.log.Err(err, "处理拦截请求失败", "method", method, "url", r.URL, "decision", d.Kind.String())
			evt.Type, evt.Error = model.EventFailed, err
		}
		s.sendEvent(evt)
	}
}

// sendEvent 安全发送事件到通道，自动添加时间戳
func (s *Session) sendEvent(evt model.Event) {
	if s.opts.events == nil {
		return
	}
	evt.Timestamp = time.Now().UnixMilli()
	select {
	case s.opts.events <- evt:
	default:
	}
}
