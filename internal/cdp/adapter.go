// Package cdp 基于 Chrome DevTools Protocol Fetch 域实现浏览器拦截适配
package cdp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cdpmock/internal/logger"
	"cdpmock/pkg/browser"

	"github.com/avast/retry-go/v4"
	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	"github.com/mafredri/cdp/protocol/fetch"
	"github.com/mafredri/cdp/rpcc"
	"github.com/panjf2000/ants/v2"
)

var (
	ErrNoTarget    = errors.New("no page target")
	ErrNotAttached = errors.New("not attached")
)

// Options 适配器配置
type Options struct {
	DevToolsURL    string
	Target         string // 目标 ID，空表示第一个 page
	Workers        int
	ProcessTimeout time.Duration
	AttachAttempts uint
	Logger         logger.Logger
}

func (o *Options) applyDefaults() {
	if o.DevToolsURL == "" {
		o.DevToolsURL = "http://127.0.0.1:9222"
	}
	if o.Workers <= 0 {
		o.Workers = 16
	}
	if o.ProcessTimeout <= 0 {
		o.ProcessTimeout = 3 * time.Second
	}
	if o.AttachAttempts == 0 {
		o.AttachAttempts = 1
	}
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
}

// Adapter 单个页面目标上的 Fetch 拦截
type Adapter struct {
	opts   Options
	log    logger.Logger
	conn   *rpcc.Conn
	client *cdp.Client
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	consumer *consumer
}

var _ browser.Adapter = (*Adapter)(nil)

// Attach 连接 DevTools 并附加到页面目标
func Attach(ctx context.Context, opts Options) (*Adapter, error) {
	opts.applyDefaults()
	dt := devtool.New(opts.DevToolsURL)
	target, err := retry.DoWithData(
		func() (*devtool.Target, error) { return findTarget(ctx, dt, opts.Target) },
		retry.Context(ctx),
		retry.Attempts(opts.AttachAttempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			opts.Logger.Debug("等待 DevTools 目标", "attempt", n+1, "error", err.Error())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("find target: %w", err)
	}
	conn, err := rpcc.DialContext(ctx, target.WebSocketDebuggerURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target.WebSocketDebuggerURL, err)
	}
	a := New(cdp.NewClient(conn), opts)
	a.conn = conn
	a.log.Info("已附加目标", "target", target.ID, "url", target.URL)
	return a, nil
}

// New 使用已有的 CDP 客户端创建适配器
func New(client *cdp.Client, opts Options) *Adapter {
	opts.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Adapter{
		opts:   opts,
		log:    opts.Logger,
		client: client,
		ctx:    ctx,
		cancel: cancel,
	}
}

// findTarget 按 ID 查找目标，未指定时返回第一个页面
func findTarget(ctx context.Context, dt *devtool.DevTools, id string) (*devtool.Target, error) {
	targets, err := dt.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if id != "" {
			if t.ID == id {
				return t, nil
			}
			continue
		}
		if t.Type == devtool.Page {
			return t, nil
		}
	}
	return nil, ErrNoTarget
}

// Client 底层 CDP 客户端
func (a *Adapter) Client() *cdp.Client { return a.client }

// SupportsInterception 已连接的页面目标均支持 Fetch 拦截
func (a *Adapter) SupportsInterception() bool { return a.client != nil }

// Register 启用 Fetch 域并开始消费 requestPaused 事件
func (a *Adapter) Register(ctx context.Context, cb browser.Callback) error {
	if a.client == nil {
		return ErrNotAttached
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.consumer != nil {
		return browser.ErrSlotBusy
	}

	streamCtx, cancel := context.WithCancel(a.ctx)
	rp, err := a.client.Fetch.RequestPaused(streamCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe requestPaused: %w", err)
	}
	p := "*"
	patterns := []fetch.RequestPattern{{URLPattern: &p, RequestStage: fetch.RequestStageRequest}}
	if err := a.client.Fetch.Enable(ctx, &fetch.EnableArgs{Patterns: patterns}); err != nil {
		rp.Close()
		cancel()
		return fmt.Errorf("enable fetch: %w", err)
	}
	pool, err := ants.NewPool(a.opts.Workers, ants.WithNonblocking(true))
	if err != nil {
		rp.Close()
		cancel()
		return fmt.Errorf("create worker pool: %w", err)
	}

	c := &consumer{
		a:      a,
		cb:     cb,
		stream: rp,
		pool:   pool,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	a.consumer = c
	go c.run()
	a.log.Debug("已启用 Fetch 拦截", "workers", a.opts.Workers)
	return nil
}

// Deregister 禁用 Fetch 域并停止事件消费
func (a *Adapter) Deregister(ctx context.Context) error {
	a.mu.Lock()
	c := a.consumer
	a.consumer = nil
	a.mu.Unlock()
	if c == nil {
		return browser.ErrNotRegistered
	}

	err := a.client.Fetch.Disable(ctx)
	c.stop()
	if err != nil {
		return fmt.Errorf("disable fetch: %w", err)
	}
	a.log.Debug("已禁用 Fetch 拦截")
	return nil
}

// Close 注销回调并关闭连接
func (a *Adapter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.ProcessTimeout)
	defer cancel()
	if err := a.Deregister(ctx); err != nil && !errors.Is(err, browser.ErrNotRegistered) {
		a.log.Err(err, "关闭时注销拦截失败")
	}
	a.cancel()
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
