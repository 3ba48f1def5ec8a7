package intercept

import (
	"context"
	"time"

	"cdpmock/internal/cdp"
	"cdpmock/pkg/browser"
)

// Chrome 通过 DevTools Fetch 域拦截的页面驱动，用完需 Close
type Chrome = cdp.Adapter

// ChromeOptions 连接 DevTools 的配置，零值字段使用默认值
type ChromeOptions struct {
	DevToolsURL    string        // 默认 http://127.0.0.1:9222
	Target         string        // 目标 ID，空表示第一个 page
	Workers        int           // 并发处理拦截事件的协程数，默认 16
	ProcessTimeout time.Duration // 单个请求应答超时，默认 3s
	AttachAttempts uint          // 等待目标出现的尝试次数，默认 1
}

// AttachChrome 附加到已开启远程调试的浏览器页面
func AttachChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	return cdp.Attach(ctx, cdp.Options{
		DevToolsURL:    opts.DevToolsURL,
		Target:         opts.Target,
		Workers:        opts.Workers,
		ProcessTimeout: opts.ProcessTimeout,
		AttachAttempts: opts.AttachAttempts,
	})
}

// NewRequest 供自定义 Adapter 构造暂停的请求，fulfill 与 passthrough 至多调用其一
func NewRequest(url, method string, fulfill func(body string) error, passthrough func() error) *Request {
	return browser.NewRequest(url, method, fulfill, passthrough)
}

var (
	ErrNoTarget       = cdp.ErrNoTarget
	ErrSlotBusy       = browser.ErrSlotBusy
	ErrNotRegistered  = browser.ErrNotRegistered
	ErrAlreadyHandled = browser.ErrAlreadyHandled
)
