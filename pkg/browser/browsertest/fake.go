// Package browsertest 提供内存中的浏览器适配器，用于测试拦截逻辑
package browsertest

import (
	"context"
	"sync"

	"cdpmock/pkg/browser"
)

// Outcome 单个请求的处理结果
type Outcome struct {
	URL       string
	Method    string
	Fulfilled bool
	Body      string
	Handled   bool
}

// Fake 模拟驱动，Send 同步调用已注册的回调
type Fake struct {
	// Unsupported 为 true 时模拟不支持拦截的驱动
	Unsupported bool
	// RegisterErr/DeregisterErr 模拟驱动层失败
	RegisterErr   error
	DeregisterErr error

	mu            sync.Mutex
	cb            browser.Callback
	registrations int
	deregisters   int
	outcomes      []Outcome
}

// New 创建支持拦截的 Fake
func New() *Fake { return &Fake{} }

func (f *Fake) SupportsInterception() bool { return !f.Unsupported }

func (f *Fake) Register(_ context.Context, cb browser.Callback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	if f.cb != nil {
		return browser.ErrSlotBusy
	}
	f.cb = cb
	f.registrations++
	return nil
}

func (f *Fake) Deregister(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeregisterErr != nil {
		return f.DeregisterErr
	}
	if f.cb == nil {
		return browser.ErrNotRegistered
	}
	f.cb = nil
	f.deregisters++
	return nil
}

// Send 模拟一次浏览器请求；无回调时视为直接放行
func (f *Fake) Send(url, method string) Outcome {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()

	out := Outcome{URL: url, Method: method}
	if cb == nil {
		return out
	}
	var mu sync.Mutex
	req := browser.NewRequest(url, method,
		func(body string) error {
			mu.Lock()
			out.Fulfilled, out.Body = true, body
			mu.Unlock()
			return nil
		},
		func() error { return nil },
	)
	cb(req)
	mu.Lock()
	out.Handled = req.Handled()
	res := out
	mu.Unlock()

	f.mu.Lock()
	f.outcomes = append(f.outcomes, res)
	f.mu.Unlock()
	return res
}

// Attached 当前是否有回调
func (f *Fake) Attached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb != nil
}

// Registrations 累计注册次数
func (f *Fake) Registrations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registrations
}

// Deregistrations 累计注销次数
func (f *Fake) Deregistrations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deregisters
}

// Outcomes 已处理请求的记录
func (f *Fake) Outcomes() []Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Outcome, len(f.outcomes))
	copy(out, f.outcomes)
	return out
}
