// Package browser 定义拦截核心依赖的浏览器驱动能力
package browser

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	ErrSlotBusy       = errors.New("interception callback already registered")
	ErrNotRegistered  = errors.New("no interception callback registered")
	ErrAlreadyHandled = errors.New("request already handled")
)

// Adapter 浏览器驱动的请求拦截能力
//
// 每个浏览器句柄只有一个回调槽位，Register 在槽位被占用时返回 ErrSlotBusy。
type Adapter interface {
	SupportsInterception() bool
	Register(ctx context.Context, cb Callback) error
	Deregister(ctx context.Context) error
}

// Callback 每个被拦截的请求调用一次，可能并发执行
type Callback func(r *Request)

// Request 被暂停的请求，必须且只能调用一次 Fulfill 或 Passthrough
type Request struct {
	URL    string
	Method string

	fulfill     func(body string) error
	passthrough func() error
	handled     atomic.Bool
}

// NewRequest 由驱动适配层构造
func NewRequest(url, method string, fulfill func(body string) error, passthrough func() error) *Request {
	return &Request{URL: url, Method: method, fulfill: fulfill, passthrough: passthrough}
}

// Fulfill 以 body 作为响应体直接返回，不访问网络
func (r *Request) Fulfill(body string) error {
	if !r.handled.CompareAndSwap(false, true) {
		return ErrAlreadyHandled
	}
	return r.fulfill(body)
}

// Passthrough 原样放行
func (r *Request) Passthrough() error {
	if !r.handled.CompareAndSwap(false, true) {
		return ErrAlreadyHandled
	}
	return r.passthrough()
}

// Handled 是否已处理
func (r *Request) Handled() bool { return r.handled.Load() }

// Unsupported 不支持网络拦截的驱动
type Unsupported struct{}

func (Unsupported) SupportsInterception() bool { return false }

func (Unsupported) Register(context.Context, Callback) error { return errors.ErrUnsupported }

func (Unsupported) Deregister(context.Context) error { return errors.ErrUnsupported }
