package cdp

import (
	"context"

	"cdpmock/pkg/browser"
	"cdpmock/pkg/traffic"

	"github.com/mafredri/cdp/protocol/fetch"
	"github.com/mafredri/cdp/protocol/network"
	"github.com/panjf2000/ants/v2"
)

// consumer 一次 Register 对应的事件消费循环
type consumer struct {
	a      *Adapter
	cb     browser.Callback
	stream fetch.RequestPausedClient
	pool   *ants.Pool
	cancel context.CancelFunc
	done   chan struct{}
}

// run 持续接收拦截事件并按并发限制分发处理
func (c *consumer) run() {
	defer close(c.done)
	for {
		ev, err := c.stream.Recv()
		if err != nil {
			c.a.log.Debug("拦截事件流结束", "error", err.Error())
			return
		}
		c.dispatch(ev)
	}
}

// dispatch 协程池已满时在消费协程上直接处理，避免请求被放行到外网
func (c *consumer) dispatch(ev *fetch.RequestPausedReply) {
	if err := c.pool.Submit(func() { c.handle(ev) }); err != nil {
		c.a.log.Warn("协程池已满，同步处理", "requestID", string(ev.RequestID))
		c.handle(ev)
	}
}

// handle 将暂停的请求交给回调
func (c *consumer) handle(ev *fetch.RequestPausedReply) {
	ctx, cancel := context.WithTimeout(c.a.ctx, c.a.opts.ProcessTimeout)
	defer cancel()

	client := c.a.client
	req := browser.NewRequest(ev.Request.URL, ev.Request.Method,
		func(body string) error {
			return client.Fetch.FulfillRequest(ctx, ToFulfillArgs(ev.RequestID, traffic.Mock(body)))
		},
		func() error {
			return client.Fetch.ContinueRequest(ctx, &fetch.ContinueRequestArgs{RequestID: ev.RequestID})
		},
	)
	c.cb(req)
	if req.Handled() {
		return
	}
	c.a.log.Warn("回调未处理请求，终止请求", "url", ev.Request.URL, "method", ev.Request.Method)
	err := client.Fetch.FailRequest(ctx, &fetch.FailRequestArgs{RequestID: ev.RequestID, ErrorReason: network.ErrorReasonBlockedByClient})
	if err != nil {
		c.a.log.Err(err, "终止请求失败", "url", ev.Request.URL)
	}
}

// stop 关闭事件流并等待消费循环退出，已提交的任务继续执行
func (c *consumer) stop() {
	c.cancel()
	_ = c.stream.Close()
	<-c.done
	c.pool.Release()
}
