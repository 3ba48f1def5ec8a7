// Package intercept 为浏览器端到端测试提供网络拦截：
// 声明的请求返回模拟响应，测试服务器的请求直接放行，其余外部请求返回空响应并记录日志。
//
//	func TestPlanets(t *testing.T) {
//		ic := intercept.New(t, adapter)
//		ic.Intercept("https://swapi.dev/api/planets/1/", "my mocked response")
//		// 访问页面、点击按钮、断言
//	}
package intercept

import (
	"context"
	"testing"

	"cdpmock/internal/logger"
	"cdpmock/internal/session"
	"cdpmock/pkg/browser"
	"cdpmock/pkg/model"
	"cdpmock/pkg/rulespec"
)

type (
	Adapter  = browser.Adapter
	Callback = browser.Callback
	Request  = browser.Request
	Option   = session.Option
)

var (
	WithDefaults   = session.WithDefaults
	WithAllow      = session.WithAllow
	WithServerHost = session.WithServerHost
	WithGrace      = session.WithGrace
	WithLogger     = session.WithLogger
	WithEvents     = session.WithEvents
)

// registry 记录所有通过本包创建的会话，用于 CheckLeaks
var registry = session.NewManager(nil)

// Interceptor 单个测试的拦截句柄
type Interceptor struct {
	tb    testing.TB
	s     *session.Session
	lease *session.Lease
}

// New 启动拦截并在测试结束时停止
//
// 驱动不支持拦截时返回的 Interceptor 不做任何事。注册回调失败会终止测试。
func New(tb testing.TB, adapter Adapter, opts ...Option) *Interceptor {
	tb.Helper()
	ic := start(tb, adapter, opts...)
	tb.Cleanup(func() {
		if err := ic.Stop(); err != nil {
			tb.Errorf("stop interception: %v", err)
		}
		registry.Delete(ic.s.ID())
	})
	return ic
}

func start(tb testing.TB, adapter Adapter, opts ...Option) *Interceptor {
	tb.Helper()
	if adapter == nil {
		adapter = browser.Unsupported{}
	}
	opts = append([]Option{session.WithLogger(logger.NewTest(tb))}, opts...)
	s := registry.Create(adapter, opts...)
	lease, err := s.Start(context.Background())
	if err != nil {
		registry.Delete(s.ID())
		tb.Fatalf("start interception: %v", err)
	}
	return &Interceptor{tb: tb, s: s, lease: lease}
}

// RuleOption 规则配置项
type RuleOption func(*ruleOptions)

type ruleOptions struct {
	method rulespec.Method
}

// WithMethod 限定 HTTP 方法，大小写不敏感，缺省匹配任意方法
func WithMethod(method string) RuleOption {
	return func(o *ruleOptions) { o.method = rulespec.ParseMethod(method) }
}

// Intercept 对 URL 中包含 url 的请求返回 response
func (ic *Interceptor) Intercept(url, response string, opts ...RuleOption) {
	ic.InterceptMatch(rulespec.Literal(url), response, opts...)
}

// InterceptMatch 使用任意匹配器注册规则，较早注册的规则优先
func (ic *Interceptor) InterceptMatch(m rulespec.Matcher, response string, opts ...RuleOption) {
	o := ruleOptions{method: rulespec.AnyMethod}
	for _, opt := range opts {
		opt(&o)
	}
	ic.s.Intercept(m, response, o.method)
}

// InterceptJSON 以 sjson path/value 对构造 JSON 响应体
func (ic *Interceptor) InterceptJSON(url string, kv ...any) {
	ic.tb.Helper()
	body, err := rulespec.JSONBody(kv...)
	if err != nil {
		ic.tb.Fatalf("intercept %s: %v", url, err)
	}
	ic.Intercept(url, body)
}

// Stop 提前停止拦截，可重复调用
func (ic *Interceptor) Stop() error {
	return ic.lease.Release(context.Background())
}

// Active 是否正在拦截
func (ic *Interceptor) Active() bool { return ic.s.Active() }

// Stats 本次测试的匹配统计
func (ic *Interceptor) Stats() model.EngineStats { return ic.s.Stats() }

// Rules 当前规则
func (ic *Interceptor) Rules() []rulespec.Rule { return ic.s.Rules() }

// CheckLeaks 报告仍未释放的拦截会话
func CheckLeaks(tb testing.TB) []model.SessionID {
	tb.Helper()
	ids := registry.Leaked()
	for _, id := range ids {
		tb.Logf("interception lease not released: session %s", id)
	}
	return ids
}
