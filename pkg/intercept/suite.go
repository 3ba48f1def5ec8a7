package intercept

import (
	"cdpmock/pkg/browser"
	"cdpmock/pkg/rulespec"

	"github.com/stretchr/testify/suite"
)

// Policy 测试类级别的默认拦截策略
type Policy interface {
	// DefaultInterceptions 每个测试开始时预置的规则
	DefaultInterceptions() []rulespec.Rule
	// AllowedRequests 测试服务器之外需要放行的请求
	AllowedRequests() []rulespec.AllowEntry
}

// Suite 在每个测试前后启动、停止拦截的 testify 套件
//
// 嵌入 Suite 的套件若重写 SetupTest/TearDownTest，需要调用 Suite 的同名方法。
type Suite struct {
	suite.Suite

	Adapter browser.Adapter
	Policy  Policy
	Options []Option

	ic *Interceptor
}

// SetupTest 启动拦截
func (s *Suite) SetupTest() {
	opts := append([]Option(nil), s.Options...)
	if s.Policy != nil {
		opts = append(opts, WithDefaults(s.Policy.DefaultInterceptions()...), WithAllow(s.Policy.AllowedRequests()...))
	}
	s.ic = start(s.T(), s.Adapter, opts...)
}

// TearDownTest 停止拦截
func (s *Suite) TearDownTest() {
	if s.ic == nil {
		return
	}
	s.Require().NoError(s.ic.Stop())
	registry.Delete(s.ic.s.ID())
	s.ic = nil
}

// Interceptor 当前测试的拦截句柄
func (s *Suite) Interceptor() *Interceptor { return s.ic }

// Intercept 见 Interceptor.Intercept
func (s *Suite) Intercept(url, response string, opts ...RuleOption) {
	s.ic.Intercept(url, response, opts...)
}
