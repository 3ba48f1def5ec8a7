package rulespec

import (
	"strings"

	"cdpmock/pkg/model"

	"github.com/google/uuid"
)

// Method 大写 HTTP 方法或通配 AnyMethod
type Method string

const (
	AnyMethod     Method = "ANY"
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodConnect Method = "CONNECT"
	MethodTrace   Method = "TRACE"
)

// ParseMethod 规范化方法名，空串视为 AnyMethod
func ParseMethod(s string) Method {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return AnyMethod
	}
	return Method(s)
}

// Matches 判断请求方法是否命中
func (m Method) Matches(method string) bool {
	if m == AnyMethod || m == "" {
		return true
	}
	return string(m) == strings.ToUpper(method)
}

// Rule 单条模拟规则
type Rule struct {
	ID       model.RuleID
	URL      Matcher
	Method   Method
	Response string
}

// NewRule 构造规则并分配 ID
func NewRule(url Matcher, method Method, response string) Rule {
	if method == "" {
		method = AnyMethod
	}
	return Rule{
		ID:       model.RuleID(uuid.NewString()),
		URL:      url,
		Method:   ParseMethod(string(method)),
		Response: response,
	}
}

// Matches 判断规则是否命中请求
func (r Rule) Matches(url, method string) bool {
	return r.URL.Match(url) && r.Method.Matches(method)
}

// AllowEntry 直接放行的请求
type AllowEntry struct {
	URL    Matcher
	Method Method
}

// Allow 构造放行项，method 缺省为 AnyMethod
func Allow(url Matcher, method ...Method) AllowEntry {
	m := AnyMethod
	if len(method) > 0 {
		m = ParseMethod(string(method[0]))
	}
	return AllowEntry{URL: url, Method: m}
}

// Matches 判断放行项是否命中请求
func (a AllowEntry) Matches(url, method string) bool {
	return a.URL.Match(url) && a.Method.Matches(method)
}

// DecisionKind 解析结果类型
type DecisionKind int

const (
	Blocked DecisionKind = iota
	Mocked
	Allowed
)

func (k DecisionKind) String() string {
	switch k {
	case Mocked:
		return "mock"
	case Allowed:
		return "allow"
	default:
		return "block"
	}
}

// Decision 一次请求的解析结果
type Decision struct {
	Kind DecisionKind
	Body string
	Rule *model.RuleID
}
