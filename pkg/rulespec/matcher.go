package rulespec

import (
	"regexp"
	"strings"
)

// MatchKind URL 匹配方式
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchLiteral
	MatchExact
	MatchPattern
)

// Matcher 规范化后的 URL 匹配器，注册时构造一次
type Matcher struct {
	kind    MatchKind
	literal string
	re      *regexp.Regexp
}

// Literal 子串匹配，完整 URL 中包含 s 即命中
func Literal(s string) Matcher {
	if s == "" {
		return Matcher{}
	}
	return Matcher{kind: MatchLiteral, literal: s}
}

// Exact 完整 URL 全等匹配
func Exact(s string) Matcher {
	if s == "" {
		return Matcher{}
	}
	return Matcher{kind: MatchExact, literal: s}
}

// Pattern 正则匹配
func Pattern(re *regexp.Regexp) Matcher {
	if re == nil {
		return Matcher{}
	}
	return Matcher{kind: MatchPattern, re: re}
}

// CompilePattern 编译正则表达式并构造匹配器
func CompilePattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Matcher{}, err
	}
	return Pattern(re), nil
}

// MustPattern 同 CompilePattern，编译失败时 panic
func MustPattern(expr string) Matcher {
	return Pattern(regexp.MustCompile(expr))
}

// Host 匹配主机为 host 的 http 请求，host 之后必须是端口、路径、查询或结尾
func Host(host string) Matcher {
	if host == "" {
		return Matcher{}
	}
	return Pattern(regexp.MustCompile("^http://" + regexp.QuoteMeta(host) + `(?:[:/?#]|$)`))
}

// Kind 返回匹配方式
func (m Matcher) Kind() MatchKind { return m.kind }

// Match 对完整 URL 字符串做纯字面匹配，不解析 URL
func (m Matcher) Match(url string) bool {
	switch m.kind {
	case MatchLiteral:
		return strings.Contains(url, m.literal)
	case MatchExact:
		return url == m.literal
	case MatchPattern:
		return m.re.MatchString(url)
	default:
		return false
	}
}

func (m Matcher) String() string {
	switch m.kind {
	case MatchLiteral:
		return m.literal
	case MatchExact:
		return "=" + m.literal
	case MatchPattern:
		return "/" + m.re.String() + "/"
	default:
		return "<none>"
	}
}
