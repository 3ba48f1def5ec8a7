// Package traffic 驱动无关的模拟响应模型
package traffic

import (
	"net/http"
	"net/textproto"
	"sort"

	"cdpmock/pkg/rulespec"
)

// Header 响应头，键统一为 MIME 规范形式
type Header map[string]string

func canonical(key string) string { return textproto.CanonicalMIMEHeaderKey(key) }

func (h Header) Get(key string) string { return h[canonical(key)] }

func (h Header) Set(key, value string) { h[canonical(key)] = value }

func (h Header) Del(key string) { delete(h, canonical(key)) }

// Keys 按字典序返回所有键，保证下发顺序稳定
func (h Header) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Response 模拟响应
type Response struct {
	Status  int
	Headers Header
	Body    []byte
}

// Mock 构造 200 模拟响应
//
// Content-Type 按响应体推断；页面通常跨域请求外部 API，因此总是允许任意来源读取。
func Mock(body string) *Response {
	r := &Response{
		Status: http.StatusOK,
		Headers: Header{
			"Content-Type":                rulespec.ContentType(body),
			"Access-Control-Allow-Origin": "*",
			"Cache-Control":               "no-store",
		},
	}
	if body != "" {
		r.Body = []byte(body)
	}
	return r
}
