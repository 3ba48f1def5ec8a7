package rulespec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONBody 按 path/value 对构造 JSON 响应体，path 使用 sjson 语法
func JSONBody(kv ...any) (string, error) {
	if len(kv)%2 != 0 {
		return "", fmt.Errorf("json body: odd number of arguments")
	}
	body := "{}"
	for i := 0; i < len(kv); i += 2 {
		path, ok := kv[i].(string)
		if !ok {
			return "", fmt.Errorf("json body: path at %d is %T, want string", i, kv[i])
		}
		var err error
		if body, err = sjson.Set(body, path, kv[i+1]); err != nil {
			return "", fmt.Errorf("json body: set %q: %w", path, err)
		}
	}
	return body, nil
}

// JSONFromMap 以键的字典序写入，保证输出稳定
//
// 键按字面量写入，嵌套结构由值中的 map 表达。
func JSONFromMap(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, len(m)*2)
	for _, k := range keys {
		kv = append(kv, literalPath(k), m[k])
	}
	return JSONBody(kv...)
}

// literalPath 转义 sjson 路径语法，使 key 作为单个对象键
func literalPath(key string) string {
	p := gjson.Escape(key)
	if strings.HasPrefix(p, ":") {
		p = `\` + p
	}
	return p
}

// ContentType 根据响应体推断 Content-Type
func ContentType(body string) string {
	if body != "" && gjson.Valid(body) {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}
