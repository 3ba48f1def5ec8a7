package cdp

import (
	"cdpmock/pkg/traffic"

	"github.com/mafredri/cdp/protocol/fetch"
)

// ToFulfillArgs 转换为 Fetch.fulfillRequest 参数
func ToFulfillArgs(id fetch.RequestID, res *traffic.Response) *fetch.FulfillRequestArgs {
	return &fetch.FulfillRequestArgs{
		RequestID:       id,
		ResponseCode:    res.Status,
		ResponseHeaders: ToHeaderEntries(res.Headers),
		Body:            res.Body,
	}
}

// ToHeaderEntries 按键排序转换为 CDP Header 条目
func ToHeaderEntries(h traffic.Header) []fetch.HeaderEntry {
	entries := make([]fetch.HeaderEntry, 0, len(h))
	for _, k := range h.Keys() {
		entries = append(entries, fetch.HeaderEntry{Name: k, Value: h[k]})
	}
	return entries
}
