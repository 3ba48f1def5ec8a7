package model

type SessionID string
type RuleID string

// EngineStats 规则引擎统计
type EngineStats struct {
	Total   int64            `json:"total"`
	Matched int64            `json:"matched"`
	Allowed int64            `json:"allowed"`
	Blocked int64            `json:"blocked"`
	ByRule  map[RuleID]int64 `json:"byRule"`
}

// 事件类型
const (
	EventMocked  = "mocked"
	EventAllowed = "allowed"
	EventBlocked = "blocked"
	EventFailed  = "failed"
)

// Event 单次拦截决策事件
type Event struct {
	Type      string    `json:"type"`
	Session   SessionID `json:"session"`
	Rule      *RuleID   `json:"rule"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Timestamp int64     `json:"timestamp"`
	Error     error     `json:"error"`
}
