package rules

import (
	"sync"
	"sync/atomic"

	"cdpmock/pkg/model"
	"cdpmock/pkg/rulespec"
)

// Engine 有序规则集合，先命中者优先
type Engine struct {
	mu    sync.RWMutex
	rules []rulespec.Rule
	allow []rulespec.AllowEntry

	total   atomic.Int64
	matched atomic.Int64
	allowed atomic.Int64
	blocked atomic.Int64
	byRule  sync.Map // model.RuleID -> *atomic.Int64
}

// New 以默认规则和放行列表构造引擎，后续 Add 的规则排在默认规则之后
func New(defaults []rulespec.Rule, allow []rulespec.AllowEntry) *Engine {
	e := &Engine{
		rules: make([]rulespec.Rule, 0, len(defaults)),
		allow: make([]rulespec.AllowEntry, 0, len(allow)),
	}
	e.rules = append(e.rules, defaults...)
	e.allow = append(e.allow, allow...)
	return e
}

// Add 追加规则
func (e *Engine) Add(r rulespec.Rule) {
	e.mu.Lock()
	e.rules = append(e.rules, r)
	e.mu.Unlock()
}

// Resolve 依次匹配规则、放行列表，均未命中则阻止
func (e *Engine) Resolve(url, method string) rulespec.Decision {
	e.total.Add(1)
	e.mu.RLock()
	defer e.mu.RUnlock()

	for i := range e.rules {
		r := &e.rules[i]
		if r.Matches(url, method) {
			e.matched.Add(1)
			e.countRule(r.ID)
			id := r.ID
			return rulespec.Decision{Kind: rulespec.Mocked, Body: r.Response, Rule: &id}
		}
	}
	for i := range e.allow {
		if e.allow[i].Matches(url, method) {
			e.allowed.Add(1)
			return rulespec.Decision{Kind: rulespec.Allowed}
		}
	}
	e.blocked.Add(1)
	return rulespec.Decision{Kind: rulespec.Blocked}
}

func (e *Engine) countRule(id model.RuleID) {
	v, _ := e.byRule.LoadOrStore(id, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

// Rules 返回当前规则快照
func (e *Engine) Rules() []rulespec.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]rulespec.Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Allowed 返回放行列表快照
func (e *Engine) Allowed() []rulespec.AllowEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]rulespec.AllowEntry, len(e.allow))
	copy(out, e.allow)
	return out
}

// Stats 返回匹配统计
func (e *Engine) Stats() model.EngineStats {
	st := model.EngineStats{
		Total:   e.total.Load(),
		Matched: e.matched.Load(),
		Allowed: e.allowed.Load(),
		Blocked: e.blocked.Load(),
		ByRule:  make(map[model.RuleID]int64),
	}
	e.byRule.Range(func(k, v any) bool {
		st.ByRule[k.(model.RuleID)] = v.(*atomic.Int64).Load()
		return true
	})
	return st
}
