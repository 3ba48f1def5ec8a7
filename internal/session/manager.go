package session

import (
	"sort"
	"sync"

	"cdpmock/internal/logger"
	"cdpmock/pkg/browser"
	"cdpmock/pkg/model"
)

// Manager 跟踪已创建的拦截会话，测试结束时据此发现未释放的回调槽位
type Manager struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*Session
	log      logger.Logger
}

// NewManager 创建会话管理器
func NewManager(l logger.Logger) *Manager {
	if l == nil {
		l = logger.NewNop()
	}
	return &Manager{
		sessions: make(map[model.SessionID]*Session),
		log:      l,
	}
}

// Create 创建并注册新会话
func (m *Manager) Create(adapter browser.Adapter, opts ...Option) *Session {
	s := New(adapter, opts...)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	m.log.Debug("创建拦截会话", "session", string(s.id))
	return s
}

// Get 获取会话
func (m *Manager) Get(id model.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete 移除会话，不会停止拦截
func (m *Manager) Delete(id model.SessionID) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.log.Debug("移除拦截会话", "session", string(id))
	}
}

// List 按 ID 排序返回所有会话
func (m *Manager) List() []*Session {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
	return list
}

// Leaked 返回仍持有回调槽位的会话 ID
func (m *Manager) Leaked() []model.SessionID {
	var ids []model.SessionID
	for _, s := range m.List() {
		if s.Active() {
			ids = append(ids, s.id)
		}
	}
	if len(ids) > 0 {
		m.log.Warn("interception lease not released", "sessions", len(ids))
	}
	return ids
}
