// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/mazeserver/network"
)

// Session 一条活跃连接。ID 同时作为玩家注册表的键，
// 连接与玩家条目一一对应。
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

// Touch 刷新活跃时间。收到任何包（包括心跳）时调用。
func (s *Session) Touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

// IdleFor 距离上次活跃经过的时长
func (s *Session) IdleFor() time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return time.Since(s.lastActive)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager 会话管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// Idle 返回空闲超过 timeout 的会话。调用方负责关闭它们，
// 关闭后连接的读循环会走正常的断开流程。
func (m *Manager) Idle(timeout time.Duration) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var idle []*Session
	for _, s := range m.sessions {
		if s.IdleFor() > timeout {
			idle = append(idle, s)
		}
	}
	return idle
}
