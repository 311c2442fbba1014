package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/mazeserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	closed bool
}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { m.closed = true; return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetReadTimeout(d time.Duration)       {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_TouchResetsIdle(t *testing.T) {
	sess := NewSession("s1", &MockConnection{})

	sess.mutex.Lock()
	sess.lastActive = time.Now().Add(-time.Minute)
	sess.mutex.Unlock()

	if sess.IdleFor() < 30*time.Second {
		t.Fatal("Setup failed: session should look idle")
	}

	sess.Touch()
	if sess.IdleFor() > time.Second {
		t.Errorf("Touch should reset idle time, got %v", sess.IdleFor())
	}
}

func TestManager_Idle(t *testing.T) {
	manager := NewManager()

	fresh := NewSession("fresh", &MockConnection{})
	stale := NewSession("stale", &MockConnection{})
	stale.mutex.Lock()
	stale.lastActive = time.Now().Add(-time.Hour)
	stale.mutex.Unlock()

	manager.Add(fresh)
	manager.Add(stale)

	idle := manager.Idle(time.Minute)
	if len(idle) != 1 || idle[0] != stale {
		t.Fatalf("Expected only the stale session to be idle, got %d sessions", len(idle))
	}
}

func TestSession_SendTouches(t *testing.T) {
	sess := NewSession("s1", &MockConnection{})
	sess.mutex.Lock()
	sess.lastActive = time.Now().Add(-time.Minute)
	sess.mutex.Unlock()

	if err := sess.Send(1, nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sess.IdleFor() > time.Second {
		t.Errorf("Send should mark the session active, idle=%v", sess.IdleFor())
	}
}
