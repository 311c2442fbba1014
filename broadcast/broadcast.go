// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/mazeserver/logger"
	"github.com/wfunc/mazeserver/room"
	"github.com/wfunc/mazeserver/session"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Broadcaster 负责把事件送到正确的连接。
// 房间级广播只覆盖该房间的成员，绝不外溢到其他房间。
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	SendToSession(sessionID string, msgID uint16, data []byte) error
}

// RoomBroadcaster 基于房间成员列表的广播器
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom 向房间所有成员发送。单个连接发送失败不影响其他成员，
// 失败的连接由其自身的读循环负责清理。
func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, memberID := range r.Members() {
		s, ok := b.sessionManager.Get(memberID)
		if !ok {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Warnf("Broadcast to session %s in room %s failed: %v", memberID, roomID, err)
			continue
		}
	}

	return nil
}

// SendToSession 定向发送给单个会话
func (b *RoomBroadcaster) SendToSession(sessionID string, msgID uint16, data []byte) error {
	s, ok := b.sessionManager.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}
