// room/manager.go
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/mazeserver/models"
	"github.com/wfunc/mazeserver/network"
	"github.com/wfunc/mazeserver/player"
)

// Manager 房间注册表，唯一拥有跨房间视图的组件。
// 锁顺序约定：先取注册表锁，再取房间锁，避免死锁。
type Manager struct {
	rooms     map[string]*Room
	players   *player.Registry
	defaults  Settings
	timeLimit time.Duration
	mutex     sync.RWMutex
}

// NewManager 创建房间管理器。defaults 中非法(<=0)的字段回退到内置默认值。
func NewManager(players *player.Registry, defaults Settings, timeLimit time.Duration) *Manager {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &Manager{
		rooms:     make(map[string]*Room),
		players:   players,
		defaults:  defaults.normalized(DefaultSettings()),
		timeLimit: timeLimit,
	}
}

// CreateRoom 生成迷宫并注册新房间，建房者为唯一初始成员。
// 返回发给建房者的 roomCreated 事件。
func (m *Manager) CreateRoom(creatorID string, s Settings) (*Room, []Event, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// UUID碰撞概率可忽略，但为保持注册表键唯一仍然重试
	id := uuid.New().String()
	for {
		if _, exists := m.rooms[id]; !exists {
			break
		}
		id = uuid.New().String()
	}

	r, err := newRoom(id, creatorID, s.normalized(m.defaults), m.timeLimit, m.players)
	if err != nil {
		return nil, nil, err
	}
	m.rooms[id] = r

	if p, ok := m.players.Get(creatorID); ok {
		p.RoomID = id
	}

	events := []Event{{
		Type: network.MsgTypeRoomCreated,
		To:   creatorID,
		Payload: models.RoomCreatedPayload{
			RoomID: id,
			Room:   r.Snapshot(),
		},
	}}

	return r, events, nil
}

// JoinRoom 加入已有房间。房间不存在返回 ErrRoomNotFound，
// 满员返回 ErrRoomFull。对 playing/finished 的房间不做限制。
func (m *Manager) JoinRoom(playerID, roomID string) (*Room, []Event, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	r, exists := m.rooms[roomID]
	if !exists {
		return nil, nil, ErrRoomNotFound
	}

	if err := r.addMember(playerID); err != nil {
		return nil, nil, err
	}

	if p, ok := m.players.Get(playerID); ok {
		p.RoomID = roomID
	}

	events := []Event{
		{
			Type: network.MsgTypeRoomJoined,
			To:   playerID,
			Payload: models.RoomJoinedPayload{
				RoomID: roomID,
				Room:   r.Snapshot(),
			},
		},
		{
			Type: network.MsgTypePlayerJoined,
			Payload: models.PlayerJoinedPayload{
				PlayerID:    playerID,
				PlayerCount: r.PlayerCount(),
			},
		},
	}

	return r, events, nil
}

// RemoveMember 将玩家移出房间。成员清空时立刻删除房间，
// 否则向剩余成员广播 playerLeft。
func (m *Manager) RemoveMember(playerID, roomID string) []Event {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, exists := m.rooms[roomID]
	if !exists {
		return nil
	}

	remaining := r.removeMember(playerID)

	if p, ok := m.players.Get(playerID); ok && p.RoomID == roomID {
		p.RoomID = ""
	}

	if remaining == 0 {
		delete(m.rooms, roomID)
		return nil
	}

	return []Event{{
		Type: network.MsgTypePlayerLeft,
		Payload: models.PlayerLeftPayload{
			PlayerID:    playerID,
			PlayerCount: remaining,
		},
	}}
}

// Get 查找房间
func (m *Manager) Get(roomID string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[roomID]
	return r, exists
}

// List 返回所有房间的摘要
func (m *Manager) List() []models.RoomListItem {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	items := make([]models.RoomListItem, 0, len(m.rooms))
	for _, r := range m.rooms {
		items = append(items, r.listItem())
	}
	return items
}

// Count 活跃房间数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
