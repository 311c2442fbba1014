// player/player.go
package player

import (
	"fmt"
	"sync"

	"github.com/wfunc/mazeserver/maze"
)

// Player 一个在线玩家的瞬时状态。
// Position/HasKey/IsReady 只会被持有该玩家的房间在持锁时修改，
// 注册表本身只负责增删查。
type Player struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	RoomID   string        `json:"roomId,omitempty"`
	Position maze.Position `json:"position"`
	HasKey   bool          `json:"hasKey"`
	IsReady  bool          `json:"isReady"`
}

// Registry 玩家注册表
type Registry struct {
	players map[string]*Player
	mutex   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*Player),
	}
}

// Add 为新连接创建玩家条目，默认名称取ID前6位
func (r *Registry) Add(id string) *Player {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	short := id
	if len(short) > 6 {
		short = short[:6]
	}

	p := &Player{
		ID:   id,
		Name: fmt.Sprintf("Player_%s", short),
	}
	r.players[id] = p
	return p
}

func (r *Registry) Get(id string) (*Player, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	p, exists := r.players[id]
	return p, exists
}

func (r *Registry) Remove(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.players, id)
}

func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.players)
}
