// room/room.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/mazeserver/maze"
	"github.com/wfunc/mazeserver/models"
	"github.com/wfunc/mazeserver/network"
	"github.com/wfunc/mazeserver/player"
)

// GameState 房间的游戏状态: waiting → playing → finished
type GameState string

const (
	StateWaiting  GameState = "waiting"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrPermissionDenied = errors.New("no permission to start the game")
)

// Settings 建房参数
type Settings struct {
	MaxPlayers int
	MazeWidth  int
	MazeHeight int
	Levels     int
}

// DefaultSettings 内置默认值
func DefaultSettings() Settings {
	return Settings{
		MaxPlayers: 4,
		MazeWidth:  10,
		MazeHeight: 10,
		Levels:     1,
	}
}

// DefaultTimeLimit 一局的时间上限
const DefaultTimeLimit = 15 * time.Minute

// 建房参数上限。maxTotalCells 限制迷宫总格数：每格编码约125字节，
// 450格的快照连同房间字段不超过 network.MaxPayloadSize。
const (
	MaxPlayers    = 16
	MaxMazeWidth  = 20
	MaxMazeHeight = 20
	MaxLevels     = 5
	maxTotalCells = 450
)

// normalized 用 fallback 补齐非法(<=0)的字段，并把越界的值压到上限
func (s Settings) normalized(fallback Settings) Settings {
	if s.MaxPlayers <= 0 {
		s.MaxPlayers = fallback.MaxPlayers
	}
	if s.MaxPlayers > MaxPlayers {
		s.MaxPlayers = MaxPlayers
	}
	if s.MazeWidth <= 0 {
		s.MazeWidth = fallback.MazeWidth
	}
	if s.MazeWidth > MaxMazeWidth {
		s.MazeWidth = MaxMazeWidth
	}
	if s.MazeHeight <= 0 {
		s.MazeHeight = fallback.MazeHeight
	}
	if s.MazeHeight > MaxMazeHeight {
		s.MazeHeight = MaxMazeHeight
	}
	if s.Levels <= 0 {
		s.Levels = fallback.Levels
	}
	if s.Levels > MaxLevels {
		s.Levels = MaxLevels
	}
	if limit := maxTotalCells / (s.MazeWidth * s.MazeHeight); s.Levels > limit {
		s.Levels = limit
		if s.Levels < 1 {
			s.Levels = 1
		}
	}
	return s
}

// Room 一局游戏: 独占一个迷宫实例、成员列表和状态机。
// members 保持加入顺序。所有字段的变更都在 mutex 内完成，
// 同一房间的并发命令因此被串行化。
type Room struct {
	ID         string
	CreatedBy  string
	MaxPlayers int
	TimeLimit  time.Duration
	CreatedAt  time.Time

	wire      sync.Mutex
	mutex     sync.Mutex
	members   []string
	m         *maze.Maze
	state     GameState
	startTime time.Time
	players   *player.Registry
}

func newRoom(id, creatorID string, s Settings, timeLimit time.Duration, players *player.Registry) (*Room, error) {
	m, err := maze.Generate(s.MazeWidth, s.MazeHeight, s.Levels)
	if err != nil {
		return nil, err
	}

	return &Room{
		ID:         id,
		CreatedBy:  creatorID,
		MaxPlayers: s.MaxPlayers,
		TimeLimit:  timeLimit,
		CreatedAt:  time.Now(),
		members:    []string{creatorID},
		m:          m,
		state:      StateWaiting,
		players:    players,
	}, nil
}

// Guard 在 fn 执行期间持有房间的出站锁。协调器从命令被接受
// 持有到事件写出，使同一房间内后接受命令的事件不会先于、
// 也不会插入先接受命令的事件组。
// 锁顺序：出站锁先于注册表锁和房间锁获取，反向获取是禁止的。
func (r *Room) Guard(fn func()) {
	r.wire.Lock()
	defer r.wire.Unlock()
	fn()
}

// State 当前游戏状态
func (r *Room) State() GameState {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

// Members 返回成员ID列表的副本（加入顺序）
func (r *Room) Members() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	members := make([]string, len(r.members))
	copy(members, r.members)
	return members
}

// PlayerCount 当前成员数
func (r *Room) PlayerCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.members)
}

// Snapshot 生成房间快照，迷宫为深拷贝，调用方可安全序列化
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	members := make([]string, len(r.members))
	copy(members, r.members)

	return models.RoomSnapshot{
		ID:         r.ID,
		Players:    members,
		MaxPlayers: r.MaxPlayers,
		GameState:  string(r.state),
		CreatedBy:  r.CreatedBy,
		TimeLimit:  r.TimeLimit.Milliseconds(),
		Maze:       r.m.Clone(),
	}
}

// addMember 追加成员，满员返回 ErrRoomFull
func (r *Room) addMember(playerID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.members) >= r.MaxPlayers {
		return ErrRoomFull
	}
	r.members = append(r.members, playerID)
	return nil
}

// removeMember 移除成员并返回剩余人数
func (r *Room) removeMember(playerID string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, id := range r.members {
		if id == playerID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	return len(r.members)
}

// Start 开始游戏。只有建房者可以开始；成功后所有成员的瞬时状态
// 被无条件重置到起点，并广播 gameStarted。
func (r *Room) Start(requesterID string) ([]Event, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if requesterID != r.CreatedBy {
		return nil, ErrPermissionDenied
	}

	r.state = StatePlaying
	r.startTime = time.Now()

	for _, id := range r.members {
		if p, ok := r.players.Get(id); ok {
			p.Position = maze.Position{X: 0, Y: 0, Level: 0}
			p.HasKey = false
			p.IsReady = false
		}
	}

	return []Event{{
		Type: network.MsgTypeGameStarted,
		Payload: models.GameStartedPayload{
			StartTime: r.startTime.UnixMilli(),
			TimeLimit: r.TimeLimit.Milliseconds(),
			Maze:      r.m.Clone(),
		},
	}}, nil
}

// Move 处理移动命令。非 playing 状态、撞墙或越界都静默吸收，
// 不产生任何事件。坐标变化时按顺序追加
// keyCollected / gameWon / playerMoved 事件。
func (r *Room) Move(playerID string, dir maze.Direction) []Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state != StatePlaying {
		return nil
	}

	p, ok := r.players.Get(playerID)
	if !ok {
		return nil
	}

	next, moved := r.m.Step(p.Position, dir)
	if !moved {
		return nil
	}

	p.Position = next

	var events []Event

	cell := r.m.At(next.Level, next.X, next.Y)
	if cell.HasKey && !p.HasKey {
		p.HasKey = true
		cell.HasKey = false
		events = append(events, Event{
			Type:    network.MsgTypeKeyCollected,
			Payload: models.KeyCollectedPayload{PlayerID: playerID},
		})
	}

	if cell.HasExit && p.HasKey {
		r.state = StateFinished
		events = append(events, Event{
			Type: network.MsgTypeGameWon,
			Payload: models.GameWonPayload{
				WinnerID:    playerID,
				WinnerName:  p.Name,
				TimeElapsed: time.Since(r.startTime).Milliseconds(),
			},
		})
	}

	events = append(events, Event{
		Type: network.MsgTypePlayerMoved,
		Payload: models.PlayerMovedPayload{
			PlayerID: playerID,
			Position: p.Position,
			HasKey:   p.HasKey,
		},
	})

	return events
}

// MazeSize 迷宫尺寸
func (r *Room) MazeSize() (width, height, levels int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.m.Width, r.m.Height, len(r.m.Levels)
}

// listItem 用于 /api/rooms 的摘要
func (r *Room) listItem() models.RoomListItem {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return models.RoomListItem{
		ID:          r.ID,
		PlayerCount: len(r.members),
		MaxPlayers:  r.MaxPlayers,
		GameState:   string(r.state),
		CreatedBy:   r.CreatedBy,
	}
}
