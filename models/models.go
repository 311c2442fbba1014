// models/models.go
package models

import (
	"time"

	"github.com/wfunc/mazeserver/maze"
)

// CreateRoomRequest 建房参数，零值或负值回退到服务器默认配置
type CreateRoomRequest struct {
	PlayerCount int `json:"playerCount"`
	MazeWidth   int `json:"mazeWidth"`
	MazeHeight  int `json:"mazeHeight"`
	Levels      int `json:"levels"`
}

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

type StartGameRequest struct {
	RoomID string `json:"roomId"`
}

type MoveRequest struct {
	Direction string `json:"direction"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// RoomSnapshot 房间完整快照，建房/加入时发给客户端
type RoomSnapshot struct {
	ID         string     `json:"id"`
	Players    []string   `json:"players"`
	MaxPlayers int        `json:"maxPlayers"`
	GameState  string     `json:"gameState"`
	CreatedBy  string     `json:"createdBy"`
	TimeLimit  int64      `json:"timeLimit"` // 毫秒
	Maze       *maze.Maze `json:"maze"`
}

type RoomCreatedPayload struct {
	RoomID string       `json:"roomId"`
	Room   RoomSnapshot `json:"room"`
}

type RoomJoinedPayload struct {
	RoomID string       `json:"roomId"`
	Room   RoomSnapshot `json:"room"`
}

type PlayerJoinedPayload struct {
	PlayerID    string `json:"playerId"`
	PlayerCount int    `json:"playerCount"`
}

type GameStartedPayload struct {
	StartTime int64      `json:"startTime"` // Unix毫秒
	TimeLimit int64      `json:"timeLimit"` // 毫秒
	Maze      *maze.Maze `json:"maze"`
}

type PlayerMovedPayload struct {
	PlayerID string        `json:"playerId"`
	Position maze.Position `json:"position"`
	HasKey   bool          `json:"hasKey"`
}

type KeyCollectedPayload struct {
	PlayerID string `json:"playerId"`
}

type GameWonPayload struct {
	WinnerID    string `json:"winnerId"`
	WinnerName  string `json:"winnerName"`
	TimeElapsed int64  `json:"timeElapsed"` // 毫秒
}

type PlayerLeftPayload struct {
	PlayerID    string `json:"playerId"`
	PlayerCount int    `json:"playerCount"`
}

// HealthResponse /api/health 响应
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	ActiveRooms   int    `json:"activeRooms"`
	ActivePlayers int    `json:"activePlayers"`
}

// RoomListItem /api/rooms 列表项，不暴露迷宫与玩家细节
type RoomListItem struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	GameState   string `json:"gameState"`
	CreatedBy   string `json:"createdBy"`
}

// GameRecord 一局结束后的对局记录
type GameRecord struct {
	RoomID        string    `json:"room_id"`
	WinnerID      string    `json:"winner_id"`
	WinnerName    string    `json:"winner_name"`
	Players       []string  `json:"players"`
	TimeElapsedMs int64     `json:"time_elapsed_ms"`
	MazeWidth     int       `json:"maze_width"`
	MazeHeight    int       `json:"maze_height"`
	Levels        int       `json:"levels"`
	CreatedAt     time.Time `json:"created_at"`
}
