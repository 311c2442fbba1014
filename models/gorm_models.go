// models/gorm_models.go
package models

import (
	"encoding/json"
	"time"
)

// GormGameRecord 对局记录的GORM模型
type GormGameRecord struct {
	ID            uint      `gorm:"primaryKey"`
	RoomID        string    `gorm:"index;size:255;not null"`
	WinnerID      string    `gorm:"size:255;not null"`
	WinnerName    string    `gorm:"size:255"`
	Players       string    `gorm:"type:jsonb;not null"`
	TimeElapsedMs int64     `gorm:"not null"`
	MazeWidth     int       `gorm:"not null"`
	MazeHeight    int       `gorm:"not null"`
	Levels        int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (GormGameRecord) TableName() string {
	return "game_records"
}

// ToGameRecord 转换为通用记录结构
func (g *GormGameRecord) ToGameRecord() GameRecord {
	var players []string
	_ = json.Unmarshal([]byte(g.Players), &players)

	return GameRecord{
		RoomID:        g.RoomID,
		WinnerID:      g.WinnerID,
		WinnerName:    g.WinnerName,
		Players:       players,
		TimeElapsedMs: g.TimeElapsedMs,
		MazeWidth:     g.MazeWidth,
		MazeHeight:    g.MazeHeight,
		Levels:        g.Levels,
		CreatedAt:     g.CreatedAt,
	}
}

// NewGormGameRecord 从通用记录构造GORM模型
func NewGormGameRecord(rec *GameRecord) *GormGameRecord {
	players, _ := json.Marshal(rec.Players)
	return &GormGameRecord{
		RoomID:        rec.RoomID,
		WinnerID:      rec.WinnerID,
		WinnerName:    rec.WinnerName,
		Players:       string(players),
		TimeElapsedMs: rec.TimeElapsedMs,
		MazeWidth:     rec.MazeWidth,
		MazeHeight:    rec.MazeHeight,
		Levels:        rec.Levels,
		CreatedAt:     rec.CreatedAt,
	}
}
