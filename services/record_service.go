// services/record_service.go
package services

import (
	"time"

	"github.com/wfunc/mazeserver/logger"
	"github.com/wfunc/mazeserver/models"
	"github.com/wfunc/mazeserver/persistence"
)

// RecordService 把对局结果写入存储。store 为 nil 时服务器以
// 纯内存模式运行，所有写入都是no-op。
type RecordService struct {
	store persistence.Store
}

func NewRecordService(store persistence.Store) *RecordService {
	return &RecordService{store: store}
}

// Enabled 是否配置了持久化存储
func (s *RecordService) Enabled() bool {
	return s.store != nil
}

// SaveResult 保存一局的结果。存储故障只记日志，
// 绝不影响游戏流程。
func (s *RecordService) SaveResult(roomID string, won models.GameWonPayload, members []string, width, height, levels int) {
	if s.store == nil {
		return
	}

	rec := &models.GameRecord{
		RoomID:        roomID,
		WinnerID:      won.WinnerID,
		WinnerName:    won.WinnerName,
		Players:       members,
		TimeElapsedMs: won.TimeElapsed,
		MazeWidth:     width,
		MazeHeight:    height,
		Levels:        levels,
		CreatedAt:     time.Now(),
	}

	if err := s.store.SaveGameRecord(rec); err != nil {
		logger.Log.Errorf("Failed to save game record for room %s: %v", roomID, err)
	}
}

// RecentRecords 查询最近的对局记录
func (s *RecordService) RecentRecords(limit int) ([]models.GameRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.RecentRecords(limit)
}
