// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/mazeserver/models"
)

// Store 对局记录存储接口。房间状态本身永不落盘，
// 这里只保存已结束对局的结果。
type Store interface {
	SaveGameRecord(rec *models.GameRecord) error
	RecentRecords(limit int) ([]models.GameRecord, error)
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
