// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"
	"github.com/wfunc/mazeserver/models"
)

// PostgreSQL 基于 database/sql 的存储实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 存储
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(255) NOT NULL,
            winner_id VARCHAR(255) NOT NULL,
            winner_name VARCHAR(255),
            players JSONB NOT NULL,
            time_elapsed_ms BIGINT NOT NULL,
            maze_width INT NOT NULL,
            maze_height INT NOT NULL,
            levels INT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_game_records_room_id ON game_records (room_id)`)
	return err
}

// SaveGameRecord 保存一条对局记录
func (p *PostgreSQL) SaveGameRecord(rec *models.GameRecord) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO game_records
            (room_id, winner_id, winner_name, players, time_elapsed_ms, maze_width, maze_height, levels, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.RoomID, rec.WinnerID, rec.WinnerName, players,
		rec.TimeElapsedMs, rec.MazeWidth, rec.MazeHeight, rec.Levels, rec.CreatedAt,
	)
	return err
}

// RecentRecords 按时间倒序返回最近的对局记录
func (p *PostgreSQL) RecentRecords(limit int) ([]models.GameRecord, error) {
	rows, err := p.db.Query(`
        SELECT room_id, winner_id, winner_name, players, time_elapsed_ms, maze_width, maze_height, levels, created_at
        FROM game_records
        ORDER BY created_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		var players []byte
		if err := rows.Scan(&rec.RoomID, &rec.WinnerID, &rec.WinnerName, &players,
			&rec.TimeElapsedMs, &rec.MazeWidth, &rec.MazeHeight, &rec.Levels, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
