package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// matches 表结构，启动时幂等创建（单表，不引入迁移工具）
const matchesSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id          BIGSERIAL PRIMARY KEY,
	room_id     TEXT        NOT NULL,
	player1     TEXT        NOT NULL,
	player2     TEXT        NOT NULL,
	score_p1    INT         NOT NULL,
	score_p2    INT         NOT NULL,
	winner      TEXT        NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// MatchStore 基于 pgxpool 的比赛记录存储
type MatchStore struct {
	pool *pgxpool.Pool
}

// NewMatchStore 建池并确保表结构存在
func NewMatchStore(ctx context.Context, dsn string) (*MatchStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, matchesSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &MatchStore{pool: pool}, nil
}

// SaveMatch 写入一条比赛记录
func (s *MatchStore) SaveMatch(ctx context.Context, rec MatchRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO matches (room_id, player1, player2, score_p1, score_p2, winner, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.RoomID, rec.Players[0], rec.Players[1], rec.ScoreP1, rec.ScoreP2, rec.Winner, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// SavedMatch 查询返回的比赛记录（带自增 ID）
type SavedMatch struct {
	ID         int64     `json:"id"`
	RoomID     string    `json:"roomId"`
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	ScoreP1    int       `json:"scoreP1"`
	ScoreP2    int       `json:"scoreP2"`
	Winner     string    `json:"winner"`
	FinishedAt time.Time `json:"finishedAt"`
}

// RecentMatches 按结束时间倒序取最近 limit 条
func (s *MatchStore) RecentMatches(ctx context.Context, limit int) ([]SavedMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, room_id, player1, player2, score_p1, score_p2, winner, finished_at
		 FROM matches ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []SavedMatch
	for rows.Next() {
		var m SavedMatch
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Player1, &m.Player2,
			&m.ScoreP1, &m.ScoreP2, &m.Winner, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close 释放连接池
func (s *MatchStore) Close() {
	s.pool.Close()
}
