package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// leaderboardKey 胜场有序集合：member 为胜者名，score 为胜场数
const leaderboardKey = "pong:leaderboard"

// Leaderboard 基于 Redis ZSET 的胜场排行；丢失可接受（可从 matches 表重建）
type Leaderboard struct {
	rdb *redis.Client
}

// NewLeaderboard 建连并 Ping 验证可达
func NewLeaderboard(ctx context.Context, addr, password string, db int) (*Leaderboard, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Leaderboard{rdb: rdb}, nil
}

// RecordWin 胜者胜场 +1
func (l *Leaderboard) RecordWin(ctx context.Context, winner string) error {
	if err := l.rdb.ZIncrBy(ctx, leaderboardKey, 1, winner).Err(); err != nil {
		return fmt.Errorf("incr win count: %w", err)
	}
	return nil
}

// Entry 排行榜单条
type Entry struct {
	Player string `json:"player"`
	Wins   int64  `json:"wins"`
}

// Top 按胜场倒序取前 n 名
func (l *Leaderboard) Top(ctx context.Context, n int64) ([]Entry, error) {
	zs, err := l.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("range leaderboard: %w", err)
	}
	out := make([]Entry, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, Entry{Player: name, Wins: int64(z.Score)})
	}
	return out, nil
}

// Close 关闭 Redis 连接
func (l *Leaderboard) Close() {
	_ = l.rdb.Close()
}
