// Package store 负责对局结束后的落盘：PostgreSQL 保存比赛记录，
// Redis 维护胜场排行。持久化失败只记日志、不重试，绝不阻塞房间换局。
package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MatchRecord 一场结束比赛的摘要，写入一次后不再变更
type MatchRecord struct {
	RoomID     string
	Players    [2]string
	ScoreP1    int
	ScoreP2    int
	Winner     string
	FinishedAt time.Time
}

// Sink 比赛记录的落地接口；实现必须容忍失败（返回 error 仅用于日志）
type Sink interface {
	RecordMatch(ctx context.Context, rec MatchRecord) error
	Close()
}

// Recorder 组合 Postgres 与可选的 Redis 排行：任一侧失败都不影响另一侧
type Recorder struct {
	matches     *MatchStore
	leaderboard *Leaderboard
	log         *zap.SugaredLogger
}

// NewRecorder 任一后端可为 nil（未配置时跳过该侧）
func NewRecorder(matches *MatchStore, leaderboard *Leaderboard, log *zap.SugaredLogger) *Recorder {
	return &Recorder{matches: matches, leaderboard: leaderboard, log: log}
}

// RecordMatch 先写比赛记录，再增胜场计数；各自独立失败
func (r *Recorder) RecordMatch(ctx context.Context, rec MatchRecord) error {
	var firstErr error
	if r.matches != nil {
		if err := r.matches.SaveMatch(ctx, rec); err != nil {
			r.log.Errorf("save match failed: room=%s winner=%s err=%v", rec.RoomID, rec.Winner, err)
			firstErr = err
		}
	}
	if r.leaderboard != nil {
		if err := r.leaderboard.RecordWin(ctx, rec.Winner); err != nil {
			r.log.Warnf("leaderboard update failed: winner=%s err=%v", rec.Winner, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close 关闭两侧后端连接
func (r *Recorder) Close() {
	if r.matches != nil {
		r.matches.Close()
	}
	if r.leaderboard != nil {
		r.leaderboard.Close()
	}
}

// NopSink 未配置任何后端时的空实现，比赛记录直接丢弃
type NopSink struct{}

func (NopSink) RecordMatch(context.Context, MatchRecord) error { return nil }
func (NopSink) Close()                                         {}
