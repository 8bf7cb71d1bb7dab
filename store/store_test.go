package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNopSink(t *testing.T) {
	var s Sink = NopSink{}
	err := s.RecordMatch(context.Background(), MatchRecord{Winner: "p1"})
	assert.NoError(t, err)
	s.Close()
}

// 两侧后端都未配置时 Recorder 直接成功
func TestRecorderWithoutBackends(t *testing.T) {
	r := NewRecorder(nil, nil, zap.NewNop().Sugar())
	err := r.RecordMatch(context.Background(), MatchRecord{
		RoomID:     "r1",
		Players:    [2]string{"Player 1", "Player 2"},
		ScoreP1:    10,
		ScoreP2:    3,
		Winner:     "p1",
		FinishedAt: time.Now(),
	})
	assert.NoError(t, err)
	r.Close()
}

// 非法 DSN 立即失败，不会静默返回半初始化的存储
func TestNewMatchStoreBadDSN(t *testing.T) {
	_, err := NewMatchStore(context.Background(), "://not-a-dsn")
	require.Error(t, err)
}
