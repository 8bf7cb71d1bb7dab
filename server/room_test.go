package server

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pongarena/store"
)

// recordingSink 记录落盘调用次数与最后一条记录
type recordingSink struct {
	calls int64
	last  atomic.Pointer[store.MatchRecord]
}

func (s *recordingSink) RecordMatch(_ context.Context, rec store.MatchRecord) error {
	s.last.Store(&rec)
	atomic.AddInt64(&s.calls, 1)
	return nil
}

func (s *recordingSink) Close() {}

func newTestRoom(t *testing.T) (*Room, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	r := NewRoom("test-room", sink, zap.NewNop().Sugar())
	t.Cleanup(r.Close)
	return r, sink
}

func join(r *Room) (SessionID, Role, *ClientConn) {
	sid := SessionID(uuid.NewString())
	conn := NewClientConn(nil)
	role := r.Join(sid, conn)
	return sid, role, conn
}

// pause 停掉真实 Ticker，便于测试手动驱动 tick
func pause(r *Room) {
	r.mu.Lock()
	r.stopTicker()
	r.mu.Unlock()
}

// 先到先得：p1 → p2 → spectator；双方到齐后开始推进
func TestJoinAssignsRolesInOrder(t *testing.T) {
	r, _ := newTestRoom(t)

	sid1 := SessionID("c1")
	sid2 := SessionID("c2")
	sid3 := SessionID("c3")

	assert.Equal(t, RoleP1, r.Join(sid1, NewClientConn(nil)))
	assert.False(t, r.Snapshot().Active, "单人房间不应推进")

	assert.Equal(t, RoleP2, r.Join(sid2, NewClientConn(nil)))
	assert.True(t, r.Snapshot().Active)

	assert.Equal(t, RoleSpectator, r.Join(sid3, NewClientConn(nil)))
}

// 入房应答：角色消息 + 全量快照按序入队
func TestJoinSendsAssignmentAndSnapshot(t *testing.T) {
	r, _ := newTestRoom(t)

	conn := NewClientConn(nil)
	r.Join(SessionID("c1"), conn)

	require.Len(t, conn.send, 2)
	assert.JSONEq(t, `{"type":"playerAssigned","role":"p1"}`, string(<-conn.send))

	var init stateMessage
	require.NoError(t, json.Unmarshal(<-conn.send, &init))
	assert.Equal(t, msgInit, init.Type)
	assert.Equal(t, 400.0, init.State.Ball.X)
	assert.Equal(t, Scores{}, init.State.Scores)
}

// 意图钳制对任意输入封闭
func TestApplyPaddleMoveClamps(t *testing.T) {
	r, _ := newTestRoom(t)
	sid, _, _ := join(r)

	tests := []struct {
		in   float64
		want float64
	}{
		{-50, 0},
		{10000, 500},
		{233.5, 233.5},
	}
	for _, tt := range tests {
		r.ApplyPaddleMove(sid, tt.in)
		assert.Equal(t, tt.want, r.Snapshot().Paddles.P1)
	}
}

// 观战者与未登记连接的意图静默忽略，不报错、不改状态
func TestSpectatorIntentIgnored(t *testing.T) {
	r, _ := newTestRoom(t)
	join(r)
	join(r)
	specSID, role, _ := join(r)
	require.Equal(t, RoleSpectator, role)

	before := r.Snapshot().Paddles
	r.ApplyPaddleMove(specSID, 123)
	r.ApplyPaddleMove(SessionID("never-joined"), 456)

	assert.Equal(t, before, r.Snapshot().Paddles)
	assert.Equal(t, int64(2), atomic.LoadInt64(&r.metrics.IntentsIgnored))
}

// 持拍角色断开：暂停推进，球拍原地冻结
func TestLeavePausesSimulation(t *testing.T) {
	r, _ := newTestRoom(t)
	sid1, _, _ := join(r)
	join(r)
	require.True(t, r.Snapshot().Active)

	r.ApplyPaddleMove(sid1, 42)
	r.Leave(sid1)

	snap := r.Snapshot()
	assert.False(t, snap.Active)
	assert.Equal(t, 42.0, snap.Paddles.P1, "离场后球拍应冻结在原位")

	// 补位后继续
	_, role, _ := join(r)
	assert.Equal(t, RoleP1, role)
	assert.True(t, r.Snapshot().Active)
}

// 胜利转换：达到阈值后恰好请求一次落盘，随后整局归零
func TestWinConcludesMatchOnce(t *testing.T) {
	r, sink := newTestRoom(t)
	sid1, _, _ := join(r)
	_, _, conn2 := join(r)
	pause(r)

	one := 1
	r.SetConfig(&one, nil)

	// 球拍让开路径，下一 Tick 球穿出左界
	r.ApplyPaddleMove(sid1, 0)
	r.mu.Lock()
	r.state.Ball = Ball{X: 2, Y: 300, VX: -5, VY: 0}
	r.mu.Unlock()

	r.tick()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&sink.calls) == 1
	}, time.Second, 10*time.Millisecond)

	rec := sink.last.Load()
	require.NotNil(t, rec)
	assert.Equal(t, "p2", rec.Winner)
	assert.Equal(t, 0, rec.ScoreP1)
	assert.Equal(t, 1, rec.ScoreP2)
	assert.Equal(t, "test-room", rec.RoomID)

	snap := r.Snapshot()
	assert.Equal(t, Scores{}, snap.Scores)
	assert.Equal(t, 400.0, snap.Ball.X)
	assert.True(t, snap.Active, "双方仍在场，新局立即开始")

	// 广播顺序：gameOver 在新局快照之前（conn2 此前收过角色分配与 init）
	drainN(conn2, 2)
	assert.JSONEq(t, `{"type":"gameOver","winner":"p2"}`, string(<-conn2.send))

	// 追加 Tick 不应再次落盘
	r.tick()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&sink.calls))
}

// 未达阈值的得分只重置球，不触发落盘
func TestScoreWithoutWinKeepsMatch(t *testing.T) {
	r, sink := newTestRoom(t)
	sid1, _, _ := join(r)
	join(r)
	pause(r)

	r.ApplyPaddleMove(sid1, 0)
	r.mu.Lock()
	r.state.Ball = Ball{X: 2, Y: 300, VX: -5, VY: 0}
	r.mu.Unlock()

	r.tick()

	snap := r.Snapshot()
	assert.Equal(t, Scores{P1: 0, P2: 1}, snap.Scores)
	assert.Equal(t, 400.0, snap.Ball.X)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), atomic.LoadInt64(&sink.calls))
}

// Reset 换上全新状态；成员资格决定是否继续推进
func TestResetKeepsMembership(t *testing.T) {
	r, _ := newTestRoom(t)
	join(r)
	join(r)

	r.mu.Lock()
	r.state.Scores = Scores{P1: 5, P2: 3}
	r.mu.Unlock()

	r.Reset()

	snap := r.Snapshot()
	assert.Equal(t, Scores{}, snap.Scores)
	assert.True(t, snap.Active)
}

func drainN(c *ClientConn, n int) {
	for i := 0; i < n; i++ {
		<-c.send
	}
}
