package server

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"pongarena/store"
)

// Room 房间：独占一份权威 GameState 与成员角色表。
// 所有状态变更（意图写入、Tick 推进、换局重置）都在房间锁内完成；
// 锁按房间独立，互不相关的房间不会彼此串行。
type Room struct {
	ID string

	mu    sync.Mutex
	state *GameState
	roles map[SessionID]Role
	conns map[SessionID]*ClientConn
	rng   *rand.Rand

	// 可热更配置（/admin/config）
	winScore int
	hitAccel float64

	ticking bool
	stopCh  chan struct{}
	tickSeq int64

	metrics *RoomMetrics
	sink    store.Sink
	log     *zap.SugaredLogger
}

// NewRoom 创建房间；比分清零、球居中，等第二名玩家入场才开始推进
func NewRoom(id string, sink store.Sink, log *zap.SugaredLogger) *Room {
	return &Room{
		ID:       id,
		state:    NewGameState(),
		roles:    make(map[SessionID]Role),
		conns:    make(map[SessionID]*ClientConn),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		winScore: DefaultWinScore,
		hitAccel: DefaultHitAccel,
		metrics:  &RoomMetrics{},
		sink:     sink,
		log:      log,
	}
}

// Join 接入连接并分配角色：p1 → p2 → spectator。
// 入房应答（角色 + 全量快照）在锁内入队，保证快照与分配一致。
// 双方持拍角色凑齐时对局转为 Active 并启动 Tick 循环（含断线暂停后的续局）。
func (r *Room) Join(sid SessionID, conn *ClientConn) Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.nextFreeRole()
	r.roles[sid] = role
	r.conns[sid] = conn

	conn.Enqueue(marshalAssigned(role))
	snap := *r.state
	conn.Enqueue(marshalState(msgInit, &snap))

	if r.playingCount() == 2 && !r.state.Active {
		r.state.Active = true
		r.startTicker()
		r.log.Infof("room %s: both players present, simulation started", r.ID)
	}
	return role
}

// nextFreeRole 返回下一个空闲持拍角色，满员则观战。调用方需持锁。
func (r *Room) nextFreeRole() Role {
	var hasP1, hasP2 bool
	for _, role := range r.roles {
		switch role {
		case RoleP1:
			hasP1 = true
		case RoleP2:
			hasP2 = true
		}
	}
	switch {
	case !hasP1:
		return RoleP1
	case !hasP2:
		return RoleP2
	default:
		return RoleSpectator
	}
}

// playingCount 当前持拍角色数。调用方需持锁。
func (r *Room) playingCount() int {
	n := 0
	for _, role := range r.roles {
		if role.Playing() {
			n++
		}
	}
	return n
}

// Leave 移除连接的角色登记。持拍角色离开时对局暂停（Active=false、
// Tick 停止、球拍原地冻结），等该角色被后续接入补位后继续。
func (r *Room) Leave(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[sid]
	if !ok {
		return
	}
	delete(r.roles, sid)
	delete(r.conns, sid)

	if role.Playing() {
		r.state.Active = false
		r.stopTicker()
		r.log.Infof("room %s: %s left, simulation paused", r.ID, role)
	}
}

// ApplyPaddleMove 持拍角色的意图直接就地写入（后写覆盖先写）。
// 未知连接、观战者、已失效的登记：静默忽略，意图可能与断线竞争。
func (r *Room) ApplyPaddleMove(sid SessionID, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[sid]
	if !ok || !role.Playing() {
		r.metrics.IncIntentIgnored()
		return
	}
	y = ClampPaddleY(y)
	switch role {
	case RoleP1:
		r.state.Paddles.P1 = y
	case RoleP2:
		r.state.Paddles.P2 = y
	}
	r.metrics.IncIntentAccepted()
}

// tick 单次推进：引擎前移一步 → 胜负判定 → 广播全量快照。
// 锁内只做状态变换与序列化，网络发送在锁外进行。
func (r *Room) tick() {
	r.mu.Lock()
	r.tickSeq++

	scorer, scored := Advance(r.state, r.hitAccel, r.rng)
	var payloads [][]byte

	if scored && r.matchWon() {
		winner := scorer
		rec := store.MatchRecord{
			RoomID:     r.ID,
			Players:    [2]string{"Player 1", "Player 2"},
			ScoreP1:    r.state.Scores.P1,
			ScoreP2:    r.state.Scores.P2,
			Winner:     string(winner),
			FinishedAt: time.Now(),
		}
		ResetMatch(r.state, r.rng)
		r.metrics.IncMatchConcluded()
		r.log.Infof("room %s: match over, winner=%s score=%d:%d",
			r.ID, winner, rec.ScoreP1, rec.ScoreP2)
		payloads = append(payloads, marshalGameOver(winner))
		go r.saveMatch(rec)
	}

	snap := *r.state
	payloads = append(payloads, marshalState(msgUpdate, &snap))

	targets := make([]*ClientConn, 0, len(r.conns))
	for _, c := range r.conns {
		targets = append(targets, c)
	}
	r.mu.Unlock()

	for _, p := range payloads {
		for _, c := range targets {
			if !c.Enqueue(p) {
				r.metrics.IncBroadcastDropped()
			}
		}
	}
}

// matchWon 任一方达到胜利分数。调用方需持锁。
func (r *Room) matchWon() bool {
	return r.state.Scores.P1 >= r.winScore || r.state.Scores.P2 >= r.winScore
}

// saveMatch 异步落盘：失败只记日志与计数，不重试，不影响已完成的换局
func (r *Room) saveMatch(rec store.MatchRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.sink.RecordMatch(ctx, rec); err != nil {
		r.metrics.IncSaveFailed()
	}
}

// Reset 整体换上全新对局状态（比分归零、球回中）；是否推进取决于当前成员
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = NewGameState()
	if r.playingCount() == 2 {
		r.state.Active = true
		r.startTicker()
	} else {
		r.stopTicker()
	}
}

// Snapshot 返回状态副本（监控、测试用）
func (r *Room) Snapshot() GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.state
}

// Config 返回当前可热更参数
func (r *Room) Config() (winScore int, hitAccel float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winScore, r.hitAccel
}

// SetConfig 热更胜利分数与击拍加速系数；非法值忽略对应字段
func (r *Room) SetConfig(winScore *int, hitAccel *float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if winScore != nil && *winScore > 0 {
		r.winScore = *winScore
	}
	if hitAccel != nil && *hitAccel >= 1 {
		r.hitAccel = *hitAccel
	}
}

// Metrics 房间运行指标
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}

// TickSeq 已推进的 Tick 总数
func (r *Room) TickSeq() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickSeq
}

// Close 停止 Tick 并断开所有成员连接（进程退出时由注册表调用）
func (r *Room) Close() {
	r.mu.Lock()
	r.stopTicker()
	conns := make([]*ClientConn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.roles = make(map[SessionID]Role)
	r.conns = make(map[SessionID]*ClientConn)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
