package server

import "sync/atomic"

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount        int64 // 统计的 Tick 次数
	TotalTickNs      int64 // Tick 累计耗时（纳秒）
	IntentsAccepted  int64 // 被接受的球拍意图数
	IntentsIgnored   int64 // 被忽略的意图数（观战者 / 未登记连接）
	BroadcastDropped int64 // 因发送队列满被丢弃的广播帧数
	MatchesConcluded int64 // 已结束的比赛场数
	SaveFailures     int64 // 比赛记录落盘失败次数
}

func (m *RoomMetrics) IncIntentAccepted()   { atomic.AddInt64(&m.IntentsAccepted, 1) }
func (m *RoomMetrics) IncIntentIgnored()    { atomic.AddInt64(&m.IntentsIgnored, 1) }
func (m *RoomMetrics) IncBroadcastDropped() { atomic.AddInt64(&m.BroadcastDropped, 1) }
func (m *RoomMetrics) IncMatchConcluded()   { atomic.AddInt64(&m.MatchesConcluded, 1) }
func (m *RoomMetrics) IncSaveFailed()       { atomic.AddInt64(&m.SaveFailures, 1) }

func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"avg_tick_ms":       avgMs,
		"intents_accepted":  atomic.LoadInt64(&m.IntentsAccepted),
		"intents_ignored":   atomic.LoadInt64(&m.IntentsIgnored),
		"broadcast_dropped": atomic.LoadInt64(&m.BroadcastDropped),
		"matches_concluded": atomic.LoadInt64(&m.MatchesConcluded),
		"save_failures":     atomic.LoadInt64(&m.SaveFailures),
	}
}
