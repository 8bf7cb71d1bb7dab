package server

import "time"

const (
	// TicksPerSecond 模拟推进频率（60 TPS，与客户端帧率无关）
	TicksPerSecond = 60
)

var tickInterval = time.Second / TicksPerSecond

// startTicker 启动本房间的 Tick 循环。调用方需持锁。
// 每个活跃房间一个独立 goroutine；房间内的推进节奏基于墙钟，
// 广播即发即弃，单个慢连接不会拖慢本房间或其他房间的循环。
func (r *Room) startTicker() {
	if r.ticking {
		return
	}
	r.ticking = true
	r.stopCh = make(chan struct{})
	go r.runTicker(r.stopCh)
}

// stopTicker 停止 Tick 循环（持拍角色离开或房间关闭时）。调用方需持锁。
func (r *Room) stopTicker() {
	if !r.ticking {
		return
	}
	r.ticking = false
	close(r.stopCh)
}

// runTicker 固定频率驱动：处理间隔到来 → 推进一步并广播，直到收到停止信号
func (r *Room) runTicker(stop <-chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			start := time.Now()
			r.tick()
			r.metrics.AddTick(time.Since(start).Nanoseconds())
		case <-stop:
			return
		}
	}
}
