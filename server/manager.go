package server

import (
	"sync"

	"go.uber.org/zap"

	"pongarena/store"
)

// RoomManager 房间注册表：唯一持有全部 GameState 的对象。
// 进程启动时创建一次、随进程关闭销毁，不使用包级单例。
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	sink store.Sink
	log  *zap.SugaredLogger
}

// NewRoomManager 创建注册表；sink 供各房间在比赛结束时落盘
func NewRoomManager(sink store.Sink, log *zap.SugaredLogger) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		sink:  sink,
		log:   log,
	}
}

// GetOrCreateRoom 取出房间，不存在则按默认状态惰性创建。
// 房间 ID 为任意字符串，不做解释。
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.sink, m.log)
		m.rooms[id] = r
		m.log.Infof("room %s created", id)
	}
	return r
}

// GetRoom 只查不建
func (m *RoomManager) GetRoom(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// ForEachRoom 遍历当前全部房间；遍历顺序未定义，调用方不得依赖
func (m *RoomManager) ForEachRoom(fn func(*Room)) {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	for _, r := range rooms {
		fn(r)
	}
}

// ResetRoom 将指定房间换上全新对局；对该房间的 Tick 原子生效
func (m *RoomManager) ResetRoom(id string) {
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		r.Reset()
	}
}

// Shutdown 停止所有房间的推进并断开其成员
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
	m.log.Info("room manager shut down")
}
