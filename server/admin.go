package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pongarena/store"
)

// HandleAdminConfig 房间参数的读取与热更新
// GET  /admin/config?room=room-1  返回当前参数
// POST /admin/config?room=room-1  以 JSON 载荷更新部分字段
func HandleAdminConfig(rm *RoomManager) http.HandlerFunc {
	type cfg struct {
		WinScore *int     `json:"winScore,omitempty"`
		HitAccel *float64 `json:"hitAccel,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			roomID = DefaultRoomID
		}
		room := rm.GetOrCreateRoom(roomID)

		switch r.Method {
		case http.MethodGet:
			win, accel := room.Config()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cfg{WinScore: &win, HitAccel: &accel})
		case http.MethodPost:
			var body cfg
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			room.SetConfig(body.WinScore, body.HitAccel)
			win, accel := room.Config()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cfg{WinScore: &win, HitAccel: &accel})
			Log.Infof("config updated: room=%s winScore=%d hitAccel=%.2f", roomID, win, accel)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleMetrics 输出房间运行指标
// GET /metrics            全部房间
// GET /metrics?room=r1    单个房间
func HandleMetrics(rm *RoomManager) http.HandlerFunc {
	roomPayload := func(r *Room) map[string]any {
		return map[string]any{
			"room":    r.ID,
			"tick":    r.TickSeq(),
			"metrics": r.Metrics().Snapshot(),
		}
	}
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if roomID := req.URL.Query().Get("room"); roomID != "" {
			room, ok := rm.GetRoom(roomID)
			if !ok {
				http.Error(w, "room not found", http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(roomPayload(room))
			return
		}
		var all []map[string]any
		rm.ForEachRoom(func(r *Room) {
			all = append(all, roomPayload(r))
		})
		_ = json.NewEncoder(w).Encode(all)
	}
}

// HandleLeaderboard 胜场排行（Redis 未配置时返回 503）
// GET /leaderboard?n=10
func HandleLeaderboard(lb *store.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lb == nil {
			http.Error(w, "leaderboard not configured", http.StatusServiceUnavailable)
			return
		}
		n, err := strconv.ParseInt(r.URL.Query().Get("n"), 10, 64)
		if err != nil || n <= 0 {
			n = 10
		}
		entries, err := lb.Top(r.Context(), n)
		if err != nil {
			Log.Errorf("leaderboard query failed: %v", err)
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}
}

// HandleRecentMatches 最近结束的比赛记录（Postgres 未配置时返回 503）
// GET /matches?n=20
func HandleRecentMatches(ms *store.MatchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ms == nil {
			http.Error(w, "match store not configured", http.StatusServiceUnavailable)
			return
		}
		n, err := strconv.Atoi(r.URL.Query().Get("n"))
		if err != nil || n <= 0 || n > 100 {
			n = 20
		}
		matches, err := ms.RecentMatches(r.Context(), n)
		if err != nil {
			Log.Errorf("recent matches query failed: %v", err)
			http.Error(w, "match store unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(matches)
	}
}
