package server

import "encoding/json"

// 入站消息（WebSocket 文本帧）。示例：
//
//	{"type":"join","roomId":"r1"}
//	{"type":"paddleMove","y":233.5}
type clientMessage struct {
	Type   string  `json:"type"`
	RoomID string  `json:"roomId,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// 出站消息类型
const (
	msgPlayerAssigned = "playerAssigned"
	msgSpectator      = "spectator"
	msgInit           = "init"
	msgUpdate         = "update"
	msgGameOver       = "gameOver"
)

// assignedMessage 入房应答：告知连接被分配到的角色
type assignedMessage struct {
	Type string `json:"type"`
	Role Role   `json:"role"`
}

// stateMessage 全量状态快照（init 与每 Tick 的 update 共用，无增量压缩）
type stateMessage struct {
	Type  string     `json:"type"`
	State *GameState `json:"state"`
}

// gameOverMessage 比赛结束：公布胜者，随后即是新局的快照
type gameOverMessage struct {
	Type   string `json:"type"`
	Winner Role   `json:"winner"`
}

func marshalAssigned(role Role) []byte {
	typ := msgPlayerAssigned
	if role == RoleSpectator {
		typ = msgSpectator
	}
	b, _ := json.Marshal(assignedMessage{Type: typ, Role: role})
	return b
}

func marshalState(typ string, s *GameState) []byte {
	b, _ := json.Marshal(stateMessage{Type: typ, State: s})
	return b
}

func marshalGameOver(winner Role) []byte {
	b, _ := json.Marshal(gameOverMessage{Type: msgGameOver, Winner: winner})
	return b
}
