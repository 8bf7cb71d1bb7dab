package server

// SessionID 连接的唯一标识（UUID 字符串），接入时生成，生命周期内不变
type SessionID string

// Role 连接在房间内的角色；接入时分配，断开前不重新指派
type Role string

const (
	RoleP1        Role = "p1"
	RoleP2        Role = "p2"
	RoleSpectator Role = "spectator"
)

// Playing 是否为持拍角色（观战者收广播但意图被静默忽略）
func (r Role) Playing() bool {
	return r == RoleP1 || r == RoleP2
}
