package server

import "math/rand"

// 棋盘与实体尺寸（像素），与客户端渲染约定一致，编译期常量
const (
	BoardWidth   = 800.0
	BoardHeight  = 600.0
	PaddleWidth  = 20.0
	PaddleHeight = 100.0
	BallSize     = 15.0

	// InitialSpeed 发球速度（像素/Tick）
	InitialSpeed = 5.0
	// DefaultWinScore 默认胜利分数
	DefaultWinScore = 10
	// DefaultHitAccel 每次击中球拍后的加速系数，逐渐加快对拉节奏
	DefaultHitAccel = 1.1

	// PaddleMaxY 球拍纵向偏移上限
	PaddleMaxY = BoardHeight - PaddleHeight
)

// Ball 球的位置与速度（权威状态，广播原样下发）
type Ball struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Paddles 双方球拍的纵向偏移；横向位置由所在侧固定
type Paddles struct {
	P1 float64 `json:"p1"`
	P2 float64 `json:"p2"`
}

// Scores 比分，匹配内单调不减，换局时整体归零
type Scores struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// GameState 单个房间的权威对局状态，协议内外共用同一形状
type GameState struct {
	Ball    Ball    `json:"ball"`
	Paddles Paddles `json:"paddles"`
	Scores  Scores  `json:"scores"`
	Active  bool    `json:"active"`
}

// NewGameState 初始状态：球居中、双拍居中、零比分；等待第二名玩家前不推进
func NewGameState() *GameState {
	return &GameState{
		Ball:    Ball{X: BoardWidth / 2, Y: BoardHeight / 2, VX: InitialSpeed, VY: InitialSpeed},
		Paddles: Paddles{P1: PaddleMaxY / 2, P2: PaddleMaxY / 2},
		Scores:  Scores{},
		Active:  false,
	}
}

// Advance 推进一个 Tick：积分运动 → 上下墙反弹 → 球拍碰撞 → 得分判定。
// Active=false 时状态保持冻结。accel 为击拍加速系数。返回本 Tick 的得分方（若有）。
// 碰撞只看本 Tick 的球拍位置，不做亚 Tick 插值；高速球可能穿拍，属接受行为。
func Advance(s *GameState, accel float64, rng *rand.Rand) (scorer Role, scored bool) {
	if !s.Active {
		return "", false
	}

	s.Ball.X += s.Ball.VX
	s.Ball.Y += s.Ball.VY

	// 上下墙：只翻转速度符号，不做位置钳制（单次翻转足够）
	if s.Ball.Y <= 0 || s.Ball.Y >= BoardHeight-BallSize {
		s.Ball.VY = -s.Ball.VY
	}

	// 左拍：球向左运动且越过拍面、纵向范围与拍体重叠时反弹并加速
	if s.Ball.VX < 0 && s.Ball.X <= PaddleWidth &&
		s.Ball.Y+BallSize >= s.Paddles.P1 && s.Ball.Y <= s.Paddles.P1+PaddleHeight {
		s.Ball.VX = -s.Ball.VX * accel
	}

	// 右拍：对称判定
	if s.Ball.VX > 0 && s.Ball.X+BallSize >= BoardWidth-PaddleWidth &&
		s.Ball.Y+BallSize >= s.Paddles.P2 && s.Ball.Y <= s.Paddles.P2+PaddleHeight {
		s.Ball.VX = -s.Ball.VX * accel
	}

	// 得分：球穿出左界记 p2，穿出右界记 p1，随后居中重新发球
	if s.Ball.X <= 0 {
		s.Scores.P2++
		resetBall(s, RoleP1, rng)
		return RoleP2, true
	}
	if s.Ball.X >= BoardWidth-BallSize {
		s.Scores.P1++
		resetBall(s, RoleP2, rng)
		return RoleP1, true
	}
	return "", false
}

// resetBall 球回中线并重新发球：横向朝失分方（toward），纵向在 ±InitialSpeed 内均匀随机
func resetBall(s *GameState, toward Role, rng *rand.Rand) {
	vx := InitialSpeed
	if toward == RoleP1 {
		vx = -InitialSpeed
	}
	s.Ball = Ball{
		X:  BoardWidth / 2,
		Y:  BoardHeight / 2,
		VX: vx,
		VY: (rng.Float64()*2 - 1) * InitialSpeed,
	}
}

// ResetMatch 原地开新一局：比分清零、球回中、双拍居中；Active 保持不变
func ResetMatch(s *GameState, rng *rand.Rand) {
	active := s.Active
	*s = *NewGameState()
	s.Active = active
	// 新局首发方向随机（抛硬币）
	if rng.Intn(2) == 0 {
		s.Ball.VX = -s.Ball.VX
	}
}

// ClampPaddleY 将球拍意图钳制到合法区间，对任意输入都封闭
func ClampPaddleY(y float64) float64 {
	if y < 0 {
		return 0
	}
	if y > PaddleMaxY {
		return PaddleMaxY
	}
	return y
}
