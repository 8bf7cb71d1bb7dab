package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	maxFrameSize = 4096
)

// ClientConn 单个 WebSocket 连接的发送端包装：
// 带缓冲发送队列 + 独立写协程，入队非阻塞、队满丢弃，绝不拖慢 Tick。
type ClientConn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClientConn 包装底层连接并分配发送队列
func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 非阻塞入队；队满或连接已关闭时返回 false（消息被丢弃）
func (c *ClientConn) Enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close 关闭发送队列与底层连接，幂等
func (c *ClientConn) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// writePump 独立写协程：队列消息逐帧写出，定期 Ping 探活
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Gateway WebSocket 接入层：升级连接、解析协议消息、联动房间注册表
type Gateway struct {
	rm       *RoomManager
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

// NewGateway 创建接入层
func NewGateway(rm *RoomManager, log *zap.SugaredLogger) *Gateway {
	return &Gateway{
		rm:  rm,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 演示环境放开来源检查
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS 处理 /ws 接入；房间绑定通过首条 join 消息完成
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnf("upgrade failed: %v", err)
		return
	}

	sid := SessionID(uuid.NewString())
	conn := NewClientConn(ws)
	go conn.writePump()
	go g.readPump(conn, sid)
}

// readPump 读取并分发入站消息。join 前的 paddleMove 一律丢弃；
// 畸形载荷跳过本条继续读，任何一条消息都不能中断循环或影响 Tick。
func (g *Gateway) readPump(c *ClientConn, sid SessionID) {
	var room *Room

	defer func() {
		if room != nil {
			room.Leave(sid)
		}
		c.Close()
	}()

	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debugf("session %s read error: %v", sid, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "join":
			if room != nil {
				// 已绑定的连接不允许换房
				continue
			}
			roomID := msg.RoomID
			if roomID == "" {
				roomID = DefaultRoomID
			}
			room = g.rm.GetOrCreateRoom(roomID)
			role := room.Join(sid, c)
			g.log.Infof("session %s joined room %s as %s", sid, roomID, role)
		case "paddleMove":
			if room == nil {
				continue
			}
			room.ApplyPaddleMove(sid, msg.Y)
		default:
			// 未知消息类型：忽略
		}
	}
}

// DefaultRoomID join 未携带房间号时的落点
const DefaultRoomID = "room-1"
