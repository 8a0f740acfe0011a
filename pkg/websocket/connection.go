package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection WebSocket 连接封装
// 读取只在所属的处理 goroutine 中进行，写入由 mu 串行化
type Connection struct {
	id   string
	path string
	conn *websocket.Conn

	writeTimeout time.Duration

	mu        sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeCh   chan struct{}

	remoteAddr  string
	connectedAt time.Time
}

func newConnection(conn *websocket.Conn, path string, writeTimeout time.Duration) *Connection {
	return &Connection{
		id:           uuid.New().String(),
		path:         path,
		conn:         conn,
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		remoteAddr:   conn.RemoteAddr().String(),
		connectedAt:  time.Now(),
	}
}

// ID 返回连接 ID
func (c *Connection) ID() string {
	return c.id
}

// Path 连接所属的处理路径
func (c *Connection) Path() string {
	return c.path
}

// RemoteAddr 返回远程地址
func (c *Connection) RemoteAddr() string {
	return c.remoteAddr
}

// ConnectedAt 返回连接时间
func (c *Connection) ConnectedAt() time.Time {
	return c.connectedAt
}

// IsClosed 检查连接是否已关闭
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// SendText 发送文本消息
func (c *Connection) SendText(text string) error {
	return c.write(websocket.TextMessage, []byte(text))
}

// Ping 发送 Ping
func (c *Connection) Ping() error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *Connection) write(kind int, data []byte) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteMessage(kind, data)
}

// Close 发送关闭帧并关闭底层连接
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)

		c.mu.Lock()
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.mu.Unlock()

		err = c.conn.Close()
	})
	return err
}
