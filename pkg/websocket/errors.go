package websocket

import "github.com/cockroachdb/errors"

var (
	// 配置错误
	ErrInvalidConfig = errors.New("websocket: invalid config")

	// 服务端错误
	ErrServerRunning = errors.New("websocket: server already running")
	ErrServerClosed  = errors.New("websocket: server closed")
	ErrTooManyConns  = errors.New("websocket: too many connections")
	ErrDuplicatePath = errors.New("websocket: duplicate handler path")

	// 连接错误
	ErrConnectionClosed = errors.New("websocket: connection closed")
)
