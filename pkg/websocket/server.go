package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// HandlerFunc 处理一条文本消息，返回的错误只记录日志，不会断开连接
type HandlerFunc func(conn *Connection, text string) error

// ServerOption 服务端选项
type ServerOption func(*Server)

// WithLogger 设置日志
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l.Named("websocket")
		}
	}
}

// Server WebSocket 服务端
type Server struct {
	config   *ServerConfig
	upgrader *websocket.Upgrader
	logger   logger.Logger
	mux      *http.ServeMux
	paths    map[string]struct{}

	httpServer *http.Server
	listener   net.Listener

	// 状态
	mu      sync.Mutex
	conns   map[string]*Connection
	running atomic.Bool
	closed  bool
	wg      sync.WaitGroup
}

// NewServer 创建服务端
func NewServer(cfg *ServerConfig, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		logger: logger.NewNoop(),
		mux:    http.NewServeMux(),
		paths:  make(map[string]struct{}),
		conns:  make(map[string]*Connection),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = &websocket.Upgrader{
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		HandshakeTimeout: cfg.HandshakeTimeout,
		CheckOrigin:      cfg.CheckOrigin,
	}

	// 如果没有设置 CheckOrigin，只接受不带 Origin 的本地客户端
	if s.upgrader.CheckOrigin == nil {
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return r.Header.Get("Origin") == ""
		}
	}

	return s, nil
}

// Handle 注册路径处理器，必须在 Start 之前调用
func (s *Server) Handle(path string, h HandlerFunc) error {
	if _, ok := s.paths[path]; ok {
		return errors.Wrapf(ErrDuplicatePath, "%q", path)
	}
	s.paths[path] = struct{}{}
	s.mux.Handle(path, s.upgradeHandler(path, h))
	return nil
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr 实际监听的地址，未启动时为空
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Count 当前连接数
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Start 开始监听
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerRunning
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.running.Store(false)
		return errors.Wrapf(err, "failed to listen on %s", s.config.Addr)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: s.config.HandshakeTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("websocket server stopped", "error", err)
		}
	}()

	s.logger.Info("websocket server listening", "addr", s.Addr())
	return nil
}

// Stop 停止监听并关闭所有连接
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conns := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}

	// Shutdown 不会等待已升级的连接
	for _, c := range conns {
		c.Close()
	}
	s.wg.Wait()

	s.running.Store(false)
	s.logger.Info("websocket server stopped")
	return err
}

// upgradeHandler 升级连接并在当前 goroutine 内阻塞读取
func (s *Server) upgradeHandler(path string, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.admit(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		ws, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		conn := newConnection(ws, path, s.config.WriteTimeout)
		if err := s.add(conn); err != nil {
			conn.Close()
			return
		}
		defer s.remove(conn)

		s.logger.Debug("websocket connected", "conn_id", conn.ID(), "path", path, "remote_addr", conn.RemoteAddr())
		s.readLoop(conn, h)
	}
}

func (s *Server) admit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	if s.config.MaxConnections > 0 && len(s.conns) >= s.config.MaxConnections {
		return ErrTooManyConns
	}
	return nil
}

func (s *Server) add(conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	s.conns[conn.ID()] = conn
	s.wg.Add(1)
	return nil
}

func (s *Server) remove(conn *Connection) {
	conn.Close()
	s.mu.Lock()
	delete(s.conns, conn.ID())
	s.mu.Unlock()
	s.wg.Done()
	s.logger.Debug("websocket disconnected", "conn_id", conn.ID(), "path", conn.Path())
}

func (s *Server) readLoop(conn *Connection, h HandlerFunc) {
	ws := conn.conn
	ws.SetReadLimit(s.config.MaxMessageSize)
	if s.config.PongTimeout > 0 {
		ws.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
		})
	}
	if s.config.PingInterval > 0 {
		go s.pingLoop(conn)
	}

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if !conn.IsClosed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read error", "error", err, "conn_id", conn.ID())
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := h(conn, string(data)); err != nil {
			s.logger.Warn("websocket handler error", "error", err, "conn_id", conn.ID(), "path", conn.Path())
		}
	}
}

// pingLoop Ping 循环
func (s *Server) pingLoop(conn *Connection) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				s.logger.Debug("websocket ping error", "error", err, "conn_id", conn.ID())
				conn.Close()
				return
			}
		case <-conn.closeCh:
			return
		}
	}
}
