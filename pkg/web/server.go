package web

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
	"github.com/lk2023060901/xdooria-rotation/pkg/web/middleware"
)

// Option 服务选项
type Option func(*Server)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.Named("web")
		}
	}
}

// Server Web 服务
type Server struct {
	config *Config
	engine *gin.Engine
	logger logger.Logger

	httpServer *http.Server
	listener   net.Listener
	running    atomic.Bool
}

// NewServer 创建 Web 服务
func NewServer(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		logger: logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(middleware.Logger(s.logger), middleware.Recovery(s.logger))
	if cfg.EnableCORS {
		engine.Use(middleware.CORS())
	}
	if cfg.RequestsPerSecond > 0 {
		engine.Use(middleware.RateLimit(cfg.RequestsPerSecond, cfg.Burst, func(c *gin.Context) {
			AbortWithError(c, http.StatusTooManyRequests, CodeTooMany, "too many requests")
		}))
	}
	s.engine = engine

	return s, nil
}

// Router 返回 gin 引擎，用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr 实际监听的地址，未启动时为空
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start 开始监听
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.running.Store(false)
		return errors.Wrapf(err, "failed to listen on %s", s.config.Addr)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server stopped", "error", err)
		}
	}()

	s.logger.Info("web server listening", "addr", s.Addr())
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown web server")
	}
	s.logger.Info("web server stopped")
	return nil
}
