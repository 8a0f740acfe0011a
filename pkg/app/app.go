package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// ErrAppAlreadyRunning Run 被重复调用
var ErrAppAlreadyRunning = errors.New("app: already running")

// Application 进程级生命周期
type Application interface {
	Run() error
	Shutdown() error
	Logger(name string) logger.Logger
	AppLogger() logger.Logger
}

// Server 随应用启停的服务，例如帧驱动与 websocket 桥接
type Server interface {
	Start() error
	Stop() error
}

// Closer 所有服务停止后释放的资源
type Closer interface {
	Close() error
}

// BaseApp Application 的默认实现
// 服务按添加顺序启动，停止时并发进行，资源按添加顺序的逆序释放
type BaseApp struct {
	opts     Options
	log      logger.Logger
	registry *LoggerRegistry

	mu      sync.Mutex
	servers []Server
	closers []Closer

	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	stopped atomic.Bool
}

// NewBaseApp 创建应用
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Loggers == nil {
		o.Loggers = NewLoggerRegistry()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BaseApp{
		opts:     o,
		log:      o.Logger.Named(o.Name),
		registry: o.Loggers,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// AppLogger 主日志
func (a *BaseApp) AppLogger() logger.Logger { return a.log }

// Logger 具名日志，未配置时返回 nil
func (a *BaseApp) Logger(name string) logger.Logger { return a.registry.Get(name) }

// Context 在 Stop 或 Shutdown 后取消
func (a *BaseApp) Context() context.Context { return a.ctx }

// AppendServer 添加服务，须在 Run 之前调用
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 添加资源，须在 Run 之前调用
func (a *BaseApp) AppendCloser(c ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c...)
}

// Run 启动所有服务并阻塞，直到收到 SIGINT、SIGTERM 或 Stop 被调用
func (a *BaseApp) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}
	info := GetInfo()
	a.log.Info("starting",
		"id", a.opts.ID,
		"version", info.Version,
		"commit", info.GitCommit,
		"go", info.GoVersion,
		"servers", len(a.servers),
		"loggers", a.registry.Names(),
	)

	if err := a.startServers(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		a.log.Info("signal received", "signal", s.String())
	case <-a.ctx.Done():
		a.log.Info("stop requested")
	}
	return a.Shutdown()
}

// startServers 任一服务启动失败时逆序停止已启动的服务
func (a *BaseApp) startServers() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, srv := range a.servers {
		if err := srv.Start(); err != nil {
			a.log.Error("server failed to start", "index", i, "error", err)
			for j := i - 1; j >= 0; j-- {
				if stopErr := a.servers[j].Stop(); stopErr != nil {
					a.log.Warn("rollback stop failed", "index", j, "error", stopErr)
				}
			}
			return errors.Wrapf(err, "failed to start server %d", i)
		}
	}
	return nil
}

// Stop 请求 Run 返回，不等待
func (a *BaseApp) Stop() {
	a.cancel()
}

// Shutdown 停止服务并释放资源，可重复调用
func (a *BaseApp) Shutdown() error {
	if !a.stopped.CompareAndSwap(false, true) {
		return nil
	}
	a.cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.stopServers(a.opts.StopTimeout) {
		a.log.Warn("servers did not stop in time", "timeout", a.opts.StopTimeout)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Error("close failed", "index", i, "error", err)
		}
	}

	a.log.Info("stopped")
	a.registry.SyncAll()
	_ = a.log.Sync()
	return nil
}

func (a *BaseApp) stopServers(timeout time.Duration) bool {
	var wg sync.WaitGroup
	for i, srv := range a.servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Stop(); err != nil {
				a.log.Error("server failed to stop", "index", i, "error", err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
