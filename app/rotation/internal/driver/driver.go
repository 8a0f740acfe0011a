// Package driver 每帧驱动当前激活循环的行为树
package driver

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"golang.org/x/time/rate"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/config"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Recorder 驱动指标
type Recorder interface {
	RecordTick(behavior string, status bt.Status, d time.Duration)
	RecordOverlap()
	RecordFault(behavior string, err error)
	SetActive(behavior string)
}

// Reporter 故障上报
type Reporter interface {
	Report(err error, tags map[string]string) *sentry.EventID
}

// FrameHook 每帧求值前调用
type FrameHook func()

// Option 驱动选项
type Option func(*Driver)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l.Named("driver")
		}
	}
}

// WithRecorder 设置指标
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithReporter 设置故障上报
func WithReporter(r Reporter) Option {
	return func(d *Driver) {
		d.reporter = r
	}
}

// WithFrameHook 追加帧钩子
func WithFrameHook(h FrameHook) Option {
	return func(d *Driver) {
		if h != nil {
			d.hooks = append(d.hooks, h)
		}
	}
}

type activeTree struct {
	behavior behavior.Behavior
	tree     *bt.Tree
	onFault  bt.FaultHandler
}

// Driver 帧驱动
//
// Step 同一时刻只允许一个调用，重叠的调用直接被拒绝。
// Activate 可以在运行中调用，下一帧起生效
type Driver struct {
	cfg      *Config
	log      logger.Logger
	recorder Recorder
	reporter Reporter
	hooks    []FrameHook
	limiter  *rate.Limiter

	active   atomic.Pointer[activeTree]
	stepping atomic.Bool
	frame    atomic.Uint64

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New 创建驱动
func New(cfg *Config, opts ...Option) (*Driver, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge driver config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:      newCfg,
		log:      logger.NewNoop(),
		recorder: nopRecorder{},
		limiter:  rate.NewLimiter(rate.Limit(newCfg.FaultLogRate), newCfg.FaultLogBurst),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config 驱动配置
func (d *Driver) Config() *Config {
	return d.cfg
}

// Activate 构建循环的行为树并设为当前循环
func (d *Driver) Activate(b behavior.Behavior) error {
	if b == nil {
		return ErrNilBehavior
	}

	name := b.Name()
	onFault := d.faultHandler(name)
	tree, err := bt.NewTree(b.Build(),
		bt.WithName(name),
		bt.WithFaultHandler(onFault),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to build behavior %q", name)
	}

	d.active.Store(&activeTree{behavior: b, tree: tree, onFault: onFault})
	d.recorder.SetActive(name)
	d.log.Info("behavior activated",
		"behavior", name,
		"specialization", string(b.Specialization()),
		"context", b.Context().String(),
	)
	d.log.Debug("behavior tree", "behavior", name, "tree", tree.String())
	return nil
}

// Active 当前激活的循环
func (d *Driver) Active() behavior.Behavior {
	if a := d.active.Load(); a != nil {
		return a.behavior
	}
	return nil
}

// Toggle 把开关请求转给当前循环，循环不支持该开关时返回 ErrUnknownToggle
func (d *Driver) Toggle(name string) error {
	a := d.active.Load()
	if a == nil {
		return ErrNoBehavior
	}
	t, ok := a.behavior.(behavior.Toggler)
	if !ok || !t.Toggle(name) {
		return errors.Wrapf(ErrUnknownToggle, "%q on %q", name, a.tree.Name())
	}
	d.log.Info("toggle requested", "behavior", a.tree.Name(), "toggle", name)
	return nil
}

// Step 推进一帧：执行帧钩子后对当前行为树求值一次
func (d *Driver) Step() (bt.Status, error) {
	if !d.stepping.CompareAndSwap(false, true) {
		d.recorder.RecordOverlap()
		return bt.StatusInvalid, ErrOverlap
	}
	defer d.stepping.Store(false)

	a := d.active.Load()
	if a == nil {
		return bt.StatusInvalid, ErrNoBehavior
	}

	d.frame.Add(1)
	for i, h := range d.hooks {
		d.runHook(i, h, a.onFault)
	}

	start := time.Now()
	status := a.tree.Tick()
	d.recorder.RecordTick(a.tree.Name(), status, time.Since(start))
	return status, nil
}

// runHook 钩子 panic 按节点故障上报，本帧继续求值
func (d *Driver) runHook(i int, h FrameHook, onFault bt.FaultHandler) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Mark(errors.Newf("frame hook %d panicked: %v", i, r), ErrHookPanic)
			onFault("frame_hook["+strconv.Itoa(i)+"]", err)
		}
	}()
	h()
}

// Frame 已求值的帧数
func (d *Driver) Frame() uint64 {
	return d.frame.Load()
}

// Start 启动帧循环
func (d *Driver) Start() error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	d.stopCh = make(chan struct{})
	d.wg.Add(1)
	go d.loop(d.stopCh)

	d.log.Info("driver started", "frame_interval", d.cfg.FrameInterval)
	return nil
}

// Stop 停止帧循环并等待当前帧结束
func (d *Driver) Stop() error {
	if !d.running.CompareAndSwap(true, false) {
		return nil
	}

	close(d.stopCh)
	d.wg.Wait()

	d.log.Info("driver stopped")
	return nil
}

func (d *Driver) loop(stop <-chan struct{}) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := d.Step(); err != nil && !errors.Is(err, ErrNoBehavior) {
				d.log.Debug("frame skipped", "error", err)
			}
		}
	}
}

func (d *Driver) faultHandler(name string) bt.FaultHandler {
	return func(node string, err error) {
		d.recorder.RecordFault(name, err)
		if !d.limiter.Allow() {
			return
		}
		frame := d.frame.Load()
		ctx := logger.WithBehavior(logger.WithFrame(context.Background(), frame), name)
		d.log.ErrorContext(ctx, "behavior tree node fault", "node", node, "error", err)
		if d.reporter != nil {
			d.reporter.Report(err, map[string]string{
				"behavior": name,
				"node":     node,
				"frame":    strconv.FormatUint(frame, 10),
			})
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordTick(string, bt.Status, time.Duration) {}
func (nopRecorder) RecordOverlap()                              {}
func (nopRecorder) RecordFault(string, error)                   {}
func (nopRecorder) SetActive(string)                            {}
