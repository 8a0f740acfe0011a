package main

import (
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/deathknight"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/druid"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/evoker"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/hekili"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/bridge"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/control"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/data"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/driver"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/metrics"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/sim"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/app"
	"github.com/lk2023060901/xdooria-rotation/pkg/config"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
	"github.com/lk2023060901/xdooria-rotation/pkg/prometheus"
	"github.com/lk2023060901/xdooria-rotation/pkg/sentry"
)

const defaultScenario = "scenario.yaml"

// provideWorld 从场景文件构建模拟世界
func provideWorld(cfg *Config) (*sim.World, error) {
	path := cfg.Scenario
	if path == "" {
		path = defaultScenario
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(app.GetConfigPath()), path)
	}

	sc, err := sim.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return sc.Build()
}

// provideSettings 循环设置存储，配置文件变化时自动刷新
func provideSettings(mgr config.Manager, l logger.Logger) (*settings.Store, error) {
	store := settings.NewStore(mgr, l)
	if err := store.Watch(); err != nil {
		return nil, errors.Wrap(err, "failed to watch settings")
	}
	return store, nil
}

func provideDispels(cfg *Config) (*data.DispelTable, error) {
	return data.NewDispelTable(&cfg.Dispels)
}

// providePrometheus 提供 Prometheus 客户端
func providePrometheus(cfg *Config, l logger.Logger) (*prometheus.Client, error) {
	promCfg, err := config.MergeConfig(prometheus.DefaultConfig(), &cfg.Prometheus)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge prometheus config")
	}
	return prometheus.New(promCfg, prometheus.WithLogger(l))
}

// provideMetrics 创建循环指标并注册到 Prometheus
func provideMetrics(cfg *Config, client *prometheus.Client) (*metrics.RotationMetrics, error) {
	m, err := metrics.New(&cfg.Metrics)
	if err != nil {
		return nil, err
	}
	if err := client.Register(m.Collectors()...); err != nil {
		return nil, errors.Wrap(err, "failed to register rotation metrics")
	}
	return m, nil
}

// provideReporter 配置了 DSN 时创建 Sentry 上报，否则返回 nil
func provideReporter(cfg *Config, l logger.Logger) (driver.Reporter, func(), error) {
	if cfg.Sentry.DSN == "" {
		l.Info("sentry disabled, node faults are only logged")
		return nil, func() {}, nil
	}

	sentryCfg, err := config.MergeConfig(sentry.DefaultConfig(), &cfg.Sentry)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to merge sentry config")
	}
	client, err := sentry.New(sentryCfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("failed to close sentry client", "error", err)
		}
	}, nil
}

func provideFeed(l logger.Logger) *hekili.Feed {
	return hekili.NewFeed(l)
}

// provideRegistry 注册所有循环
func provideRegistry(feed *hekili.Feed) *behavior.Registry {
	reg := behavior.NewRegistry()
	deathknight.Register(reg)
	evoker.Register(reg)
	druid.Register(reg)
	hekili.Register(reg, feed)
	return reg
}

func provideDeps(
	game world.Game,
	store *settings.Store,
	l logger.Logger,
	m *metrics.RotationMetrics,
	dispels *data.DispelTable,
) behavior.Deps {
	return behavior.Deps{
		Game:     game,
		Settings: store,
		Logger:   l,
		Observer: m,
		Dispels:  dispels,
	}
}

// provideNamedLoggers 按 loggers 配置创建具名日志，组件据此使用独立的级别与输出
func provideNamedLoggers(cfg *Config) (*app.LoggerRegistry, func(), error) {
	reg := app.NewLoggerRegistry()
	if err := reg.InitLoggers(cfg.Loggers); err != nil {
		return nil, nil, err
	}
	return reg, reg.SyncAll, nil
}

// provideDriver 创建帧驱动，每帧先按真实流逝时间推进模拟世界
// 配置了 loggers.driver 时使用该日志
func provideDriver(
	cfg *Config,
	w *sim.World,
	l logger.Logger,
	loggers *app.LoggerRegistry,
	m *metrics.RotationMetrics,
	r driver.Reporter,
) (*driver.Driver, error) {
	last := time.Now()
	advance := func() {
		now := time.Now()
		w.Advance(now.Sub(last))
		last = now
	}

	return driver.New(&cfg.Driver,
		driver.WithLogger(loggers.GetOr("driver", l)),
		driver.WithRecorder(m),
		driver.WithReporter(r),
		driver.WithFrameHook(advance),
	)
}

// provideBehavior 按配置选择循环并激活
func provideBehavior(d *driver.Driver, reg *behavior.Registry, deps behavior.Deps) (behavior.Behavior, error) {
	b, err := driver.Resolve(reg, d.Config(), deps)
	if err != nil {
		return nil, err
	}
	if err := d.Activate(b); err != nil {
		return nil, err
	}
	return b, nil
}

// provideBridge 未启用时返回 nil
func provideBridge(
	cfg *Config,
	feed *hekili.Feed,
	d *driver.Driver,
	m *metrics.RotationMetrics,
	l logger.Logger,
	loggers *app.LoggerRegistry,
) (*bridge.Bridge, error) {
	if !cfg.Bridge.Enabled {
		return nil, nil
	}
	return bridge.New(&cfg.Bridge, feed, d, bridge.WithLogger(loggers.GetOr("bridge", l)), bridge.WithRecorder(m))
}

// provideControl 未启用时返回 nil
func provideControl(
	cfg *Config,
	d *driver.Driver,
	reg *behavior.Registry,
	store *settings.Store,
	feed *hekili.Feed,
	l logger.Logger,
	loggers *app.LoggerRegistry,
) (*control.Server, error) {
	if !cfg.Control.Enabled {
		return nil, nil
	}
	return control.New(&cfg.Control, d, reg, store, feed, control.WithLogger(loggers.GetOr("control", l)))
}

func provideAppOptions(cfg *Config, l logger.Logger, loggers *app.LoggerRegistry) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
		app.WithLoggerRegistry(loggers),
		app.WithStopTimeout(cfg.StopTimeout),
	}
}

func provideAppComponents(
	baseApp *app.BaseApp,
	d *driver.Driver,
	active behavior.Behavior,
	br *bridge.Bridge,
	ctl *control.Server,
	promClient *prometheus.Client,
	store *settings.Store,
) app.AppComponents {
	baseApp.AppLogger().Info("rotation ready",
		"behavior", active.Name(),
		"specialization", string(active.Specialization()),
		"settings", len(store.Options()),
		"bridge", br != nil,
		"control", ctl != nil,
	)

	servers := []app.Server{d}
	if br != nil {
		servers = append(servers, br)
	}
	if ctl != nil {
		servers = append(servers, ctl)
	}

	return app.AppComponents{
		Servers: servers,
		Closers: []app.Closer{
			promClient,
		},
	}
}
