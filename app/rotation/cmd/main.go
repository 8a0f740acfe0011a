package main

import (
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/bridge"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/control"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/data"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/driver"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/metrics"
	"github.com/lk2023060901/xdooria-rotation/pkg/app"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
	"github.com/lk2023060901/xdooria-rotation/pkg/prometheus"
	"github.com/lk2023060901/xdooria-rotation/pkg/sentry"
)

// Config 定义 Rotation 服务的完整配置结构
// 循环设置项位于 settings 节点下，由 settings.Store 直接读取并热更新
type Config struct {
	Log     logger.Config             `mapstructure:"log"`
	Loggers map[string]*logger.Config `mapstructure:"loggers"`

	// 停止所有服务的最长等待时间
	StopTimeout time.Duration `mapstructure:"stop_timeout"`

	// 帧驱动配置
	Driver driver.Config `mapstructure:"driver"`

	// 模拟场景文件，相对路径基于配置文件所在目录
	Scenario string `mapstructure:"scenario"`

	// 驱散优先级覆盖
	Dispels data.DispelConfig `mapstructure:"dispels"`

	// Hekili 推荐与开关桥接
	Bridge bridge.Config `mapstructure:"bridge"`

	// 本地 HTTP 控制接口
	Control control.Config `mapstructure:"control"`

	// Prometheus 配置
	Prometheus prometheus.Config `mapstructure:"prometheus"`

	// 指标配置
	Metrics metrics.Config `mapstructure:"metrics"`

	// Sentry 配置，DSN 为空时不上报
	Sentry sentry.Config `mapstructure:"sentry"`
}

func main() {
	var cfg Config

	// 1. 加载配置
	mgr, err := app.LoadManager(&cfg)
	if err != nil {
		panic(err)
	}

	// 2. 初始化主日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}

	// 3. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, mgr, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行直到收到退出信号
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
