//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/sim"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/app"
	"github.com/lk2023060901/xdooria-rotation/pkg/config"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

func InitApp(cfg *Config, mgr config.Manager, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,

		// 2. 具名日志
		provideNamedLoggers,

		// 3. 模拟世界
		provideWorld,
		wire.Bind(new(world.Game), new(*sim.World)),

		// 4. 循环设置与驱散表
		provideSettings,
		provideDispels,

		// 5. Prometheus 客户端与循环指标
		providePrometheus,
		provideMetrics,

		// 6. 故障上报
		provideReporter,

		// 7. 循环注册表与依赖
		provideFeed,
		provideRegistry,
		provideDeps,

		// 8. 帧驱动与当前循环
		provideDriver,
		provideBehavior,

		// 9. 桥接与控制接口
		provideBridge,
		provideControl,

		// 10. 组装与应用配置
		provideAppOptions,
		provideAppComponents,
		app.InitApp,
	))
}
