package app

import (
	"github.com/google/wire"
)

// AppComponents 由 Wire 注入的服务与资源
// Servers 按顺序启动，Closers 在关闭时逆序释放
type AppComponents struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 基础应用的 Wire 提供者
var ProviderSet = wire.NewSet(
	NewBaseApp,
)

// InitApp 把组件挂到 BaseApp 上
func InitApp(app *BaseApp, comps AppComponents) Application {
	app.AppendServer(comps.Servers...)
	app.AppendCloser(comps.Closers...)
	return app
}
