// Package behaviortest 循环测试用的模拟世界与辅助函数
package behaviortest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/sim"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/config"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// World 由 YAML 场景构建模拟世界
func World(t testing.TB, scenario string) *sim.World {
	t.Helper()
	sc, err := sim.ParseScenario([]byte(scenario))
	require.NoError(t, err)
	w, err := sc.Build()
	require.NoError(t, err)
	return w
}

// Settings 由 YAML 配置创建设置存储，content 为空时只使用默认值
func Settings(t testing.TB, content string) *settings.Store {
	t.Helper()
	if content == "" {
		return settings.NewStore(nil, logger.NewNoop())
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	mgr := config.NewManager()
	require.NoError(t, mgr.LoadFile(path))
	return settings.NewStore(mgr, logger.NewNoop())
}

// Deps 构建循环依赖
func Deps(w *sim.World, s *settings.Store) behavior.Deps {
	return behavior.Deps{
		Game:     w,
		Settings: s,
		Logger:   logger.NewNoop(),
	}
}

// Tree 创建循环并构建行为树
func Tree(t testing.TB, f behavior.Factory, deps behavior.Deps) (behavior.Behavior, *bt.Tree) {
	t.Helper()
	b, err := f(deps)
	require.NoError(t, err)
	tree, err := bt.NewTree(b.Build(), bt.WithName(b.Name()), bt.WithFaultHandler(func(node string, err error) {
		t.Errorf("node %q faulted: %v", node, err)
	}))
	require.NoError(t, err)
	return b, tree
}

// Last 最近一次指令的技能名，没有时为空
func Last(w *sim.World) string {
	rec, ok := w.LastCast()
	if !ok {
		return ""
	}
	return rec.Name
}

// Casts 所有指令的技能名
func Casts(w *sim.World) []string {
	var names []string
	for _, c := range w.Casts() {
		names = append(names, c.Name)
	}
	return names
}
