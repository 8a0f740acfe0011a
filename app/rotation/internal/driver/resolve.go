package driver

import (
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
)

// Resolve 按配置从注册表选择循环
// 指定了 Behavior 名称时按名称创建，否则按专精与场景选择
func Resolve(reg *behavior.Registry, cfg *Config, deps behavior.Deps) (behavior.Behavior, error) {
	if cfg.Behavior != "" {
		return reg.New(cfg.Behavior, deps)
	}

	ctx, ok := behavior.ParseContext(cfg.Context)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidConfig, "context %q", cfg.Context)
	}
	spec := behavior.Specialization(cfg.Specialization)
	if spec == "" {
		spec = behavior.SpecAll
	}
	return reg.Resolve(spec, ctx, deps)
}
