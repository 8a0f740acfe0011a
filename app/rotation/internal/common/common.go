// Package common 各职业循环共用的等待节点与工具节点
package common

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Common 绑定到一个游戏视图的共用节点工厂
//
// Wait 系列节点在阻塞条件成立时返回 Success，
// 放在根 Selector 的前面可以占住当前帧，使后面的分支不再执行
type Common struct {
	game world.Game
	log  logger.Logger
}

// New 创建 Common
func New(game world.Game, l logger.Logger) *Common {
	if l == nil {
		l = logger.Default()
	}
	return &Common{game: game, log: l.Named("common")}
}

// ValidTarget 目标存在、存活且可攻击
func ValidTarget(u world.Unit) bool {
	return u != nil && !u.Dead() && u.Attackable()
}

func wait(name string, blocked func() bool) bt.Node {
	return bt.NewAction(name, func() bt.Status {
		if blocked() {
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	})
}

// WaitForCastOrChannel 自己正在施法或引导时占住当前帧
func (c *Common) WaitForCastOrChannel() bt.Node {
	return wait("wait for cast or channel", func() bool {
		return world.IsCasting(c.game.Me())
	})
}

// WaitForTarget 没有有效目标时占住当前帧
func (c *Common) WaitForTarget() bt.Node {
	return wait("wait for target", func() bool {
		return !ValidTarget(c.game.Target())
	})
}

// WaitForNotSitting 坐下时占住当前帧
func (c *Common) WaitForNotSitting() bt.Node {
	return wait("wait for not sitting", func() bool {
		return c.game.Me().Sitting()
	})
}

// WaitForNotMounted 骑乘时占住当前帧
func (c *Common) WaitForNotMounted() bt.Node {
	return wait("wait for not mounted", func() bool {
		return c.game.Me().Mounted()
	})
}

// WaitForFacing 没有目标或未面向目标时占住当前帧
func (c *Common) WaitForFacing() bt.Node {
	return wait("wait for facing", func() bool {
		t := c.game.Target()
		return t == nil || !c.game.Me().Facing(t)
	})
}

// WaitForNotWaitingForArenaToStart 竞技场准备阶段占住当前帧
func (c *Common) WaitForNotWaitingForArenaToStart() bt.Node {
	return wait("wait for arena start", func() bool {
		return c.game.Me().ArenaPreparation()
	})
}

// EnsureAutoAttack 自动攻击未开启时对当前目标开启
func (c *Common) EnsureAutoAttack() bt.Node {
	return bt.NewAction("ensure auto attack", func() bt.Status {
		if c.game.Me().AutoAttacking() {
			return bt.StatusFailure
		}
		if err := c.game.StartAttack(c.game.Target()); err != nil {
			c.log.Debug("start attack failed", "error", err)
			return bt.StatusFailure
		}
		return bt.StatusSuccess
	})
}
