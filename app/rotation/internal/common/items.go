package common

import (
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

// AnyTrinket 依次尝试两个饰品槽位
const AnyTrinket = 0

var trinketSlots = []int{world.SlotTrinket1, world.SlotTrinket2}

func pick(sel spell.TargetSelector) world.Unit {
	if sel == nil {
		return nil
	}
	return sel()
}

// UseEquippedItem 按名称使用已装备的物品
// 物品不存在、冷却中、充能耗尽或已过期时返回 Failure
func (c *Common) UseEquippedItem(name string, target spell.TargetSelector) bt.Node {
	return bt.NewAction("use "+name, func() bt.Status {
		item, ok := c.game.EquippedByName(name)
		if !ok || !item.Usable(c.game.Now()) {
			return bt.StatusFailure
		}
		if err := c.game.UseItem(item.Slot, pick(target)); err != nil {
			c.log.Debug("use item failed", "item", name, "error", err)
			return bt.StatusFailure
		}
		c.log.Info("used equipped item", "item", name)
		return bt.StatusSuccess
	})
}

// UseTrinket 使用指定槽位的饰品，slot 为 AnyTrinket 时先 12 后 13
func (c *Common) UseTrinket(slot int, target spell.TargetSelector, cond bt.Condition) bt.Node {
	slots := trinketSlots
	if slot != AnyTrinket {
		slots = []int{slot}
	}

	return bt.NewAction(fmt.Sprintf("use trinket %v", slots), func() bt.Status {
		if cond != nil && !cond() {
			return bt.StatusFailure
		}
		for _, s := range slots {
			item, ok := c.trinket(s)
			if !ok || !item.Usable(c.game.Now()) {
				continue
			}
			if err := c.game.UseItem(s, pick(target)); err != nil {
				c.log.Debug("use trinket failed", "slot", s, "item", item.Name, "error", err)
				continue
			}
			c.log.Info("used trinket", "slot", s, "item", item.Name)
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	})
}

// UseTrinkets 使用任一可用饰品
func (c *Common) UseTrinkets(target spell.TargetSelector, cond bt.Condition) bt.Node {
	return c.UseTrinket(AnyTrinket, target, cond)
}

// TrinketReady 饰品是否可用，槽位无饰品或饰品无主动效果时为 false
func (c *Common) TrinketReady(slot int) bool {
	item, ok := c.trinket(slot)
	return ok && item.Usable(c.game.Now())
}

// TrinketCooldownRemaining 饰品冷却剩余时间，不存在时为 0
func (c *Common) TrinketCooldownRemaining(slot int) time.Duration {
	item, ok := c.trinket(slot)
	if !ok {
		return 0
	}
	return item.Cooldown
}

func (c *Common) trinket(slot int) (world.Item, bool) {
	if slot != world.SlotTrinket1 && slot != world.SlotTrinket2 {
		c.log.Warn("invalid trinket slot", "slot", slot)
		return world.Item{}, false
	}
	item, ok := c.game.Equipped(slot)
	if !ok || !item.HasUse {
		return world.Item{}, false
	}
	return item, true
}
