package common

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

// MeleeRange 近战距离
const MeleeRange = 5

// BurstToggle 爆发开关的设置项 UID
const BurstToggle = "burst_toggle"

// BurstOption 所有循环共用的爆发开关
var BurstOption = settings.Checkbox(BurstToggle, "Use burst cooldowns", true)

// BurstEnabled 爆发开关是否打开
func BurstEnabled(s *settings.Store) bool {
	return s.Bool(BurstToggle)
}

// InMelee u 是否在 me 的近战距离内
func InMelee(me, u world.Unit) bool {
	return me != nil && u != nil && world.Distance(me, u) <= MeleeRange
}

// EnemyPlayers 半径内的敌方玩家
func EnemyPlayers(g world.World, radius float64) []world.Unit {
	var out []world.Unit
	for _, u := range g.Enemies(radius) {
		if u.IsPlayer() {
			out = append(out, u)
		}
	}
	return out
}
