package common

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

// HealRadius 治疗循环选择友方目标的半径
const HealRadius = 40

// Attackers 半径内以 u 为目标的敌人
func Attackers(g world.World, u world.Unit, radius float64) []world.Unit {
	if u == nil {
		return nil
	}
	var out []world.Unit
	for _, e := range g.Enemies(radius) {
		if e.TargetGUID() == u.GUID() {
			out = append(out, e)
		}
	}
	return out
}

// Tanks 正被敌人攻击的友方单位，顺序同 Friends
func Tanks(g world.World, radius float64) []world.Unit {
	targeted := make(map[world.GUID]bool)
	for _, e := range g.Enemies(radius) {
		if tg := e.TargetGUID(); tg != 0 {
			targeted[tg] = true
		}
	}
	var out []world.Unit
	for _, u := range g.Friends(radius) {
		if targeted[u.GUID()] {
			out = append(out, u)
		}
	}
	return out
}

// Healers 半径内的友方治疗
func Healers(g world.World, radius float64) []world.Unit {
	var out []world.Unit
	for _, u := range g.Friends(radius) {
		if u.IsHealer() {
			out = append(out, u)
		}
	}
	return out
}

// FirstFriend 按血量从低到高第一个满足 pred 的友方单位
func FirstFriend(g world.World, radius float64, pred func(world.Unit) bool) world.Unit {
	for _, u := range g.Friends(radius) {
		if pred(u) {
			return u
		}
	}
	return nil
}

// BestTarget 当前目标有效时返回当前目标，否则返回最近的敌人
func BestTarget(g world.World, radius float64) world.Unit {
	if t := g.Target(); ValidTarget(t) {
		return t
	}
	if enemies := g.Enemies(radius); len(enemies) > 0 {
		return enemies[0]
	}
	return nil
}
