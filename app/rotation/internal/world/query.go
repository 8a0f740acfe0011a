package world

import "time"

// FindAura 查找单位身上的光环
func FindAura(u Unit, id AuraID) (Aura, bool) {
	if u == nil {
		return Aura{}, false
	}
	for _, a := range u.Auras() {
		if a.ID == id {
			return a, true
		}
	}
	return Aura{}, false
}

// HasAura 单位身上是否有该光环
func HasAura(u Unit, id AuraID) bool {
	_, ok := FindAura(u, id)
	return ok
}

// FindAuraFrom 查找 caster 施加的光环
func FindAuraFrom(u Unit, id AuraID, caster GUID) (Aura, bool) {
	if u == nil {
		return Aura{}, false
	}
	for _, a := range u.Auras() {
		if a.ID == id && a.Caster == caster {
			return a, true
		}
	}
	return Aura{}, false
}

// HasAuraFrom 单位身上是否有 caster 施加的光环
func HasAuraFrom(u Unit, id AuraID, caster GUID) bool {
	_, ok := FindAuraFrom(u, id, caster)
	return ok
}

// StacksFrom caster 施加的光环层数
func StacksFrom(u Unit, id AuraID, caster GUID) int {
	a, ok := FindAuraFrom(u, id, caster)
	if !ok {
		return 0
	}
	return a.Stacks
}

// AuraStacks 光环层数，没有时为 0
func AuraStacks(u Unit, id AuraID) int {
	a, ok := FindAura(u, id)
	if !ok {
		return 0
	}
	return a.Stacks
}

// AuraRemaining 光环剩余时间，没有时为 0
func AuraRemaining(u Unit, id AuraID) time.Duration {
	a, ok := FindAura(u, id)
	if !ok {
		return 0
	}
	return a.Remaining
}

// Distance 两个单位之间的距离
func Distance(a, b Unit) float64 {
	return a.Position().Distance(b.Position())
}

// Within 筛选距离 center 不超过 radius 的单位
func Within(units []Unit, center Unit, radius float64) []Unit {
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		if Distance(center, u) <= radius {
			out = append(out, u)
		}
	}
	return out
}

// CountBelow 血量低于 pct 的存活单位数量
func CountBelow(units []Unit, pct float64) int {
	n := 0
	for _, u := range units {
		if !u.Dead() && u.HealthPct() < pct {
			n++
		}
	}
	return n
}

// IsCasting 单位是否在施法或引导
func IsCasting(u Unit) bool {
	if u == nil {
		return false
	}
	_, ok := u.Casting()
	return ok
}
