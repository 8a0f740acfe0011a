// Package druid 恢复德鲁伊治疗循环
package druid

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

// Restoration 恢复专精
const Restoration behavior.Specialization = "druid.restoration"

// 运行时开关
const (
	ToggleRamp  = "ramp"
	ToggleBurst = "burst"
)

const (
	auraRejuvenation  world.AuraID = 774
	auraRegrowth      world.AuraID = 8936
	auraWildGrowth    world.AuraID = 48438
	auraLifebloom     world.AuraID = 188550
	auraCenarionWard  world.AuraID = 102351
	auraClearcasting  world.AuraID = 16870
	auraSwiftness     world.AuraID = 132158
	auraBarkskin      world.AuraID = 22812
	auraIronbark      world.AuraID = 102342
	auraUndergrowth   world.AuraID = 392301
	auraMarkOfTheWild world.AuraID = 1126
	auraSunfire       world.AuraID = 164815
	auraMoonfire      world.AuraID = 164812
	auraRake          world.AuraID = 155722
	auraRip           world.AuraID = 1079
	auraCatForm       world.AuraID = 768
	auraBearForm      world.AuraID = 5487
	auraProwl         world.AuraID = 5215
	auraFormLock      world.AuraID = 432031
)

// 设置项 UID
const (
	OptRampSystem    = "resto_ramp_system"
	OptRampDuration  = "resto_ramp_duration"
	OptRampExitPct   = "resto_ramp_exit_pct"
	OptRampExitCount = "resto_ramp_exit_count"

	OptRegrowthPct          = "resto_regrowth_pct"
	OptRegrowthEmergencyPct = "resto_regrowth_emergency_pct"
	OptRejuvenationPct      = "resto_rejuvenation_pct"
	OptWildGrowthPct        = "resto_wild_growth_pct"
	OptWildGrowthMin        = "resto_wild_growth_min"
	OptWildGrowthHealing    = "resto_wild_growth_healing"
	OptWildGrowthHealingPct = "resto_wild_growth_healing_pct"
	OptWildGrowthHealingMin = "resto_wild_growth_healing_min"
	OptSwiftmendPct         = "resto_swiftmend_pct"
	OptNaturesSwiftness     = "resto_natures_swiftness"
	OptNaturesSwiftnessPct  = "resto_natures_swiftness_pct"

	OptLifebloomHealing    = "resto_lifebloom_healing"
	OptLifebloomHealingPct = "resto_lifebloom_healing_pct"
	OptCenarionWard        = "resto_cenarion_ward"
	OptSpreadRejuvenation  = "resto_spread_rejuvenation"
	OptGroveGuardians      = "resto_grove_guardians"
	OptGroveGuardiansPct   = "resto_grove_guardians_pct"
	OptMarkOfTheWild       = "resto_mark_of_the_wild"

	OptConvoke        = "resto_convoke"
	OptConvokePct     = "resto_convoke_pct"
	OptConvokeMin     = "resto_convoke_min"
	OptInnervate      = "resto_innervate"
	OptInnervatePct   = "resto_innervate_pct"
	OptIronbark       = "resto_ironbark"
	OptIronbarkPct    = "resto_ironbark_pct"
	OptBarkskin       = "resto_barkskin"
	OptBarkskinPct    = "resto_barkskin_pct"
	OptRenewal        = "resto_renewal"
	OptRenewalPct     = "resto_renewal_pct"
	OptTranquility    = "resto_tranquility"
	OptTranquilityPct = "resto_tranquility_pct"
	OptTranquilityMin = "resto_tranquility_min"

	OptNaturesCure         = "resto_natures_cure"
	OptIncapacitatingRoar  = "resto_incapacitating_roar"
	OptSkullBash           = "resto_skull_bash"
	OptDPS                 = "resto_dps"
	OptCatWeaving          = "resto_cat_weaving"
	OptCatWeavingPct       = "resto_cat_weaving_pct"
	OptCatExitEnergy       = "resto_cat_exit_energy"
	OptCatEntryEnergy      = "resto_cat_entry_energy"
	OptFormShiftDelay      = "resto_form_shift_delay"
	OptMinCatDuration      = "resto_min_cat_duration"
	OptEmergencyCooldown   = "resto_emergency_cooldown"
	OptHeartOfTheWild      = "resto_heart_of_the_wild"
	OptNaturesVigil        = "resto_natures_vigil"
	OptProwl               = "resto_prowl"
	OptBurstWindow         = "resto_burst_window"
	OptBurstWindowDuration = "resto_burst_window_duration"
)

// Options 恢复循环的设置项
var Options = []settings.Option{
	settings.Checkbox(OptRampSystem, "Enable Ramp System", true),
	settings.Slider(OptRampDuration, "Ramp Cycle Duration (seconds)", 3, 15, 15),
	settings.Slider(OptRampExitPct, "Ramp Emergency Exit Health %", 30, 95, 90),
	settings.Slider(OptRampExitCount, "Ramp Emergency Exit Friend Count", 1, 5, 3),

	settings.Slider(OptRegrowthPct, "Regrowth Health %", 0, 95, 75),
	settings.Slider(OptRegrowthEmergencyPct, "Regrowth Emergency %", 0, 95, 50),
	settings.Slider(OptRejuvenationPct, "Rejuvenation Health %", 0, 100, 90),
	settings.Slider(OptWildGrowthPct, "Wild Growth Health %", 0, 100, 95),
	settings.Slider(OptWildGrowthMin, "Wild Growth Min Targets", 1, 5, 3),
	settings.Checkbox(OptWildGrowthHealing, "Use Wild Growth for Normal Healing", true),
	settings.Slider(OptWildGrowthHealingPct, "Wild Growth Healing Health %", 0, 100, 90),
	settings.Slider(OptWildGrowthHealingMin, "Wild Growth Healing Min Targets", 1, 5, 3),
	settings.Slider(OptSwiftmendPct, "Swiftmend Health %", 0, 90, 65),
	settings.Checkbox(OptNaturesSwiftness, "Use Nature's Swiftness", true),
	settings.Slider(OptNaturesSwiftnessPct, "Nature's Swiftness Health %", 0, 90, 50),

	settings.Checkbox(OptLifebloomHealing, "Use Lifebloom for Normal Healing", true),
	settings.Slider(OptLifebloomHealingPct, "Lifebloom Healing Health %", 0, 95, 90),
	settings.Checkbox(OptCenarionWard, "Use Cenarion Ward", true),
	settings.Checkbox(OptSpreadRejuvenation, "Use Rejuvenation for Normal Healing", true),
	settings.Checkbox(OptGroveGuardians, "Use Grove Guardians", true),
	settings.Slider(OptGroveGuardiansPct, "Grove Guardians Health %", 0, 95, 80),
	settings.Checkbox(OptMarkOfTheWild, "Maintain Mark of the Wild", true),

	settings.Checkbox(OptConvoke, "Use Convoke the Spirits", true),
	settings.Slider(OptConvokePct, "Convoke Health %", 0, 90, 70),
	settings.Slider(OptConvokeMin, "Convoke Min Targets", 1, 5, 3),
	settings.Checkbox(OptInnervate, "Use Innervate", true),
	settings.Slider(OptInnervatePct, "Innervate Mana %", 0, 95, 85),
	settings.Checkbox(OptIronbark, "Use Ironbark", true),
	settings.Slider(OptIronbarkPct, "Ironbark Health %", 0, 95, 65),
	settings.Checkbox(OptBarkskin, "Use Barkskin", true),
	settings.Slider(OptBarkskinPct, "Barkskin Health %", 0, 80, 55),
	settings.Checkbox(OptRenewal, "Use Renewal", true),
	settings.Slider(OptRenewalPct, "Renewal Health %", 0, 60, 30),
	settings.Checkbox(OptTranquility, "Use Tranquility", true),
	settings.Slider(OptTranquilityPct, "Tranquility Health %", 30, 100, 60),
	settings.Slider(OptTranquilityMin, "Tranquility Min Targets", 2, 5, 3),

	settings.Checkbox(OptNaturesCure, "Use Nature's Cure (Dispel)", true),
	settings.Checkbox(OptIncapacitatingRoar, "Use Incapacitating Roar (AoE Interrupt)", true),
	settings.Checkbox(OptSkullBash, "Use Skull Bash (Interrupt)", true),
	settings.Checkbox(OptDPS, "Enable DPS", true),
	settings.Checkbox(OptCatWeaving, "Use Cat Weaving", true),
	settings.Slider(OptCatWeavingPct, "Cat Weaving Health Threshold %", 0, 100, 68),
	settings.Slider(OptCatExitEnergy, "Cat Form Exit Energy Threshold", 0, 100, 8),
	settings.Slider(OptCatEntryEnergy, "Cat Form Entry Energy Threshold", 0, 100, 60),
	settings.Slider(OptFormShiftDelay, "Form Shift Delay (ms)", 0, 10000, 2000),
	settings.Slider(OptMinCatDuration, "Min Cat Form Duration (ms)", 0, 10000, 4500),
	settings.Slider(OptEmergencyCooldown, "Emergency Healing Cooldown (ms)", 0, 15000, 8000),
	settings.Checkbox(OptHeartOfTheWild, "Use Heart of the Wild (DPS)", true),
	settings.Checkbox(OptNaturesVigil, "Use Nature's Vigil (DPS)", true),
	settings.Checkbox(OptProwl, "Use Prowl (Out of Combat)", true),
	settings.Checkbox(OptBurstWindow, "Use Window Mode (unchecked = Toggle Mode)", false),
	settings.Slider(OptBurstWindowDuration, "Burst Window Duration (seconds)", 5, 60, 15),
}

// Register 注册德鲁伊循环
func Register(reg *behavior.Registry) {
	reg.MustRegister(behavior.Registration{
		Name:           Name,
		Specialization: Restoration,
		Context:        behavior.ContextAny,
		Factory:        NewRestoration,
	})
}
