// Package evoker 恩护唤魔师治疗循环
package evoker

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

// Preservation 恩护专精
const Preservation behavior.Specialization = "evoker.preservation"

const (
	auraReversion     world.AuraID = 366155
	auraEcho          world.AuraID = 364343
	auraEssenceBurst  world.AuraID = 369299
	auraBronze        world.AuraID = 381748
	auraRenewingBlaze world.AuraID = 374348
)

// 设置项 UID
const (
	OptReversionPct          = "preservation_reversion_pct"
	OptLivingFlamePct        = "preservation_living_flame_pct"
	OptEchoPct               = "preservation_echo_pct"
	OptVerdantEmbracePct     = "preservation_verdant_embrace_pct"
	OptTimeDilation          = "preservation_time_dilation"
	OptEmeraldCommunionCount = "preservation_emerald_communion_count"
	OptEmeraldCommunionPct   = "preservation_emerald_communion_pct"
	OptRewindCount           = "preservation_rewind_count"
	OptRewindPct             = "preservation_rewind_pct"
	OptDreamBreathCount      = "preservation_dream_breath_count"
	OptDreamBreathPct        = "preservation_dream_breath_pct"
	OptEmeraldBlossomCount   = "preservation_emerald_blossom_count"
	OptEmeraldBlossomPct     = "preservation_emerald_blossom_pct"
	OptSpiritbloomCount      = "preservation_spiritbloom_count"
	OptSpiritbloomPct        = "preservation_spiritbloom_pct"
	OptTemporalAnomalyCount  = "preservation_temporal_anomaly_count"
	OptBlessingOfBronze      = "preservation_blessing_of_bronze"
	OptRenewingBlaze         = "preservation_renewing_blaze"
	OptObsidianScales        = "preservation_obsidian_scales"
	OptDeepBreath            = "preservation_deep_breath"
	OptDeepBreathMinTargets  = "preservation_deep_breath_min_targets"
)

// Options 恩护循环的设置项
var Options = []settings.Option{
	settings.Slider(OptReversionPct, "Reversion Percent", 0, 100, 70),
	settings.Slider(OptLivingFlamePct, "Living Flame Percent", 0, 100, 70),
	settings.Slider(OptEchoPct, "Echo Percent", 0, 100, 70),
	settings.Slider(OptVerdantEmbracePct, "Verdant Embrace Percent", 0, 100, 70),
	settings.Checkbox(OptTimeDilation, "Use Time Dilation", true),

	settings.Slider(OptEmeraldCommunionCount, "Emerald Communion Minimum Targets", 1, 10, 2),
	settings.Slider(OptEmeraldCommunionPct, "Emerald Communion Health Percent", 0, 100, 50),
	settings.Slider(OptRewindCount, "Rewind Minimum Targets", 1, 10, 5),
	settings.Slider(OptRewindPct, "Rewind Health Percent", 0, 100, 70),
	settings.Slider(OptDreamBreathCount, "Dream Breath Minimum Targets", 1, 10, 3),
	settings.Slider(OptDreamBreathPct, "Dream Breath Health Percent", 0, 100, 85),
	settings.Slider(OptEmeraldBlossomCount, "Emerald Blossom Minimum Targets", 1, 10, 3),
	settings.Slider(OptEmeraldBlossomPct, "Emerald Blossom Health Percent", 0, 100, 80),
	settings.Slider(OptSpiritbloomCount, "Spiritbloom Minimum Targets", 1, 10, 3),
	settings.Slider(OptSpiritbloomPct, "Spiritbloom Health Percent", 0, 100, 80),
	settings.Slider(OptTemporalAnomalyCount, "Temporal Anomaly Minimum Targets", 1, 10, 3),

	settings.Checkbox(OptBlessingOfBronze, "Cast Blessing of the Bronze", true),
	settings.Checkbox(OptRenewingBlaze, "Use Renewing Blaze", true),
	settings.Checkbox(OptObsidianScales, "Use Obsidian Scales", true),
	settings.Checkbox(OptDeepBreath, "Use Deep Breath", true),
	settings.Slider(OptDeepBreathMinTargets, "Deep Breath Minimum Targets", 1, 10, 3),
}

// Register 注册唤魔师循环
func Register(reg *behavior.Registry) {
	reg.MustRegister(behavior.Registration{
		Name:           Name,
		Specialization: Preservation,
		Context:        behavior.ContextAny,
		Factory:        NewPreservation,
	})
}
