package hekili

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/common"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Name 循环名称
const Name = "Hekili Integration"

// ErrNilFeed 未提供推荐源
var ErrNilFeed = errors.New("hekili: nil feed")

// FollowerBehavior 按推荐施法，两次施放之间至少间隔 OptCastDelay
type FollowerBehavior struct {
	game     world.Game
	spells   *spell.Builder
	common   *common.Common
	settings *settings.Store
	feed     *Feed
	log      logger.Logger

	lastCast time.Time
}

// NewFollower 创建跟随循环
func NewFollower(deps behavior.Deps, feed *Feed) (behavior.Behavior, error) {
	if feed == nil {
		return nil, ErrNilFeed
	}
	store := deps.Store()
	if err := store.Register(Options...); err != nil {
		return nil, err
	}
	l := deps.Log().Named("hekili")
	return &FollowerBehavior{
		game:     deps.Game,
		spells:   deps.Spells(),
		common:   common.New(deps.Game, l),
		settings: store,
		feed:     feed,
		log:      l,
	}, nil
}

func (f *FollowerBehavior) Name() string                            { return Name }
func (f *FollowerBehavior) Specialization() behavior.Specialization { return behavior.SpecAll }
func (f *FollowerBehavior) Context() behavior.Context               { return behavior.ContextAny }

// Build 构建行为树
func (f *FollowerBehavior) Build() bt.Node {
	c := f.common
	return bt.NewSelector("hekili",
		c.WaitForNotMounted(),
		bt.NewAction("require target", func() bt.Status {
			if f.settings.Bool(OptRequireTarget) && f.game.Target() == nil {
				return bt.StatusSuccess
			}
			return bt.StatusFailure
		}),
		bt.NewAction("require combat", func() bt.Status {
			if f.settings.Bool(OptOnlyInCombat) && !f.game.Me().InCombat() {
				return bt.StatusSuccess
			}
			return bt.StatusFailure
		}),
		c.WaitForCastOrChannel(),
		bt.NewAction("follow recommendation", f.follow),
	)
}

func (f *FollowerBehavior) follow() bt.Status {
	debug := f.settings.Bool(OptDebugMode)

	rec, ok := f.feed.Current()
	if !ok {
		if debug {
			f.log.Debug("no recommendation available")
		}
		return bt.StatusFailure
	}

	now := f.game.Now()
	if !f.lastCast.IsZero() && now.Sub(f.lastCast) < f.settings.Millis(OptCastDelay) {
		return bt.StatusFailure
	}

	id, ok := f.spells.Lookup(rec.SpellID, rec.SpellName)
	if !ok {
		if debug {
			f.log.Warn("recommended spell not found", "spell", rec.SpellName, "spell_id", rec.SpellID)
		}
		return bt.StatusFailure
	}

	target := f.game.Target()
	if target == nil {
		target = f.game.Me()
	}
	if err := f.spells.CastID(id, rec.SpellName, target); err != nil {
		if debug {
			f.log.Info("recommendation failed", "spell", rec.SpellName, "spell_id", rec.SpellID, "error", err)
		}
		return bt.StatusFailure
	}

	f.lastCast = now
	if debug {
		f.log.Info("recommendation cast", "spell", rec.SpellName, "spell_id", rec.SpellID, "target", target.Name())
	}
	return bt.StatusSuccess
}
