// Package hekili 跟随外部插件推荐施法的通用循环
//
// 推荐通过 websocket 桥接推送，消息格式为 "<spellId>:<spellName>" 或 "<spellId>"
package hekili

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// ErrInvalidRecommendation 推荐消息无法解析或技能 ID 非法
var ErrInvalidRecommendation = errors.New("hekili: invalid recommendation")

// 设置项 UID
const (
	OptDebugMode     = "hekili_debug_mode"
	OptCastDelay     = "hekili_cast_delay"
	OptOnlyInCombat  = "hekili_only_in_combat"
	OptRequireTarget = "hekili_require_target"
)

// Options 跟随循环的设置项
var Options = []settings.Option{
	settings.Checkbox(OptDebugMode, "Debug Mode (log recommendations)", true),
	settings.Slider(OptCastDelay, "Cast delay (ms)", 100, 2000, 500),
	settings.Checkbox(OptOnlyInCombat, "Only cast in combat", true),
	settings.Checkbox(OptRequireTarget, "Require valid target", true),
}

// Recommendation 一条施法推荐
type Recommendation struct {
	SpellID   world.SpellID
	SpellName string
}

// ParseRecommendation 解析桥接消息，缺少名称时使用 "Spell <id>"
func ParseRecommendation(msg string) (Recommendation, error) {
	idPart, name, _ := strings.Cut(strings.TrimSpace(msg), ":")
	id, err := strconv.ParseUint(strings.TrimSpace(idPart), 10, 32)
	if err != nil || id == 0 {
		return Recommendation{}, errors.Wrapf(ErrInvalidRecommendation, "%q", msg)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Spell " + strconv.FormatUint(id, 10)
	}
	return Recommendation{SpellID: world.SpellID(id), SpellName: name}, nil
}

// Feed 最新推荐，桥接 goroutine 写入，帧循环读取
type Feed struct {
	current atomic.Pointer[Recommendation]
	log     logger.Logger
}

// NewFeed 创建推荐源
func NewFeed(l logger.Logger) *Feed {
	if l == nil {
		l = logger.NewNoop()
	}
	return &Feed{log: l.Named("hekili")}
}

// Publish 解析并提交一条消息，只有技能 ID 变化时才替换当前推荐
// 返回当前推荐是否被替换
func (f *Feed) Publish(msg string) (bool, error) {
	rec, err := ParseRecommendation(msg)
	if err != nil {
		f.log.Debug("dropped recommendation", "message", msg, "error", err)
		return false, err
	}

	for {
		old := f.current.Load()
		if old != nil && old.SpellID == rec.SpellID {
			return false, nil
		}
		if f.current.CompareAndSwap(old, &rec) {
			f.log.Debug("new recommendation", "spell", rec.SpellName, "spell_id", rec.SpellID)
			return true, nil
		}
	}
}

// Current 当前推荐
func (f *Feed) Current() (Recommendation, bool) {
	if r := f.current.Load(); r != nil {
		return *r, true
	}
	return Recommendation{}, false
}

// Reset 清空当前推荐
func (f *Feed) Reset() {
	f.current.Store(nil)
}

// Register 注册跟随循环，所有实例共用同一个推荐源
func Register(reg *behavior.Registry, feed *Feed) {
	reg.MustRegister(behavior.Registration{
		Name:           Name,
		Specialization: behavior.SpecAll,
		Context:        behavior.ContextAny,
		Factory: func(deps behavior.Deps) (behavior.Behavior, error) {
			return NewFollower(deps, feed)
		},
	})
}
