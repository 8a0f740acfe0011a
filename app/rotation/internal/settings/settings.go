package settings

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Prefix 设置项在配置文件中的根键
const Prefix = "settings"

var (
	// ErrInvalidOption 设置项定义无效
	ErrInvalidOption = errors.New("settings: invalid option")

	// ErrConflict 同一 UID 重复注册为不同类型
	ErrConflict = errors.New("settings: conflicting option")
)

// Kind 设置项类型
type Kind int

const (
	KindSlider Kind = iota
	KindCheckbox
)

func (k Kind) String() string {
	if k == KindCheckbox {
		return "checkbox"
	}
	return "slider"
}

// Option 行为声明的一个设置项
type Option struct {
	UID     string
	Text    string
	Kind    Kind
	Default float64
	Min     float64
	Max     float64
}

// Slider 数值设置项，值会被限制在 [min, max]
func Slider(uid, text string, min, max, def float64) Option {
	return Option{UID: uid, Text: text, Kind: KindSlider, Default: def, Min: min, Max: max}
}

// Checkbox 开关设置项
func Checkbox(uid, text string, def bool) Option {
	o := Option{UID: uid, Text: text, Kind: KindCheckbox, Max: 1}
	if def {
		o.Default = 1
	}
	return o
}

// Key 配置键
func (o Option) Key() string {
	return Prefix + "." + o.UID
}

func (o Option) validate() error {
	if o.UID == "" {
		return errors.Wrap(ErrInvalidOption, "empty uid")
	}
	if o.Kind == KindSlider && o.Min > o.Max {
		return errors.Wrapf(ErrInvalidOption, "%s: min %v > max %v", o.UID, o.Min, o.Max)
	}
	return nil
}

func (o Option) clamp(v float64) float64 {
	if o.Kind == KindCheckbox {
		if v != 0 {
			return 1
		}
		return 0
	}
	if v < o.Min {
		return o.Min
	}
	if v > o.Max {
		return o.Max
	}
	return v
}

// Store 设置存储，读取无锁，配置变化时整体替换快照
type Store struct {
	mgr     config.Manager
	log     logger.Logger
	mu      sync.Mutex
	options map[string]Option
	values  atomic.Pointer[map[string]float64]
}

// NewStore 创建设置存储，mgr 为 nil 时只使用默认值
func NewStore(mgr config.Manager, l logger.Logger) *Store {
	if mgr == nil {
		mgr = config.NewManager()
	}
	if l == nil {
		l = logger.Default()
	}
	s := &Store{
		mgr:     mgr,
		log:     l.Named("settings"),
		options: make(map[string]Option),
	}
	empty := make(map[string]float64)
	s.values.Store(&empty)
	return s
}

// Register 注册设置项并刷新快照
func (s *Store) Register(opts ...Option) error {
	s.mu.Lock()
	for _, o := range opts {
		if err := o.validate(); err != nil {
			s.mu.Unlock()
			return err
		}
		if prev, ok := s.options[o.UID]; ok && prev.Kind != o.Kind {
			s.mu.Unlock()
			return errors.Wrapf(ErrConflict, "%s registered as %s and %s", o.UID, prev.Kind, o.Kind)
		}
		s.options[o.UID] = o
	}
	s.mu.Unlock()

	s.Reload()
	return nil
}

// Reload 从配置重新读取所有设置项
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]float64, len(s.options))
	for uid, o := range s.options {
		v := o.Default
		if s.mgr.IsSet(o.Key()) {
			if o.Kind == KindCheckbox {
				v = 0
				if s.mgr.GetBool(o.Key()) {
					v = 1
				}
			} else {
				v = s.mgr.GetFloat64(o.Key())
			}
		}
		clamped := o.clamp(v)
		if clamped != v {
			s.log.Warn("setting out of range, clamped", "uid", uid, "value", v, "clamped", clamped)
		}
		next[uid] = clamped
	}
	s.values.Store(&next)
}

// Watch 配置文件变化时自动刷新
func (s *Store) Watch() error {
	return s.mgr.Watch(func() {
		s.Reload()
		s.log.Info("settings reloaded")
	})
}

// Float 读取数值设置，未注册时为 0
func (s *Store) Float(uid string) float64 {
	return (*s.values.Load())[uid]
}

// Int 读取整数设置
func (s *Store) Int(uid string) int {
	return int(s.Float(uid))
}

// Bool 读取开关设置
func (s *Store) Bool(uid string) bool {
	return s.Float(uid) != 0
}

// Millis 以毫秒为单位的设置
func (s *Store) Millis(uid string) time.Duration {
	return time.Duration(s.Float(uid) * float64(time.Millisecond))
}

// Seconds 以秒为单位的设置
func (s *Store) Seconds(uid string) time.Duration {
	return time.Duration(s.Float(uid) * float64(time.Second))
}

// Options 已注册的设置项，按 UID 排序
func (s *Store) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Option, 0, len(s.options))
	for _, o := range s.options {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}
