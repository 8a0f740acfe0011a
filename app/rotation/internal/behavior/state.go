package behavior

import (
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
)

// Clock 帧时钟
type Clock func() time.Time

// Timer 记录某件事上次发生的时刻，用于防抖
// 只在驱动循环所在的 goroutine 上使用
type Timer struct {
	now Clock
	at  time.Time
	set bool
}

// NewTimer 创建计时器
func NewTimer(now Clock) *Timer {
	return &Timer{now: now}
}

// Mark 记录当前时刻
func (t *Timer) Mark() {
	t.at = t.now()
	t.set = true
}

// Reset 清除记录
func (t *Timer) Reset() {
	t.set = false
}

// Since 距上次记录的时间，从未记录时为 spell.Never
func (t *Timer) Since() time.Duration {
	if !t.set {
		return spell.Never
	}
	return t.now().Sub(t.at)
}

// Elapsed 距上次记录是否已经超过 d
func (t *Timer) Elapsed(d time.Duration) bool {
	return t.Since() >= d
}

// Window 一段会自动过期的模式窗口，例如爆发窗口
type Window struct {
	now      Clock
	duration time.Duration
	start    time.Time
	active   bool
	gen      int
}

// NewWindow 创建窗口
func NewWindow(now Clock, duration time.Duration) *Window {
	return &Window{now: now, duration: duration}
}

// SetDuration 修改持续时间，对已打开的窗口立即生效
func (w *Window) SetDuration(d time.Duration) {
	w.duration = d
}

// Open 打开（或重新打开）窗口
func (w *Window) Open() {
	w.start = w.now()
	w.active = true
	w.gen++
}

// Close 关闭窗口
func (w *Window) Close() {
	w.active = false
}

// Active 窗口是否打开，超过持续时间自动关闭
func (w *Window) Active() bool {
	if w.active && w.now().Sub(w.start) >= w.duration {
		w.active = false
	}
	return w.active
}

// Elapsed 窗口已打开的时间，未打开时为 0
func (w *Window) Elapsed() time.Duration {
	if !w.Active() {
		return 0
	}
	return w.now().Sub(w.start)
}

// Remaining 窗口剩余时间，未打开时为 0
func (w *Window) Remaining() time.Duration {
	if !w.Active() {
		return 0
	}
	return w.duration - w.now().Sub(w.start)
}

// Generation 窗口被打开的次数，用于实现“每个窗口一次”的逻辑
func (w *Window) Generation() int {
	return w.gen
}
