package metrics

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	// TickBuckets 单帧耗时直方图桶（秒）
	TickBuckets []float64 `mapstructure:"tick_buckets" json:"tick_buckets" yaml:"tick_buckets"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:   "rotation",
		TickBuckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}
}

// RotationMetrics 循环驱动指标
type RotationMetrics struct {
	config *Config

	Frames       prometheus.Counter       // 驱动帧数
	Overlaps     prometheus.Counter       // 因上一帧未结束被拒绝的帧
	Ticks        *prometheus.CounterVec   // 单帧结果（按循环、状态）
	TickDuration *prometheus.HistogramVec // 单帧耗时
	Faults       *prometheus.CounterVec   // 节点故障（按循环、类型）
	Casts        *prometheus.CounterVec   // 施法指令（按技能、结果）
	Active       *prometheus.GaugeVec     // 当前激活的循环
	Bridge       *prometheus.CounterVec   // 桥接消息（按通道、结果）

	mu     sync.Mutex
	active string
}

// New 创建指标
func New(cfg *Config) (*RotationMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge metrics config")
	}

	return &RotationMetrics{
		config: newCfg,

		Frames: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "frames_total",
				Help:      "驱动帧总数",
			},
		),
		Overlaps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "overlapping_frames_total",
				Help:      "上一帧未结束而被拒绝的帧数",
			},
		),
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "ticks_total",
				Help:      "行为树单帧结果",
			},
			[]string{"behavior", "status"}, // status: Success/Failure/Running
		),
		TickDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: newCfg.Namespace,
				Name:      "tick_duration_seconds",
				Help:      "行为树单帧耗时（秒）",
				Buckets:   newCfg.TickBuckets,
			},
			[]string{"behavior"},
		),
		Faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "node_faults_total",
				Help:      "节点故障总数",
			},
			[]string{"behavior", "kind"}, // kind: panic/invalid_status/other
		),
		Casts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "casts_total",
				Help:      "施法指令总数",
			},
			[]string{"spell", "result"},
		),
		Active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: newCfg.Namespace,
				Name:      "active_behavior",
				Help:      "当前激活的循环（激活为 1）",
			},
			[]string{"behavior"},
		),
		Bridge: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "bridge_messages_total",
				Help:      "桥接收到的消息总数",
			},
			[]string{"channel", "result"}, // result: accepted/unchanged/rejected
		),
	}, nil
}

// Collectors 全部采集器
func (m *RotationMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Frames,
		m.Overlaps,
		m.Ticks,
		m.TickDuration,
		m.Faults,
		m.Casts,
		m.Active,
		m.Bridge,
	}
}

// Register 注册到任意 Registerer，测试中使用独立的 Registry
func (m *RotationMetrics) Register(registerer prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick 记录一帧
func (m *RotationMetrics) RecordTick(behavior string, status bt.Status, d time.Duration) {
	m.Frames.Inc()
	m.Ticks.WithLabelValues(behavior, status.String()).Inc()
	m.TickDuration.WithLabelValues(behavior).Observe(d.Seconds())
}

// RecordOverlap 记录被拒绝的重叠帧
func (m *RotationMetrics) RecordOverlap() {
	m.Overlaps.Inc()
}

// RecordFault 记录节点故障
func (m *RotationMetrics) RecordFault(behavior string, err error) {
	m.Faults.WithLabelValues(behavior, FaultKind(err)).Inc()
}

// ObserveCast 记录施法指令结果
func (m *RotationMetrics) ObserveCast(spell string, err error) {
	m.Casts.WithLabelValues(spell, CastResult(err)).Inc()
}

// SetActive 切换当前激活的循环
func (m *RotationMetrics) SetActive(behavior string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != "" {
		m.Active.WithLabelValues(m.active).Set(0)
	}
	m.active = behavior
	if behavior != "" {
		m.Active.WithLabelValues(behavior).Set(1)
	}
}

// RecordBridgeMessage 记录一条桥接消息
func (m *RotationMetrics) RecordBridgeMessage(channel, result string) {
	m.Bridge.WithLabelValues(channel, result).Inc()
}

// FaultKind 故障类型标签
func FaultKind(err error) string {
	switch {
	case errors.Is(err, bt.ErrNodePanic):
		return "panic"
	case errors.Is(err, bt.ErrInvalidStatus):
		return "invalid_status"
	default:
		return "other"
	}
}

var castResults = []struct {
	err   error
	label string
}{
	{world.ErrNotKnown, "not_known"},
	{world.ErrNotReady, "not_ready"},
	{world.ErrGlobalCooldown, "global_cooldown"},
	{world.ErrInvalidTarget, "invalid_target"},
	{world.ErrOutOfRange, "out_of_range"},
	{world.ErrInsufficientResource, "insufficient_resource"},
	{world.ErrBusy, "busy"},
}

// CastResult 施法结果标签
func CastResult(err error) string {
	if err == nil {
		return "success"
	}
	for _, r := range castResults {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "error"
}
