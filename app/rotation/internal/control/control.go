// Package control 本地 HTTP 控制接口：查看当前循环与设置，发送开关与推荐
package control

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/hekili"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/driver"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/pkg/config"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
	"github.com/lk2023060901/xdooria-rotation/pkg/web"
)

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("control: invalid config")

// Driver 当前循环与开关
type Driver interface {
	Active() behavior.Behavior
	Toggle(name string) error
	Frame() uint64
}

// Feed 外部推荐源
type Feed interface {
	Publish(msg string) (bool, error)
	Current() (hekili.Recommendation, bool)
}

// Config 控制接口配置
type Config struct {
	// Enabled 是否启动控制接口
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// Web HTTP 服务配置
	Web web.Config `mapstructure:"web" json:"web" yaml:"web"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{Web: *web.DefaultConfig()}
}

// Status 当前循环状态
type Status struct {
	Behavior       string              `json:"behavior"`
	Specialization string              `json:"specialization"`
	Context        string              `json:"context"`
	Frame          uint64              `json:"frame"`
	Recommendation *RecommendationView `json:"recommendation,omitempty"`
}

// RecommendationView 推荐
type RecommendationView struct {
	SpellID   uint32 `json:"spell_id"`
	SpellName string `json:"spell_name"`
}

// BehaviorView 已注册的循环
type BehaviorView struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Context        string `json:"context"`
	Active         bool   `json:"active"`
}

// SettingView 设置项与当前值
type SettingView struct {
	UID     string  `json:"uid"`
	Text    string  `json:"text"`
	Kind    string  `json:"kind"`
	Value   float64 `json:"value"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Option 控制接口选项
type Option func(*Server)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l.Named("control")
		}
	}
}

// Server 控制接口
type Server struct {
	cfg      *Config
	log      logger.Logger
	driver   Driver
	registry *behavior.Registry
	settings *settings.Store
	feed     Feed
	web      *web.Server
}

// New 创建控制接口并注册路由
func New(cfg *Config, d Driver, reg *behavior.Registry, store *settings.Store, feed Feed, opts ...Option) (*Server, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge control config")
	}
	if d == nil || reg == nil || store == nil || feed == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "driver, registry, settings and feed are required")
	}

	s := &Server{
		cfg:      newCfg,
		log:      logger.NewNoop(),
		driver:   d,
		registry: reg,
		settings: store,
		feed:     feed,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.web, err = web.NewServer(&newCfg.Web, web.WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	s.routes(s.web.Router())
	return s, nil
}

func (s *Server) routes(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/status", s.status)
	api.GET("/behaviors", s.behaviors)
	api.GET("/settings", s.listSettings)
	api.POST("/toggles/:name", s.toggle)
	api.POST("/hekili", s.recommend)
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.web.Handler()
}

// Addr 实际监听的地址
func (s *Server) Addr() string {
	return s.web.Addr()
}

// Start 开始监听
func (s *Server) Start() error {
	return s.web.Start()
}

// Stop 停止监听
func (s *Server) Stop() error {
	return s.web.Stop()
}

func (s *Server) status(c *gin.Context) {
	st := Status{Frame: s.driver.Frame()}
	if b := s.driver.Active(); b != nil {
		st.Behavior = b.Name()
		st.Specialization = string(b.Specialization())
		st.Context = b.Context().String()
	}
	if rec, ok := s.feed.Current(); ok {
		st.Recommendation = &RecommendationView{SpellID: uint32(rec.SpellID), SpellName: rec.SpellName}
	}
	web.Success(c, st)
}

func (s *Server) behaviors(c *gin.Context) {
	active := ""
	if b := s.driver.Active(); b != nil {
		active = b.Name()
	}

	regs := s.registry.List()
	out := make([]BehaviorView, 0, len(regs))
	for _, reg := range regs {
		out = append(out, BehaviorView{
			Name:           reg.Name,
			Specialization: string(reg.Specialization),
			Context:        reg.Context.String(),
			Active:         reg.Name == active,
		})
	}
	web.Success(c, out)
}

func (s *Server) listSettings(c *gin.Context) {
	opts := s.settings.Options()
	out := make([]SettingView, 0, len(opts))
	for _, o := range opts {
		out = append(out, SettingView{
			UID:     o.UID,
			Text:    o.Text,
			Kind:    o.Kind.String(),
			Value:   s.settings.Float(o.UID),
			Default: o.Default,
			Min:     o.Min,
			Max:     o.Max,
		})
	}
	web.Success(c, out)
}

func (s *Server) toggle(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	err := s.driver.Toggle(name)
	switch {
	case err == nil:
		web.Success(c, gin.H{"toggle": name})
	case errors.Is(err, driver.ErrNoBehavior):
		web.Error(c, http.StatusConflict, web.CodeConflict, err.Error())
	case errors.Is(err, driver.ErrUnknownToggle):
		web.Error(c, http.StatusNotFound, web.CodeNotFound, err.Error())
	default:
		s.log.Error("toggle failed", "toggle", name, "error", err)
		web.Error(c, http.StatusInternalServerError, web.CodeInternalError, err.Error())
	}
}

type recommendRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Error(c, http.StatusBadRequest, web.CodeBadRequest, err.Error())
		return
	}
	changed, err := s.feed.Publish(req.Message)
	if err != nil {
		web.Error(c, http.StatusBadRequest, web.CodeBadRequest, err.Error())
		return
	}
	web.Success(c, gin.H{"changed": changed})
}
