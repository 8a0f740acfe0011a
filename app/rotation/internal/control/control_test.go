package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/hekili"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/driver"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
	"github.com/lk2023060901/xdooria-rotation/pkg/web"
)

type rampBehavior struct {
	toggled []string
}

func (b *rampBehavior) Name() string                            { return "Test Ramp" }
func (b *rampBehavior) Specialization() behavior.Specialization { return "druid.restoration" }
func (b *rampBehavior) Context() behavior.Context               { return behavior.ContextPvE }
func (b *rampBehavior) Build() bt.Node                          { return bt.Succeed("idle") }

func (b *rampBehavior) Toggle(name string) bool {
	if name != "ramp" {
		return false
	}
	b.toggled = append(b.toggled, name)
	return true
}

type fixture struct {
	srv      *Server
	driver   *driver.Driver
	feed     *hekili.Feed
	behavior *rampBehavior
}

func newFixture(t *testing.T, activate bool) *fixture {
	t.Helper()

	d, err := driver.New(nil)
	require.NoError(t, err)

	b := &rampBehavior{}
	reg := behavior.NewRegistry()
	reg.MustRegister(behavior.Registration{
		Name:           b.Name(),
		Specialization: b.Specialization(),
		Context:        b.Context(),
		Factory:        func(behavior.Deps) (behavior.Behavior, error) { return b, nil },
	})
	feed := hekili.NewFeed(nil)
	hekili.Register(reg, feed)

	store := settings.NewStore(nil, logger.NewNoop())
	require.NoError(t, store.Register(
		settings.Slider("heal_threshold", "Heal below", 0, 100, 80),
		settings.Checkbox("burst_toggle", "Burst", false),
	))

	if activate {
		require.NoError(t, d.Activate(b))
	}

	cfg := DefaultConfig()
	cfg.Web.Mode = gin.TestMode
	srv, err := New(cfg, d, reg, store, feed, WithLogger(logger.NewNoop()))
	require.NoError(t, err)
	return &fixture{srv: srv, driver: d, feed: feed, behavior: b}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)

	var resp struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if rec.Code == http.StatusOK {
		assert.Equal(t, web.CodeOK, resp.Code)
	}
	return rec, resp.Data
}

func TestNewRequiresDependencies(t *testing.T) {
	d, err := driver.New(nil)
	require.NoError(t, err)
	_, err = New(nil, d, nil, settings.NewStore(nil, nil), hekili.NewFeed(nil))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStatus(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.driver.Step()
	require.NoError(t, err)

	rec, data := f.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "Test Ramp", st.Behavior)
	assert.Equal(t, "druid.restoration", st.Specialization)
	assert.Equal(t, "pve", st.Context)
	assert.Equal(t, uint64(1), st.Frame)
	assert.Nil(t, st.Recommendation)

	_, err = f.feed.Publish("133:Fireball")
	require.NoError(t, err)
	_, data = f.do(t, http.MethodGet, "/api/status", nil)
	require.NoError(t, json.Unmarshal(data, &st))
	require.NotNil(t, st.Recommendation)
	assert.Equal(t, uint32(133), st.Recommendation.SpellID)
	assert.Equal(t, "Fireball", st.Recommendation.SpellName)
}

func TestBehaviors(t *testing.T) {
	f := newFixture(t, true)

	rec, data := f.do(t, http.MethodGet, "/api/behaviors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []BehaviorView
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, hekili.Name, list[0].Name)
	assert.False(t, list[0].Active)
	assert.Equal(t, "Test Ramp", list[1].Name)
	assert.True(t, list[1].Active)
	assert.Equal(t, "pve", list[1].Context)
}

func TestSettings(t *testing.T) {
	f := newFixture(t, false)

	rec, data := f.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []SettingView
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "burst_toggle", list[0].UID)
	assert.Equal(t, "checkbox", list[0].Kind)
	assert.Equal(t, float64(0), list[0].Value)
	assert.Equal(t, "heal_threshold", list[1].UID)
	assert.Equal(t, float64(80), list[1].Value)
	assert.Equal(t, float64(100), list[1].Max)
}

func TestToggle(t *testing.T) {
	f := newFixture(t, false)

	rec, _ := f.do(t, http.MethodPost, "/api/toggles/ramp", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.NoError(t, f.driver.Activate(f.behavior))

	rec, _ = f.do(t, http.MethodPost, "/api/toggles/ramp", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ramp"}, f.behavior.toggled)

	rec, _ = f.do(t, http.MethodPost, "/api/toggles/dance", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []string{"ramp"}, f.behavior.toggled)
}

func TestRecommend(t *testing.T) {
	f := newFixture(t, true)

	rec, data := f.do(t, http.MethodPost, "/api/hekili", map[string]string{"message": "2050:Heal"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"changed":true}`, string(data))

	rec, data = f.do(t, http.MethodPost, "/api/hekili", map[string]string{"message": "2050"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"changed":false}`, string(data))

	current, ok := f.feed.Current()
	require.True(t, ok)
	assert.Equal(t, "Heal", current.SpellName)

	rec, _ = f.do(t, http.MethodPost, "/api/hekili", map[string]string{"message": "zero:Nothing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/hekili", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
