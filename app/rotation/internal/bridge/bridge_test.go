package bridge

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/hekili"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/driver"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

type fakeToggler struct {
	mu    sync.Mutex
	names []string
}

func (f *fakeToggler) Toggle(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name != "ramp" {
		return driver.ErrUnknownToggle
	}
	f.names = append(f.names, name)
	return nil
}

func (f *fakeToggler) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordBridgeMessage(channel, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[channel+"/"+result]++
}

func (r *countingRecorder) get(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func newBridge(t *testing.T) (*hekili.Feed, *fakeToggler, *countingRecorder, string) {
	t.Helper()
	feed := hekili.NewFeed(logger.NewNoop())
	tog := &fakeToggler{}
	rec := &countingRecorder{counts: make(map[string]int)}

	b, err := New(nil, feed, tog, WithLogger(logger.NewNoop()), WithRecorder(rec))
	require.NoError(t, err)
	ts := httptest.NewServer(b.Server().Handler())
	t.Cleanup(ts.Close)
	return feed, tog, rec, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *gws.Conn {
	t.Helper()
	c, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func send(t *testing.T, c *gws.Conn, text string) {
	t.Helper()
	require.NoError(t, c.WriteMessage(gws.TextMessage, []byte(text)))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.HekiliPath = "hekili"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.TogglePath = cfg.HekiliPath
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	_, err := New(nil, nil, &fakeToggler{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRecommendationChannel(t *testing.T) {
	feed, _, rec, url := newBridge(t)
	c := dial(t, url+"/hekili")

	send(t, c, "bogus")
	send(t, c, "133:Fireball")
	send(t, c, "133:Fireball")
	send(t, c, "2050")

	require.Eventually(t, func() bool {
		return rec.get("hekili/accepted") == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, rec.get("hekili/rejected"))
	assert.Equal(t, 1, rec.get("hekili/unchanged"))
	r, ok := feed.Current()
	require.True(t, ok)
	assert.Equal(t, hekili.Recommendation{SpellID: 2050, SpellName: "Spell 2050"}, r)
}

func TestToggleChannel(t *testing.T) {
	_, tog, rec, url := newBridge(t)
	c := dial(t, url+"/toggle")
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))

	send(t, c, " ramp\n")
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))

	send(t, c, "burst")
	_, data, err = c.ReadMessage()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "error: "), string(data))
	assert.Contains(t, string(data), "unknown toggle")

	assert.Equal(t, []string{"ramp"}, tog.requests())
	assert.Equal(t, 1, rec.get("toggle/accepted"))
	assert.Equal(t, 1, rec.get("toggle/rejected"))
}
