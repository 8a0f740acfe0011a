package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoServer(t *testing.T, cfg *ServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Handle("/echo", func(conn *Connection, text string) error {
		return conn.SendText("echo: " + text)
	}))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), header)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestServerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultServerConfig().Validate())

	var nilCfg *ServerConfig
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)

	cfg := DefaultServerConfig()
	cfg.Addr = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultServerConfig()
	cfg.PingInterval = cfg.PongTimeout
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestServerEcho(t *testing.T) {
	s, ts := echoServer(t, nil)
	c := dial(t, ts.URL+"/echo", nil)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.Equal(t, "echo: hello", string(data))
	assert.Equal(t, 1, s.Count())

	require.NoError(t, c.WriteMessage(websocket.BinaryMessage, []byte{1, 2}))
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("again")))
	_, data, err = c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "echo: again", string(data))
}

func TestServerDuplicatePath(t *testing.T) {
	s, err := NewServer(nil)
	require.NoError(t, err)
	h := func(*Connection, string) error { return nil }
	require.NoError(t, s.Handle("/a", h))
	assert.ErrorIs(t, s.Handle("/a", h), ErrDuplicatePath)
}

func TestServerRejectsCrossOrigin(t *testing.T) {
	_, ts := echoServer(t, nil)
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/echo",
		http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServerMaxConnections(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.MaxConnections = 1
	s, ts := echoServer(t, cfg)

	dial(t, ts.URL+"/echo", nil)
	require.Eventually(t, func() bool { return s.Count() == 1 }, time.Second, 10*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/echo", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServerStartStop(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Addr = "127.0.0.1:0"
	s, err := NewServer(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Handle("/echo", func(conn *Connection, text string) error {
		return conn.SendText(text)
	}))

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrServerRunning)
	require.NotEmpty(t, s.Addr())

	c := dial(t, "http://"+s.Addr()+"/echo", nil)
	require.Eventually(t, func() bool { return s.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.Zero(t, s.Count())

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))

	assert.NoError(t, s.Stop())
}
