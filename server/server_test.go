package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshvasudeva/dialog-companion/config"
	"github.com/harshvasudeva/dialog-companion/dialog"
)

// fakeRunner answers every dialog with a fixed outcome.
type fakeRunner struct {
	mu       sync.Mutex
	commands []dialog.Command
	outcome  dialog.Outcome
	err      error
}

func (f *fakeRunner) Run(cmd dialog.Command) (dialog.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return f.outcome, f.err
}

func (f *fakeRunner) last() dialog.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commands) == 0 {
		return nil
	}
	return f.commands[len(f.commands)-1]
}

// testDataDir is removed best-effort: the history save worker may still be
// writing when the test ends.
func testDataDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "dialog-companion-test-")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Port:          config.DefaultPort,
		DataFolder:    testDataDir(t),
		LogLevel:      "info",
		DefaultTitle:  config.DefaultTitle,
		WrapThreshold: config.DefaultWrapThreshold,
		WrapWidth:     config.DefaultWrapWidth,
		HistoryLimit:  config.DefaultHistoryLimit,
	}
}

func newTestServer(t *testing.T, goos string, runner dialog.Runner) *Server {
	t.Helper()
	s, err := newServer(testConfig(t), dialog.Options{GOOS: goos, Runner: runner})
	require.NoError(t, err)
	return s
}

func localRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "127.0.0.1:1234"
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "linux", &fakeRunner{})

	rec := serve(s, localRequest(http.MethodGet, "/health", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, AppID, body["app"])
}

func TestRejectsRemoteClients(t *testing.T) {
	s := newTestServer(t, "linux", &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	rec := serve(s, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDialogShowsAndRecords(t *testing.T) {
	runner := &fakeRunner{outcome: dialog.Outcome{ExitCode: 0, Stdout: "done\n"}}
	s := newTestServer(t, "linux", runner)

	rec := serve(s, localRequest(http.MethodPost, "/dialog", `{"kind":"warning","message":"Disk almost full"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dialogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.ExitCode)
	assert.Equal(t, "ok", resp.Button)
	assert.True(t, resp.Acknowledged)
	assert.Equal(t, "done\n", resp.Stdout)

	assert.Equal(t, dialog.Command{"zenity", "--warning", "--text", "Disk almost full", "--title", config.DefaultTitle}, runner.last())

	history := s.History().All()
	require.Len(t, history, 1)
	assert.Equal(t, "warning", history[0].Kind)
	assert.Equal(t, config.DefaultTitle, history[0].Title)
	assert.Equal(t, "ok", history[0].Button)
	assert.Equal(t, 1, s.ShownCount())
	assert.Equal(t, 0, s.ActiveCount())
}

func TestDialogDefaultsToInfo(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestServer(t, "linux", runner)

	rec := serve(s, localRequest(http.MethodPost, "/dialog", `{"message":"hello","title":"Greeting"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "--info", runner.last()[1])
}

func TestDialogErrors(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		method string
		body   string
		runErr error
		want   int
	}{
		{name: "blank message", goos: "linux", method: http.MethodPost, body: `{"kind":"info","message":"   "}`, want: http.StatusBadRequest},
		{name: "bad json", goos: "linux", method: http.MethodPost, body: `{`, want: http.StatusBadRequest},
		{name: "unsupported platform", goos: "plan9", method: http.MethodPost, body: `{"message":"hi"}`, want: http.StatusNotImplemented},
		{name: "launch failure", goos: "linux", method: http.MethodPost, body: `{"message":"hi"}`, runErr: &dialog.LaunchError{Program: "zenity", Err: errors.New("not found")}, want: http.StatusInternalServerError},
		{name: "wrong method", goos: "linux", method: http.MethodGet, want: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.goos, &fakeRunner{err: tt.runErr})
			rec := serve(s, localRequest(tt.method, "/dialog", tt.body))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestFailedDialogIsRecorded(t *testing.T) {
	s := newTestServer(t, "plan9", &fakeRunner{})

	_, err := s.Show(dialog.Request{Kind: dialog.KindError, Message: "boom"})
	require.ErrorIs(t, err, dialog.ErrUnsupportedPlatform)

	history := s.History().All()
	require.Len(t, history, 1)
	assert.Equal(t, -1, history[0].ExitCode)
	assert.NotEmpty(t, history[0].Error)
	assert.Equal(t, 0, s.ShownCount())
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(t, "linux", &fakeRunner{})
	_, err := s.Show(dialog.Request{Kind: dialog.KindInfo, Message: "first"})
	require.NoError(t, err)
	_, err = s.Show(dialog.Request{Kind: dialog.KindInfo, Message: "second"})
	require.NoError(t, err)

	rec := serve(s, localRequest(http.MethodGet, "/history", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Message)
	assert.Equal(t, "second", records[1].Message)
	assert.Less(t, records[0].ID, records[1].ID)
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t, "darwin", &fakeRunner{})

	rec := serve(s, localRequest(http.MethodGet, "/status", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "macos", status.Platform)
	assert.Equal(t, config.DefaultPort, status.Port)
	assert.Equal(t, AppID, status.App)
}

func TestConfigPostAppliesDialogSettings(t *testing.T) {
	t.Setenv(config.EnvHome, testDataDir(t))
	require.NoError(t, config.Load())

	cfg := config.Get()
	runner := &fakeRunner{}
	s, err := newServer(cfg, dialog.Options{GOOS: "linux", Runner: runner})
	require.NoError(t, err)

	rec := serve(s, localRequest(http.MethodPost, "/config", `{"defaultTitle":"Heads up"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Heads up", config.Get().DefaultTitle)

	_, err = s.Show(dialog.Request{Kind: dialog.KindInfo, Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Heads up", runner.last()[5])
}

func TestConfigPostRejectsBadPort(t *testing.T) {
	t.Setenv(config.EnvHome, testDataDir(t))
	require.NoError(t, config.Load())

	s := newTestServer(t, "linux", &fakeRunner{})
	rec := serve(s, localRequest(http.MethodPost, "/config", `{"port":80}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebSocketShowRoundTrip(t *testing.T) {
	s := newTestServer(t, "linux", &fakeRunner{outcome: dialog.Outcome{ExitCode: 1}})
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping", "id": "p1"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "show", "id": "d1", "kind": "error", "message": "Build failed"}))
	var result map[string]interface{}
	require.NoError(t, conn.ReadJSON(&result))
	assert.Equal(t, "result", result["type"])
	assert.Equal(t, "d1", result["id"])
	assert.Equal(t, float64(1), result["exitCode"])
	assert.Equal(t, "cancel", result["button"])
	assert.Equal(t, false, result["acknowledged"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "show", "id": "d2", "message": " "}))
	var invalid map[string]interface{}
	require.NoError(t, conn.ReadJSON(&invalid))
	assert.Equal(t, "error", invalid["type"])
	assert.Equal(t, "d2", invalid["id"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "show", "message": "no id"}))
	var assigned map[string]interface{}
	require.NoError(t, conn.ReadJSON(&assigned))
	assert.Equal(t, "result", assigned["type"])
	assert.NotEmpty(t, assigned["id"])
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusTeapot, map[string]int{"n": 1})
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

// blockingRunner holds every dialog open until release is closed.
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingRunner) Run(cmd dialog.Command) (dialog.Outcome, error) {
	close(b.started)
	<-b.release
	return dialog.Outcome{}, nil
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestStopLetsOpenDialogFinish(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	cfg := testConfig(t)
	cfg.Port = freePort(t)
	s, err := newServer(cfg, dialog.Options{GOOS: "linux", Runner: runner})
	require.NoError(t, err)

	go func() { _ = s.Start() }()
	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	status := make(chan int, 1)
	go func() {
		resp, err := http.Post(base+"/dialog", "application/json", strings.NewReader(`{"message":"still open"}`))
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()
	<-runner.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	time.Sleep(100 * time.Millisecond)
	close(runner.release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked the in-flight dialog handler")
	}
	assert.Equal(t, http.StatusOK, <-status)
}
