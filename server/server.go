package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harshvasudeva/dialog-companion/config"
	"github.com/harshvasudeva/dialog-companion/dialog"
	"github.com/harshvasudeva/dialog-companion/logger"
	"github.com/harshvasudeva/dialog-companion/startup"
)

// AppID is reported by /health for single-instance detection.
const AppID = "dialog-companion"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return isLoopback(r.RemoteAddr)
	},
}

// Server holds all server state.
type Server struct {
	mu        sync.Mutex
	dialogs   atomic.Pointer[dialog.Service]
	base      dialog.Options
	history   *HistoryStore
	reg       *connectionRegistry
	httpSrv   *http.Server
	listener  net.Listener
	cfg       config.Config
	startTime time.Time
	active    atomic.Int64
	shown     atomic.Int64
}

// NewDialogService builds the dialog service described by cfg.
func NewDialogService(cfg config.Config) *dialog.Service {
	return dialog.New(dialogOptions(cfg, dialog.Options{}))
}

// dialogOptions layers the config's dialog settings over base.
func dialogOptions(cfg config.Config, base dialog.Options) dialog.Options {
	base.DefaultTitle = cfg.DefaultTitle
	base.Wrap = dialog.Wrap{Threshold: cfg.WrapThreshold, Width: cfg.WrapWidth}
	if cfg.ScriptPath != "" {
		base.Script = dialog.FileScript(cfg.ScriptPath)
	}
	return base
}

// New creates a Server with the given config.
func New(cfg config.Config) (*Server, error) {
	return newServer(cfg, dialog.Options{})
}

func newServer(cfg config.Config, base dialog.Options) (*Server, error) {
	history, err := NewHistoryStore(cfg.DataFolder, cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	s := &Server{
		base:    base,
		history: history,
		reg:     newConnectionRegistry(),
		cfg:     cfg,
	}
	s.dialogs.Store(dialog.New(dialogOptions(cfg, base)))
	return s, nil
}

// Start binds to 127.0.0.1:port and begins serving. Blocks until Stop() is called.
func (s *Server) Start() error {
	s.mu.Lock()
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln

	s.httpSrv = &http.Server{
		Handler: s.routes(),
		// No ReadTimeout/WriteTimeout: /dialog and /ws wait on a person.
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpSrv
	s.startTime = time.Now()
	s.mu.Unlock()

	logger.Info("Server listening on http://%s", addr)

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP/WS server. Dialogs already on screen
// stay open; their results are still recorded in the history.
func (s *Server) Stop() {
	s.mu.Lock()
	srv, ln := s.httpSrv, s.listener
	s.httpSrv, s.listener = nil, nil
	s.mu.Unlock()

	// Handlers in flight read s.cfg under s.mu while Shutdown waits on them.
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	if ln != nil {
		_ = ln.Close()
	}
	s.reg.closeAll()
}

// Restart stops and starts with a new config.
func (s *Server) Restart(newCfg config.Config) error {
	logger.Info("Restarting server on port %d", newCfg.Port)
	s.Stop()
	s.apply(newCfg)

	go func() {
		if err := s.Start(); err != nil {
			logger.Error("Server restart failed: %v", err)
		}
	}()
	return nil
}

// ApplyConfig switches to newCfg, restarting the listener when the port
// changed.
func (s *Server) ApplyConfig(newCfg config.Config) {
	if !s.apply(newCfg) {
		return
	}
	go func() {
		time.Sleep(200 * time.Millisecond)
		logger.Info("Port changed to %d, restarting server...", newCfg.Port)
		if err := s.Restart(newCfg); err != nil {
			logger.Error("Restart failed: %v", err)
		}
	}()
}

// apply updates everything except the listener and reports whether the
// port changed.
func (s *Server) apply(newCfg config.Config) (portChanged bool) {
	s.mu.Lock()
	old := s.cfg
	s.cfg = newCfg
	s.mu.Unlock()

	if newCfg.LogLevel != old.LogLevel {
		logger.SetLevel(newCfg.LogLevel)
		logger.Info("Log level changed to %s", newCfg.LogLevel)
	}
	if newCfg.AutoStart != old.AutoStart {
		if err := startup.SyncWithConfig(newCfg.AutoStart); err != nil {
			logger.Warn("Failed to update auto-start: %v", err)
		} else {
			logger.Info("Auto-start set to %v", newCfg.AutoStart)
		}
	}

	s.dialogs.Store(dialog.New(dialogOptions(newCfg, s.base)))
	s.history.SetLimit(newCfg.HistoryLimit)

	if newCfg.DataFolder != old.DataFolder {
		if err := s.history.UpdateDataFolder(newCfg.DataFolder); err != nil {
			logger.Error("Failed to move history: %v", err)
		}
	}
	return newCfg.Port != old.Port
}

// Show displays req and records the result. It blocks until the dialog
// is closed.
func (s *Server) Show(req dialog.Request) (dialog.Outcome, error) {
	if err := req.Validate(); err != nil {
		return dialog.Outcome{}, err
	}
	s.active.Add(1)
	defer s.active.Add(-1)

	svc := s.dialogs.Load()
	out, err := svc.Show(req)
	if req.Title == "" {
		req.Title = s.Config().DefaultTitle
	}
	rec := s.history.Add(newRecord(req, out, err))
	if err != nil {
		logger.Warn("[dialog #%d] %s failed: %v", rec.ID, req.Kind, err)
		return out, err
	}
	s.shown.Add(1)
	logger.Info("[dialog #%d] %s closed with %s (exit %d)", rec.ID, req.Kind, out.Button(), out.ExitCode)
	return out, nil
}

// ShowAsync validates req and shows it on its own goroutine, passing the
// result to done.
func (s *Server) ShowAsync(req dialog.Request, done dialog.Continuation) error {
	if err := req.Validate(); err != nil {
		return err
	}
	go func() {
		out, err := s.Show(req)
		if done != nil {
			done(out, err)
		}
	}()
	return nil
}

// ActiveCount returns the number of dialogs currently on screen.
func (s *Server) ActiveCount() int {
	return int(s.active.Load())
}

// ShownCount returns the number of dialogs shown since start.
func (s *Server) ShownCount() int {
	return int(s.shown.Load())
}

// ConnectedCount returns number of live WebSocket connections.
func (s *Server) ConnectedCount() int {
	return s.reg.count()
}

// Platform returns the platform dialogs are built for.
func (s *Server) Platform() dialog.Platform {
	return s.dialogs.Load().Platform()
}

// Config returns the config the server is running with.
func (s *Server) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// StartTime returns when the server started.
func (s *Server) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// CurrentPort returns the current port.
func (s *Server) CurrentPort() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Port
}

// History returns the history store.
func (s *Server) History() *HistoryStore {
	return s.history
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.requireLocalhost(s.handleWebSocket))
	mux.HandleFunc("/dialog", s.requireLocalhost(s.handleDialog))
	mux.HandleFunc("/history", s.requireLocalhost(s.handleHistory))
	mux.HandleFunc("/health", s.requireLocalhost(s.handleHealth))
	mux.HandleFunc("/config", s.requireLocalhost(s.handleConfig))
	mux.HandleFunc("/status", s.requireLocalhost(s.handleStatus))
	return mux
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return false
	}
	return host == "127.0.0.1" || host == "::1"
}

// requireLocalhost rejects non-loopback connections.
func (s *Server) requireLocalhost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isLoopback(r.RemoteAddr) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WS upgrade failed: %v", err)
		return
	}
	go HandleConnection(ws, s)
}

// writeJSON writes v as JSON to w.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		logger.Error("JSON encode error: %v", err)
	}
}
