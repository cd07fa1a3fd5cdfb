package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/harshvasudeva/dialog-companion/config"
	"github.com/harshvasudeva/dialog-companion/dialog"
	"github.com/harshvasudeva/dialog-companion/logger"
	"github.com/harshvasudeva/dialog-companion/server"
	"github.com/harshvasudeva/dialog-companion/startup"
	"github.com/harshvasudeva/dialog-companion/tray"
)

type instanceCheckResult int

const (
	portFree instanceCheckResult = iota
	instanceAlreadyRunning
	portInUseByOther
)

func main() {
	os.Exit(execute(os.Args[1:], &app{
		stderr:       os.Stderr,
		service:      oneShotService,
		runCompanion: runCompanion,
	}))
}

// oneShotService honours config.toml when it can be read.
func oneShotService() *dialog.Service {
	if err := config.Load(); err != nil {
		return dialog.New(dialog.Options{})
	}
	return server.NewDialogService(config.Get())
}

func runCompanion() int {
	// ─── 1. Load Configuration ────────────────────────────────────────
	if err := config.Load(); err != nil {
		showFatalDialog(config.AppName, "Failed to load configuration: "+err.Error())
		return 1
	}
	cfg := config.Get()

	// ─── 2. Initialize Logger ─────────────────────────────────────────
	if err := logger.Init(cfg.DataFolder, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
	}
	defer logger.Close()
	logger.Info("%s v%s starting", config.AppName, config.AppVersion)
	logger.Info("Config: %s", config.ConfigPath())
	logger.Info("Data folder: %s", cfg.DataFolder)
	logger.Info("Port: %d", cfg.Port)

	// ─── 3. Single-Instance Check ─────────────────────────────────────
	switch checkSingleInstance(cfg.Port) {
	case instanceAlreadyRunning:
		logger.Info("Another instance is already running, exiting")
		return 0
	case portInUseByOther:
		msg := fmt.Sprintf(
			"Port %d is already in use by another application.\n"+
				"Change the port in %s and restart.",
			cfg.Port, config.ConfigPath(),
		)
		logger.Error(msg)
		showFatalDialog(config.AppName+" - Port Conflict", msg)
		return 1
	case portFree:
		// Good to go
	}

	// ─── 4. Sync Auto-Start with Config ──────────────────────────────
	if err := startup.SyncWithConfig(cfg.AutoStart); err != nil {
		logger.Warn("Auto-start sync failed: %v", err)
	}

	// ─── 5. Create and Start Server ───────────────────────────────────
	srv, err := server.New(cfg)
	if err != nil {
		msg := "Failed to create server: " + err.Error()
		logger.Error(msg)
		showFatalDialog(config.AppName, msg)
		return 1
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("Server stopped: %v", err)
		}
	}()

	// Give server a moment to bind before showing tray
	time.Sleep(150 * time.Millisecond)
	logger.Info("Server started on http://127.0.0.1:%d", cfg.Port)

	// ─── 6. Watch config.toml for external edits ─────────────────────
	stopWatch, err := config.Watch(srv.ApplyConfig)
	if err != nil {
		logger.Warn("Config watch disabled: %v", err)
	} else {
		defer stopWatch()
	}

	// ─── 7. Run Tray (blocks until quit) ─────────────────────────────
	// systray.Run MUST be called from the main goroutine on Windows.
	tray.Run(srv)
	return 0
}

// checkSingleInstance probes the health endpoint to detect running instances.
func checkSingleInstance(port int) instanceCheckResult {
	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	client := &http.Client{Timeout: 1 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		// Connection refused = port is free
		return portFree
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var result map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
			if name, _ := result["app"].(string); name == server.AppID {
				return instanceAlreadyRunning
			}
		}
	}
	return portInUseByOther
}
