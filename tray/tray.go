package tray

import (
	"fmt"
	"time"

	"fyne.io/systray"
	"github.com/skratchdot/open-golang/open"

	"github.com/harshvasudeva/dialog-companion/config"
	"github.com/harshvasudeva/dialog-companion/dialog"
	"github.com/harshvasudeva/dialog-companion/logger"
	"github.com/harshvasudeva/dialog-companion/startup"
)

// ServerInterface avoids circular imports between tray and server packages.
type ServerInterface interface {
	ActiveCount() int
	ShownCount() int
	Show(req dialog.Request) (dialog.Outcome, error)
	Restart(cfg config.Config) error
	Stop()
}

var (
	mStatus    *systray.MenuItem
	mAutoStart *systray.MenuItem
	srv        ServerInterface
)

// Run initializes the tray and blocks until quit.
// MUST be called from the main goroutine on Windows.
func Run(s ServerInterface) {
	srv = s
	systray.Run(onReady, onExit)
}

func onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle(config.AppName)
	systray.SetTooltip(config.AppName + " - Starting...")

	// Title (disabled)
	mTitle := systray.AddMenuItem(config.AppName, config.AppName)
	mTitle.Disable()

	// Live status (disabled, informational)
	mStatus = systray.AddMenuItem("● Starting...", "Server status")
	mStatus.Disable()

	systray.AddSeparator()

	mTest := systray.AddMenuItem("Show Test Dialog", "Show an information dialog")
	mDataFolder := systray.AddMenuItem("Open Data Folder", "Open the data folder")
	mLogs := systray.AddMenuItem("View Logs", "Open the log file")
	mRestart := systray.AddMenuItem("Restart Server", "Restart the HTTP server")

	systray.AddSeparator()

	mAutoStart = systray.AddMenuItem(autoStartLabel(), "Toggle auto-start")
	if startup.IsRegistered() {
		mAutoStart.Check()
	}

	systray.AddSeparator()

	mQuit := systray.AddMenuItem("Quit", "Exit "+config.AppName)

	go statusUpdater()

	// Event loop
	go func() {
		for {
			select {
			case <-mTest.ClickedCh:
				go showTestDialog()

			case <-mDataFolder.ClickedCh:
				openPath(config.Get().DataFolder)

			case <-mLogs.ClickedCh:
				openPath(logger.LogPath())

			case <-mRestart.ClickedCh:
				go func() {
					mRestart.Disable()
					logger.Info("Tray: restart requested")
					if err := srv.Restart(config.Get()); err != nil {
						logger.Error("Tray restart failed: %v", err)
					}
					time.Sleep(500 * time.Millisecond)
					mRestart.Enable()
					UpdateStatus()
				}()

			case <-mAutoStart.ClickedCh:
				toggleAutoStart()

			case <-mQuit.ClickedCh:
				systray.Quit()
			}
		}
	}()
}

func onExit() {
	logger.Info("Tray: exiting, shutting down server")
	srv.Stop()
}

func showTestDialog() {
	out, err := srv.Show(dialog.Request{
		Kind:    dialog.KindInfo,
		Message: fmt.Sprintf("%s v%s is running on port %d.", config.AppName, config.AppVersion, config.Get().Port),
		Title:   config.AppName,
	})
	if err != nil {
		logger.Warn("Tray: test dialog failed: %v", err)
		return
	}
	logger.Debug("Tray: test dialog closed with %s", out.Button())
	UpdateStatus()
}

// openPath opens a folder or file with the desktop's default handler.
func openPath(path string) {
	if path == "" {
		logger.Warn("Path not set")
		return
	}
	if err := open.Start(path); err != nil {
		logger.Warn("Failed to open %s: %v", path, err)
	}
}

// statusUpdater polls every 2 seconds and updates the status menu item.
func statusUpdater() {
	// Initial update after a short delay for server to start
	time.Sleep(500 * time.Millisecond)
	UpdateStatus()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		UpdateStatus()
	}
}

// UpdateStatus refreshes the tray icon and status text. Safe to call from any goroutine.
func UpdateStatus() {
	active := srv.ActiveCount()
	if active > 0 {
		systray.SetIcon(iconBusy)
	} else {
		systray.SetIcon(iconIdle)
	}
	text := statusText(active, srv.ShownCount())
	systray.SetTooltip(config.AppName + " - " + text)
	mStatus.SetTitle("● " + text)
}

func statusText(active, shown int) string {
	switch {
	case active == 1:
		return fmt.Sprintf("1 dialog open, %d shown", shown)
	case active > 1:
		return fmt.Sprintf("%d dialogs open, %d shown", active, shown)
	case shown == 0:
		return "Running, no dialogs yet"
	case shown == 1:
		return "Running, 1 dialog shown"
	default:
		return fmt.Sprintf("Running, %d dialogs shown", shown)
	}
}

func toggleAutoStart() {
	enable := !startup.IsRegistered()
	var err error
	if enable {
		err = startup.Register()
	} else {
		err = startup.Unregister()
	}
	if err != nil {
		logger.Warn("Failed to toggle auto-start: %v", err)
		return
	}

	if enable {
		mAutoStart.Check()
	} else {
		mAutoStart.Uncheck()
	}
	_, _, _ = config.Update(map[string]interface{}{"autoStart": enable})
	if err := config.Save(); err != nil {
		logger.Warn("Failed to save config: %v", err)
	}
	logger.Info("Auto-start set to %v via tray", enable)
}
