package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/harshvasudeva/dialog-companion/config"
	"github.com/harshvasudeva/dialog-companion/dialog"
	"github.com/harshvasudeva/dialog-companion/logger"
)

// dialogRequest is the body of POST /dialog.
type dialogRequest struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Title   string `json:"title"`
}

// dialogResponse is the shape of a closed dialog.
type dialogResponse struct {
	ExitCode     int    `json:"exitCode"`
	Button       string `json:"button"`
	Acknowledged bool   `json:"acknowledged"`
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
}

func newDialogResponse(out dialog.Outcome) dialogResponse {
	return dialogResponse{
		ExitCode:     out.ExitCode,
		Button:       out.Button().String(),
		Acknowledged: out.Acknowledged(),
		Stdout:       out.Stdout,
		Stderr:       out.Stderr,
	}
}

func kindOrDefault(kind string) dialog.Kind {
	if kind == "" {
		return dialog.KindInfo
	}
	return dialog.Kind(kind)
}

// statusFor maps a dialog error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dialog.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, dialog.ErrUnsupportedPlatform):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// handleDialog responds to POST /dialog once the dialog is closed.
func (s *Server) handleDialog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body dialogRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxMessageSize)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON: " + err.Error()})
		return
	}

	out, err := s.Show(dialog.Request{Kind: kindOrDefault(body.Kind), Message: body.Message, Title: body.Title})
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newDialogResponse(out))
}

// handleHistory responds to GET /history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.history.All())
}

// handleHealth responds to GET /health
// Adds "app": "dialog-companion" for single-instance detection.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"app":    AppID,
		"active": s.ActiveCount(),
	})
}

// handleConfig responds to GET and POST /config
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, config.Get())

	case http.MethodPost:
		var partial map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		// Check for restart sentinel before config update
		if _, hasRestart := partial["_restart"]; hasRestart {
			newCfg := config.Get()
			go func() {
				time.Sleep(100 * time.Millisecond)
				if err := s.Restart(newCfg); err != nil {
					logger.Error("Restart failed: %v", err)
				}
			}()
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"ok":            true,
				"config":        newCfg,
				"restartNeeded": true,
			})
			return
		}

		restartNeeded, _, err := config.Update(partial)
		if err != nil {
			http.Error(w, "Invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}

		newCfg := config.Get()
		if err := config.Save(); err != nil {
			logger.Error("Failed to save config: %v", err)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":            true,
			"config":        newCfg,
			"restartNeeded": restartNeeded,
		})

		// Port change: restart happens after the response is written.
		s.ApplyConfig(newCfg)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// StatusResponse is the shape of GET /status
type StatusResponse struct {
	Status        string  `json:"status"`
	App           string  `json:"app"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Port          int     `json:"port"`
	Platform      string  `json:"platform"`
	Connections   int     `json:"connections"`
	ActiveDialogs int     `json:"activeDialogs"`
	ShownDialogs  int     `json:"shownDialogs"`
	HistorySize   int     `json:"historySize"`
	LogLevel      string  `json:"logLevel"`
	DataFolder    string  `json:"dataFolder"`
}

// handleStatus responds to GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.Config()
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "ok",
		App:           AppID,
		Version:       config.AppVersion,
		UptimeSeconds: time.Since(s.StartTime()).Seconds(),
		Port:          cfg.Port,
		Platform:      s.Platform().String(),
		Connections:   s.ConnectedCount(),
		ActiveDialogs: s.ActiveCount(),
		ShownDialogs:  s.ShownCount(),
		HistorySize:   s.history.Len(),
		LogLevel:      cfg.LogLevel,
		DataFolder:    cfg.DataFolder,
	})
}
