package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

const AppName = "Dialog Companion"

// AppVersion can be overridden at build time via -ldflags
var AppVersion = "1.0.0"

const (
	DefaultPort          = 9235
	DefaultTitle         = "Important"
	DefaultWrapThreshold = 30
	DefaultWrapWidth     = 300
	DefaultHistoryLimit  = 100
	StaleDays            = 30

	// EnvHome overrides the directory holding config.toml.
	EnvHome = "DIALOG_COMPANION_HOME"

	fileName = "config.toml"
)

// Config holds all companion configuration.
type Config struct {
	Port          int    `json:"port" toml:"port"`
	DataFolder    string `json:"dataFolder" toml:"data_folder"`
	LogLevel      string `json:"logLevel" toml:"log_level"`
	AutoStart     bool   `json:"autoStart" toml:"auto_start"`
	DefaultTitle  string `json:"defaultTitle" toml:"default_title"`
	WrapThreshold int    `json:"wrapThreshold" toml:"wrap_threshold"`
	WrapWidth     int    `json:"wrapWidth" toml:"wrap_width"`
	ScriptPath    string `json:"scriptPath" toml:"script_path"`
	HistoryLimit  int    `json:"historyLimit" toml:"history_limit"`
	Version       string `json:"version" toml:"version"`
}

var (
	current Config
	mu      sync.RWMutex
	cfgPath string
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// AppDataDir returns the per-user configuration directory, e.g.
// %APPDATA%\DialogCompanion or ~/.config/DialogCompanion.
func AppDataDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "DialogCompanion")
}

// ConfigPath returns the path to config.toml
func ConfigPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return cfgPath
}

// defaults returns the default Config
func defaults() Config {
	return Config{
		Port:          DefaultPort,
		DataFolder:    filepath.Join(AppDataDir(), "data"),
		LogLevel:      "info",
		AutoStart:     false,
		DefaultTitle:  DefaultTitle,
		WrapThreshold: DefaultWrapThreshold,
		WrapWidth:     DefaultWrapWidth,
		HistoryLimit:  DefaultHistoryLimit,
		Version:       AppVersion,
	}
}

// Load reads config.toml, applying defaults for any missing fields.
// On first run, creates the directory and writes defaults.
func Load() error {
	appData := AppDataDir()
	mu.Lock()
	cfgPath = filepath.Join(appData, fileName)
	mu.Unlock()

	if err := os.MkdirAll(appData, 0755); err != nil {
		return err
	}

	data, err := os.ReadFile(ConfigPath())
	if os.IsNotExist(err) {
		// First run: write defaults
		set(defaults())
		return Save()
	}
	if err != nil {
		return err
	}

	loaded, err := decode(data)
	if err != nil {
		// Corrupt config: reset to defaults
		set(defaults())
		return Save()
	}
	set(loaded)
	return nil
}

// Reload re-reads config.toml after an external edit. Unlike Load, a file
// that fails to parse leaves the current config untouched.
func Reload() (changed bool, err error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return false, err
	}
	loaded, err := decode(data)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", ConfigPath(), err)
	}

	mu.Lock()
	defer mu.Unlock()
	changed = loaded != current
	current = loaded
	return changed, nil
}

// decode overlays the file values on the defaults.
func decode(data []byte) (Config, error) {
	loaded := defaults()
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return Config{}, err
	}
	normalize(&loaded)
	return loaded, nil
}

// normalize replaces invalid or missing values with defaults.
func normalize(c *Config) {
	def := defaults()

	// Ensure version is always current
	c.Version = AppVersion

	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.DataFolder == "" {
		c.DataFolder = def.DataFolder
	}
	if !validLogLevels[c.LogLevel] {
		c.LogLevel = "info"
	}
	if strings.TrimSpace(c.DefaultTitle) == "" {
		c.DefaultTitle = DefaultTitle
	}
	if c.WrapThreshold < 0 {
		c.WrapThreshold = DefaultWrapThreshold
	}
	if c.WrapWidth <= 0 {
		c.WrapWidth = DefaultWrapWidth
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > 10000 {
		c.HistoryLimit = DefaultHistoryLimit
	}
}

func set(c Config) {
	mu.Lock()
	current = c
	mu.Unlock()
}

// Save writes the current config atomically (write to .tmp, rename).
func Save() error {
	mu.RLock()
	c := current
	path := cfgPath
	mu.RUnlock()

	c.Version = AppVersion

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}

	// Ensure parent dir exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Get returns a copy of the current config (thread-safe).
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Update merges a partial config map (JSON field names) into the current
// config. Returns: restartNeeded (port changed), dataFolderChanged, err.
// The _restart sentinel key requests a restart without changing anything.
func Update(partial map[string]interface{}) (restartNeeded bool, dataFolderChanged bool, err error) {
	mu.Lock()
	defer mu.Unlock()

	if _, hasRestart := partial["_restart"]; hasRestart {
		return true, false, nil
	}

	oldPort := current.Port
	oldDataFolder := current.DataFolder

	// JSON round-trip merge: marshal current → overlay partial → unmarshal
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return false, false, err
	}
	currentMap := make(map[string]interface{})
	if err := json.Unmarshal(currentJSON, &currentMap); err != nil {
		return false, false, err
	}
	for k, v := range partial {
		currentMap[k] = v
	}
	mergedJSON, err := json.Marshal(currentMap)
	if err != nil {
		return false, false, err
	}
	var newCfg Config
	if err := json.Unmarshal(mergedJSON, &newCfg); err != nil {
		return false, false, err
	}

	if newCfg.Port < 1024 || newCfg.Port > 65535 {
		return false, false, fmt.Errorf("port %d out of range 1024-65535: %w", newCfg.Port, os.ErrInvalid)
	}
	normalize(&newCfg)
	current = newCfg

	return newCfg.Port != oldPort, newCfg.DataFolder != oldDataFolder, nil
}
