package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/harshvasudeva/dialog-companion/config"
	"github.com/harshvasudeva/dialog-companion/dialog"
	"github.com/harshvasudeva/dialog-companion/logger"
)

const historyFile = "dialog-history.json"

// Record is one shown (or failed) dialog.
type Record struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	ExitCode int    `json:"exitCode"`
	Button   string `json:"button,omitempty"`
	Error    string `json:"error,omitempty"`
	ShownAt  string `json:"shownAt"`
}

func newRecord(req dialog.Request, out dialog.Outcome, err error) Record {
	rec := Record{
		Kind:    string(req.Kind),
		Title:   req.Title,
		Message: truncate(req.Message, 1024),
		ShownAt: time.Now().Format(time.RFC3339),
	}
	if err != nil {
		rec.ExitCode = -1
		rec.Error = err.Error()
		return rec
	}
	rec.ExitCode = out.ExitCode
	rec.Button = out.Button().String()
	return rec
}

// HistoryStore keeps the most recent dialogs, backed by dialog-history.json
type HistoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
	limit   int
	folder  string
	saveCh  chan struct{}
}

// NewHistoryStore creates a HistoryStore and loads from disk.
func NewHistoryStore(dataFolder string, limit int) (*HistoryStore, error) {
	h := &HistoryStore{
		limit:  limit,
		folder: dataFolder,
		nextID: 1,
		saveCh: make(chan struct{}, 1),
	}
	if err := h.Load(); err != nil {
		return nil, err
	}
	go h.startSaveWorker()
	return h, nil
}

func (h *HistoryStore) historyPath() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return filepath.Join(h.folder, historyFile)
}

// Load reads dialog-history.json and drops stale entries.
func (h *HistoryStore) Load() error {
	path := h.historyPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var raw []Record
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("%s corrupt, starting fresh: %v", historyFile, err)
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -config.StaleDays)
	fresh := raw[:0]
	for _, rec := range raw {
		if t, err := time.Parse(time.RFC3339, rec.ShownAt); err == nil && t.Before(cutoff) {
			continue
		}
		fresh = append(fresh, rec)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = fresh
	for _, rec := range fresh {
		if rec.ID >= h.nextID {
			h.nextID = rec.ID + 1
		}
	}
	h.trim()
	return nil
}

// Save writes dialog-history.json atomically.
func (h *HistoryStore) Save() error {
	h.mu.RLock()
	snapshot := make([]Record, len(h.records))
	copy(snapshot, h.records)
	folder := h.folder
	h.mu.RUnlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return err
	}

	path := filepath.Join(folder, historyFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// DebouncedSave triggers a save after 500ms.
func (h *HistoryStore) DebouncedSave() {
	select {
	case h.saveCh <- struct{}{}:
	default:
	}
}

func (h *HistoryStore) startSaveWorker() {
	for range h.saveCh {
		time.Sleep(500 * time.Millisecond)
		for {
			select {
			case <-h.saveCh:
			default:
				goto save
			}
		}
	save:
		if err := h.Save(); err != nil {
			logger.Error("History save failed: %v", err)
		}
	}
}

// Add appends rec, assigning its ID, and evicts the oldest entries past
// the limit.
func (h *HistoryStore) Add(rec Record) Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec.ID = h.nextID
	h.nextID++
	h.records = append(h.records, rec)
	h.trim()
	h.DebouncedSave()
	return rec
}

// trim requires h.mu held.
func (h *HistoryStore) trim() {
	if h.limit > 0 && len(h.records) > h.limit {
		h.records = append([]Record(nil), h.records[len(h.records)-h.limit:]...)
	}
}

// All returns the records, oldest first.
func (h *HistoryStore) All() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of stored records.
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// SetLimit changes the retention limit, trimming immediately.
func (h *HistoryStore) SetLimit(limit int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit == h.limit {
		return
	}
	h.limit = limit
	h.trim()
	h.DebouncedSave()
}

// UpdateDataFolder moves the store to a new folder path.
func (h *HistoryStore) UpdateDataFolder(newFolder string) error {
	h.mu.Lock()
	oldFolder := h.folder
	h.folder = newFolder
	h.mu.Unlock()

	if err := os.MkdirAll(newFolder, 0755); err != nil {
		return err
	}

	oldPath := filepath.Join(oldFolder, historyFile)
	newPath := filepath.Join(newFolder, historyFile)
	if _, err := os.Stat(oldPath); err == nil {
		if err := os.Rename(oldPath, newPath); err != nil {
			logger.Warn("Could not move %s: %v", historyFile, err)
		}
	}

	return h.Save()
}

// truncate cuts s to at most maxLen bytes on a rune boundary.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
