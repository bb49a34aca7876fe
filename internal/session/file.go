package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileName is the file FileStore keeps inside its data directory
const FileName = "sessions.json"

var _ Store = (*FileStore)(nil)

// FileStore persists pending dates as a JSON document so they survive a restart
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileSnapshot struct {
	UpdatedAt string            `json:"updated_at"`
	Dates     map[string]string `json:"dates"`
}

// NewFileStore creates a FileStore under dataDir, creating the directory if needed
func NewFileStore(dataDir string) (*FileStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{path: filepath.Join(dataDir, FileName)}, nil
}

// Path returns the location of the session file
func (f *FileStore) Path() string {
	return f.path
}

// Set implements Store
func (f *FileStore) Set(_ context.Context, userID, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.load()
	if err != nil {
		return err
	}
	snap.Dates[userID] = date
	return f.save(snap)
}

// Pop implements Store
func (f *FileStore) Pop(_ context.Context, userID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.load()
	if err != nil {
		return "", false, err
	}

	date, ok := snap.Dates[userID]
	if !ok {
		return "", false, nil
	}
	delete(snap.Dates, userID)
	if err := f.save(snap); err != nil {
		return "", false, err
	}
	return date, true, nil
}

func (f *FileStore) load() (*fileSnapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileSnapshot{Dates: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("reading sessions: %w", err)
	}

	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing sessions: %w", err)
	}
	if snap.Dates == nil {
		snap.Dates = make(map[string]string)
	}
	return &snap, nil
}

// save writes to a temp file and renames it over the session file
func (f *FileStore) save(snap *fileSnapshot) error {
	snap.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing sessions: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("writing sessions: %w", err)
	}
	return nil
}
