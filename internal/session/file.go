package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileRecord struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileBackend keeps records in a single JSON file, the on-disk equivalent of
// the browser cookie jar. An unreadable file is treated as empty.
type FileBackend struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, now: time.Now}
}

func (f *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := f.load()
	rec, ok := records[key]
	if !ok || !f.now().Before(rec.ExpiresAt) {
		return "", false, nil
	}
	return rec.Value, true, nil
}

func (f *FileBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := f.load()
	records[key] = fileRecord{Value: value, ExpiresAt: f.now().Add(ttl)}
	return f.write(records)
}

func (f *FileBackend) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := f.load()
	for _, key := range keys {
		delete(records, key)
	}
	return f.write(records)
}

func (f *FileBackend) load() map[string]fileRecord {
	records := make(map[string]fileRecord)
	data, err := os.ReadFile(f.path)
	if err != nil {
		return records
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return make(map[string]fileRecord)
	}
	now := f.now()
	for key, rec := range records {
		if !now.Before(rec.ExpiresAt) {
			delete(records, key)
		}
	}
	return records
}

func (f *FileBackend) write(records map[string]fileRecord) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}
