package runs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore persists runs as directories with meta.json plus artifacts.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a FileStore rooted at baseDir.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Dir returns the directory for a run. Skill outputs and reports live here.
func (fs *FileStore) Dir(id string) string {
	return filepath.Join(fs.baseDir, id)
}

func (fs *FileStore) metaPath(id string) string {
	return filepath.Join(fs.Dir(id), "meta.json")
}

func generateRunID() string {
	u := uuid.New().String()
	return "run_" + strings.ReplaceAll(u[:8], "-", "")
}

// Create initialises a new run directory with meta.json.
func (fs *FileStore) Create() (*Run, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := time.Now()
	r := &Run{
		ID:        generateRunID(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    RunActive,
	}

	dir := fs.Dir(r.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	if err := fs.writeMeta(r); err != nil {
		return nil, err
	}

	return r, nil
}

// Get reads run metadata by ID.
func (fs *FileStore) Get(id string) (*Run, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.readMeta(id)
}

// List returns all runs sorted by UpdatedAt descending.
func (fs *FileStore) List() ([]*Run, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs dir: %w", err)
	}

	var result []*Run
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		r, err := fs.readMeta(entry.Name())
		if err != nil {
			continue // skip corrupted runs
		}
		result = append(result, r)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}

// UpdateMeta atomically rewrites a run's meta.json.
func (fs *FileStore) UpdateMeta(r *Run) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	r.UpdatedAt = time.Now()
	return fs.writeMeta(r)
}

// writeMeta atomically writes meta.json using a temp file + rename.
func (fs *FileStore) writeMeta(r *Run) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	path := fs.metaPath(r.ID)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write meta tmp: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename meta: %w", err)
	}

	return nil
}

// readMeta reads a run's meta.json.
func (fs *FileStore) readMeta(id string) (*Run, error) {
	data, err := os.ReadFile(fs.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("read meta: %w", err)
	}

	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}

	return &r, nil
}

var _ Store = (*FileStore)(nil)
