package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/driftforge/runweaver/pkg/cache"
	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/mapjson"
)

// FileStore is a file-based archive for local CLI usage.
// Maps live under maps/, batch reports under reports/, both as JSON.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based archive rooted at baseDir.
// If baseDir is empty, defaults to ~/.local/share/runweaver/archive.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "runweaver", "archive")
	}
	for _, sub := range []string{"maps", "reports"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) mapPath(seed, rulesID string) string {
	key := cache.Hash([]byte(seed + "\x00" + rulesID))
	return filepath.Join(s.baseDir, "maps", key+".json")
}

// PutMap writes a map file keyed by the hash of (seed, rules fingerprint).
func (s *FileStore) PutMap(ctx context.Context, m *mapgen.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mapjson.WriteFile(m, s.mapPath(m.Seed, m.RulesID))
}

// GetMap loads an archived map.
func (s *FileStore) GetMap(ctx context.Context, seed, rulesID string) (*mapgen.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.mapPath(seed, rulesID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errMapNotFound(seed, rulesID)
	}
	return mapjson.ReadFile(path)
}

// PutBatchReport writes a report file named by report ID.
func (s *FileStore) PutBatchReport(ctx context.Context, r *BatchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch report: %w", err)
	}
	path := filepath.Join(s.baseDir, "reports", r.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write batch report: %w", err)
	}
	return nil
}

// LatestBatchReport scans the reports directory for the newest report
// matching the rules fingerprint. Report volume is small (one per rules
// change), so a scan is fine.
func (s *FileStore) LatestBatchReport(ctx context.Context, rulesID string) (*BatchReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.baseDir, "reports")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var matches []*BatchReport
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var r BatchReport
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		if r.RulesID == rulesID {
			matches = append(matches, &r)
		}
	}
	if len(matches) == 0 {
		return nil, errReportNotFound(rulesID)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches[0], nil
}

// Close does nothing for the file store.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
