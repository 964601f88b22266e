// Package gml serves pre-generated GML documents from a directory. GML is
// not derivable on demand from WKT; the files are produced offline and
// keyed by composite identifier, e.g. IAU_2015_19900.xml.
package gml

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

// Store indexes the GML directory and resolves composite keys to
// documents. The index is rebuilt on a schedule so files dropped into the
// directory become visible without a restart.
type Store struct {
	dir string

	mu    sync.RWMutex
	index map[string]string // "IAU:2015:19900" -> absolute file path
}

// NewStore builds the initial index. A missing or empty directory is not
// fatal; the store just serves no documents until a refresh finds some.
func NewStore(dir string) *Store {
	s := &Store{dir: dir, index: map[string]string{}}
	if err := s.Refresh(); err != nil {
		log.Printf("[warn] operation=gml_index dir=%s error=%v", dir, err)
	}
	return s
}

// Refresh rescans the directory and swaps in a fresh index.
func (s *Store) Refresh() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read gml dir: %w", err)
	}

	index := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
			continue
		}
		// IAU_2015_19900.xml -> IAU:2015:19900
		base := strings.TrimSuffix(e.Name(), ".xml")
		parts := strings.Split(base, "_")
		if len(parts) != 3 {
			continue
		}
		key := strings.Join(parts, ":")
		index[key] = filepath.Join(s.dir, e.Name())
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	log.Printf("[info] operation=gml_index dir=%s documents=%d", s.dir, len(index))
	return nil
}

// Get returns the GML document for the key, or ErrGmlNotAvailable when no
// pre-generated file exists.
func (s *Store) Get(key domain.Key) ([]byte, error) {
	s.mu.RLock()
	path, ok := s.index[key.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGmlNotAvailable, key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGmlNotAvailable, key)
		}
		return nil, fmt.Errorf("read gml %s: %w", key, err)
	}
	return data, nil
}

// ScheduleRefresh starts a cron loop rebuilding the index on the given
// schedule (e.g. "@every 15m"). The caller owns stopping the returned
// cron instance.
func (s *Store) ScheduleRefresh(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.Refresh(); err != nil {
			log.Printf("[warn] operation=gml_refresh dir=%s error=%v", s.dir, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule gml refresh: %w", err)
	}
	c.Start()
	return c, nil
}
