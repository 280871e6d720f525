// Package manifest persists the modification times of optimized artifacts.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	imgfs "go.trai.ch/imgopt/internal/adapters/fs"
	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// formatVersion is the on-disk schema version.
const formatVersion = 1

var _ ports.Manifest = (*Store)(nil)

// document is the YAML representation of the manifest file.
type document struct {
	Version  int               `yaml:"version"`
	Checksum string            `yaml:"checksum"`
	Entries  map[string]string `yaml:"entries"`
}

// Store implements ports.Manifest using a YAML file inside the build directory.
type Store struct {
	buildDir string
	path     string
	logger   ports.Logger

	once    sync.Once
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewStore creates a Store for the manifest of buildDir. Nothing is read until first use.
func NewStore(buildDir string, logger ports.Logger) *Store {
	buildDir = filepath.Clean(buildDir)
	return &Store{
		buildDir: buildDir,
		path:     domain.ManifestPath(buildDir),
		logger:   logger,
	}
}

// Path returns the absolute location of the manifest file.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the manifest file is present on disk.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Lookup returns the recorded modification time of the artifact.
func (s *Store) Lookup(id string) (time.Time, bool) {
	s.once.Do(s.load)

	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.entries[id]
	return ts, ok
}

// RebuildAndPersist records the current modification time of every id,
// drops all other entries and rewrites the manifest file.
// Ids that cannot be stat'ed are left out.
func (s *Store) RebuildAndPersist(ids []string) error {
	// Loading is skipped entirely: prior content is discarded.
	s.once.Do(func() {})

	entries := make(map[string]time.Time, len(ids))
	for _, id := range ids {
		info, err := os.Stat(domain.ArtifactPath(s.buildDir, id))
		if err != nil {
			s.warn(zerr.With(zerr.Wrap(err, "skipping manifest entry"), "id", id))
			continue
		}
		entries[id] = info.ModTime()
	}

	data, err := encode(entries)
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestMarshalFailed.Error())
	}

	if err := imgfs.WriteFileAtomic(s.path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", s.path)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return nil
}

func (s *Store) load() {
	entries, err := s.read()
	if err != nil {
		s.warn(err)
		entries = nil
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

func (s *Store) read() (map[string]time.Time, error) {
	//nolint:gosec // Path is derived from the configured build directory
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", s.path)
	}

	entries, err := decode(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestCorrupt.Error()), "path", s.path)
	}
	return entries, nil
}

func (s *Store) warn(err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(fmt.Sprintf("manifest: %v", err))
}

func encode(entries map[string]time.Time) ([]byte, error) {
	doc := document{
		Version: formatVersion,
		Entries: make(map[string]string, len(entries)),
	}
	for id, ts := range entries {
		doc.Entries[id] = ts.UTC().Format(time.RFC3339Nano)
	}
	doc.Checksum = checksum(doc.Entries)

	return yaml.Marshal(&doc)
}

func decode(data []byte) (map[string]time.Time, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Version != formatVersion {
		return nil, zerr.With(zerr.New("unsupported manifest version"), "version", doc.Version)
	}

	if got := checksum(doc.Entries); got != doc.Checksum {
		return nil, zerr.With(zerr.New("manifest checksum mismatch"), "expected", doc.Checksum)
	}

	entries := make(map[string]time.Time, len(doc.Entries))
	for id, raw := range doc.Entries {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid timestamp"), "id", id)
		}
		entries[id] = ts
	}
	return entries, nil
}

// checksum hashes the entries in sorted id order.
func checksum(entries map[string]string) string {
	hasher := xxhash.New()
	for _, id := range slices.Sorted(maps.Keys(entries)) {
		_, _ = hasher.WriteString(id)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(entries[id])
		_, _ = hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}

