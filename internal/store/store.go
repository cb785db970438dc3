// Package store persists inferred schemas as JSON files, one record per
// entity plus the latest extracted bundle.
//
// Records hold the expanded (reference-free) entity schema, which is what
// the next run merges against. Reads go through an LRU cache and concurrent
// loads of the same entity are collapsed into one file read.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/usestring/schemainfer/pkg/schema"
)

// ErrNotFound is returned when no record exists for an entity.
var ErrNotFound = errors.New("schema not found")

// ErrInvalidName is returned for entity names that cannot be used as file names.
var ErrInvalidName = errors.New("invalid entity name")

const (
	entitiesDir = "entities"
	bundleFile  = "bundle.json"
	recordExt   = ".json"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidName reports whether name can be stored.
func ValidName(name string) bool {
	return len(name) <= 200 && namePattern.MatchString(name) && !strings.Contains(name, "..")
}

// Record is the persisted state of one entity.
type Record struct {
	Name        string       `json:"name"`
	SampleCount int          `json:"sample_count"`
	Runs        int          `json:"runs_merged"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Schema      *schema.Node `json:"schema"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Schema = r.Schema.Clone()
	return &out
}

// FileStore is a directory-backed schema store. It is safe for concurrent use.
type FileStore struct {
	dir   string
	cache *recordCache
	loads singleflight.Group
	mu    sync.Mutex // serializes writes and cache fills
	now   func() time.Time
}

// New opens (creating if needed) a store rooted at dir. cacheItems bounds the
// number of records kept in memory.
func New(dir string, cacheItems int) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store directory is required")
	}
	if cacheItems <= 0 {
		cacheItems = 1
	}
	if err := os.MkdirAll(filepath.Join(dir, entitiesDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	cache, err := newRecordCache(cacheItems)
	if err != nil {
		return nil, fmt.Errorf("creating record cache: %w", err)
	}
	return &FileStore{dir: dir, cache: cache, now: time.Now}, nil
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) recordPath(name string) string {
	return filepath.Join(s.dir, entitiesDir, name+recordExt)
}

// Load returns the record for name, or ErrNotFound.
func (s *FileStore) Load(ctx context.Context, name string) (*Record, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if rec, ok := s.cache.Get(name); ok {
		return rec, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := s.loads.Do(name, func() (any, error) {
		// a read racing a Save must not cache the file it replaced
		s.mu.Lock()
		defer s.mu.Unlock()
		if rec, ok := s.cache.Get(name); ok {
			return rec, nil
		}
		rec, err := s.readRecord(name)
		if err != nil {
			return nil, err
		}
		s.cache.Put(rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	// the loaded record is shared between callers of Do
	return v.(*Record).Clone(), nil
}

func (s *FileStore) readRecord(name string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading record %s: %w", name, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", name, err)
	}
	if rec.Name == "" {
		rec.Name = name
	}
	return &rec, nil
}

// Save writes rec, stamping UpdatedAt.
func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Schema == nil {
		return errors.New("record with a schema is required")
	}
	if !ValidName(rec.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, rec.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out := rec.Clone()
	out.UpdatedAt = s.now().UTC()
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.recordPath(rec.Name), data); err != nil {
		s.cache.Remove(rec.Name)
		return fmt.Errorf("writing record %s: %w", rec.Name, err)
	}
	s.cache.Put(out)
	rec.UpdatedAt = out.UpdatedAt
	return nil
}

// Delete removes the record for name. Deleting a missing record returns ErrNotFound.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(name)
	if err := os.Remove(s.recordPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

// List returns the stored entity names in sorted order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, entitiesDir))
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), recordExt)
		if ValidName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadAll returns every stored record keyed by entity name.
func (s *FileStore) LoadAll(ctx context.Context) (map[string]*Record, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Record, len(names))
	for _, name := range names {
		rec, err := s.Load(ctx, name)
		if err != nil {
			// removed between List and Load
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[name] = rec
	}
	return out, nil
}

// SaveBundle writes the extracted bundle alongside the records.
func (s *FileStore) SaveBundle(ctx context.Context, b *schema.Bundle) error {
	if b == nil {
		return errors.New("bundle is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(filepath.Join(s.dir, bundleFile), data); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	return nil
}

// LoadBundle reads the last saved bundle, or ErrNotFound.
func (s *FileStore) LoadBundle(ctx context.Context) (*schema.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, bundleFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: bundle", ErrNotFound)
		}
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	b := schema.NewBundle()
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	if b.Definitions == nil {
		b.Definitions = map[string]*schema.Node{}
	}
	if b.Entities == nil {
		b.Entities = map[string]*schema.Node{}
	}
	return b, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
