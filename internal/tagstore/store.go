// Package tagstore persists the mapping from generated order references to
// caller-supplied tags, scoped to a trading day. Two namespaces live side by
// side: pending entrusts keyed by correlation token, and acknowledged orders
// keyed by exchange order id. Every write is durable immediately so a process
// crash between requests loses nothing.
package tagstore

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/pebble"
)

const dayMarkerKey = "marker:date"

// Store is a per-(broker, user) durable key-value store.
type Store struct {
	db   *pebble.DB
	path string
}

// Open opens (creating if needed) the store for one broker/user pair under
// the given data directory.
func Open(dir, broker, user string) (*Store, error) {
	path := filepath.Join(dir, broker, user)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open tag store at %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path reports where the store lives on disk.
func (s *Store) Path() string { return s.path }

// Read returns the value for key in section, or def when absent.
func (s *Store) Read(section, key, def string) string {
	val, closer, err := s.db.Get(storeKey(section, key))
	if err != nil {
		return def
	}
	defer closer.Close()
	out := make([]byte, len(val))
	copy(out, val)
	return string(out)
}

// Write stores key -> value in section, synced to disk before returning.
func (s *Store) Write(section, key, value string) error {
	if err := s.db.Set(storeKey(section, key), []byte(value), pebble.Sync); err != nil {
		return fmt.Errorf("failed to write tag %s/%s: %w", section, key, err)
	}
	return nil
}

// ClearSection removes every key in a section.
func (s *Store) ClearSection(section string) error {
	lower := []byte(section + ":")
	upper := []byte(section + ";") // ';' is the byte after ':'
	if err := s.db.DeleteRange(lower, upper, pebble.Sync); err != nil {
		return fmt.Errorf("failed to clear section %s: %w", section, err)
	}
	return nil
}

// Day returns the stored trading-day marker, zero when unset.
func (s *Store) Day() uint32 {
	v, closer, err := s.db.Get([]byte(dayMarkerKey))
	if err != nil {
		return 0
	}
	defer closer.Close()
	day, _ := strconv.ParseUint(string(v), 10, 32)
	return uint32(day)
}

// SetDay rewrites the trading-day marker.
func (s *Store) SetDay(day uint32) error {
	if err := s.db.Set([]byte(dayMarkerKey), []byte(strconv.FormatUint(uint64(day), 10)), pebble.Sync); err != nil {
		return fmt.Errorf("failed to write day marker: %w", err)
	}
	return nil
}

// Rollover compares the stored day marker with the given trading day. On
// mismatch it clears the given sections wholesale and rewrites the marker,
// reporting whether a reset happened.
func (s *Store) Rollover(day uint32, sections ...string) (bool, error) {
	if s.Day() == day {
		return false, nil
	}
	for _, sec := range sections {
		if err := s.ClearSection(sec); err != nil {
			return false, err
		}
	}
	if err := s.SetDay(day); err != nil {
		return false, err
	}
	return true, nil
}

func storeKey(section, key string) []byte {
	return []byte(section + ":" + key)
}
