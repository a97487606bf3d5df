// Package circuit persists per-plugin failure counters and implements the
// disable-after-three-failures breaker the dispatcher consults before every
// call.
package circuit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FailureThreshold is the number of consecutive recorded failures after
// which a plugin is disabled.
const FailureThreshold = 3

// State is one plugin's circuit bookkeeping, persisted verbatim.
type State struct {
	Failures      int     `json:"failures"`
	LastFailureTS float64 `json:"last_failure_ts"`
	Disabled      bool    `json:"disabled"`
}

// Store is a JSON-backed, mutex-guarded table of plugin spec -> State. The
// whole document is rewritten atomically on every mutation; a missing or
// corrupt file is treated as an empty store rather than a startup failure.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]*State
}

// Open loads (or initializes) the store at <baseDir>/data/state.json.
func Open(baseDir string) *Store {
	s := &Store{
		path: filepath.Join(baseDir, "data", "state.json"),
		data: map[string]*State{},
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	var loaded map[string]*State
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return s
	}
	s.data = loaded
	return s
}

// Get returns a copy of the plugin's state, or a zero-value State if none
// is recorded yet.
func (s *Store) Get(spec string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.data[spec]; ok {
		return *st
	}
	return State{}
}

// IsDisabled reports whether the plugin has tripped its breaker.
func (s *Store) IsDisabled(spec string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[spec]
	return ok && st.Disabled
}

// RecordFailure increments the plugin's failure count, stamps
// LastFailureTS, and disables it once FailureThreshold is reached.
func (s *Store) RecordFailure(spec string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[spec]
	if !ok {
		st = &State{}
		s.data[spec] = st
	}
	st.Failures++
	st.LastFailureTS = float64(time.Now().UnixNano()) / 1e9
	if st.Failures >= FailureThreshold {
		st.Disabled = true
	}
	s.save()
}

// Reset clears a plugin's circuit back to a fresh, enabled state.
func (s *Store) Reset(spec string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[spec] = &State{}
	s.save()
}

// save rewrites the whole document atomically: write to a temp file in the
// same directory, then rename over the target. Caller must hold s.mu.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "state-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path)
}
