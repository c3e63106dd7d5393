// Package prefs holds the dashboard preferences: theme, version filter and
// catalog order. They are loaded once at startup and written only when they
// change.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jdziat/robodash/internal/catalog"
)

// Query parameter names.
const (
	ParamDark    = "dark"
	ParamVersion = "version"
	ParamOrder   = "order"
)

// State is the set of user preferences.
type State struct {
	DarkMode bool   `yaml:"dark_mode" json:"dark_mode"`
	Version  string `yaml:"version" json:"version"`
	Order    string `yaml:"order" json:"order"`
}

// Default returns the preferences of a first run.
func Default() State {
	return State{Version: catalog.VersionAll, Order: catalog.OrderRecent}
}

// Normalize replaces unknown values with the defaults.
func (s State) Normalize() State {
	if !catalog.ValidVersion(s.Version) {
		s.Version = catalog.VersionAll
	}
	if !catalog.ValidOrder(s.Order) {
		s.Order = catalog.OrderRecent
	}
	return s
}

// Query encodes the state as URL query parameters.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set(ParamDark, strconv.FormatBool(s.DarkMode))
	q.Set(ParamVersion, s.Version)
	q.Set(ParamOrder, s.Order)
	return q
}

// WithQuery returns s updated from q. Missing and invalid values are
// ignored.
func (s State) WithQuery(q url.Values) State {
	if v := q.Get(ParamDark); v != "" {
		if dark, err := strconv.ParseBool(v); err == nil {
			s.DarkMode = dark
		}
	}
	if v := q.Get(ParamVersion); catalog.ValidVersion(v) {
		s.Version = v
	}
	if v := q.Get(ParamOrder); catalog.ValidOrder(v) {
		s.Order = v
	}
	return s
}

// CatalogQuery combines the preferences with a search string.
func (s State) CatalogQuery(search string) catalog.Query {
	return catalog.Query{Search: search, Version: s.Version, Order: s.Order}.Normalize()
}

// Store persists State to a YAML file.
type Store struct {
	path string

	mu    sync.Mutex
	state State
}

// Open loads the store at path. A missing file yields the defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path, state: Default()}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	st := Default()
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	s.state = st.Normalize()
	return s, nil
}

// Path returns the backing file path. It is empty for an in-memory store.
func (s *Store) Path() string { return s.path }

// State returns the current preferences.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Save normalizes st, writes it and makes it current. Saving an unchanged
// state does not touch the file.
func (s *Store) Save(st State) error {
	st = st.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if st == s.state {
		return nil
	}
	if s.path != "" {
		if err := writeAtomic(s.path, st); err != nil {
			return err
		}
	}
	s.state = st
	return nil
}

// writeAtomic writes st to a temporary file next to path and renames it into
// place.
func writeAtomic(path string, st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("create preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
