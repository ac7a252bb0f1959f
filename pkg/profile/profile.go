// Package profile stores named NSP connection profiles.
//
// Profiles keep the non-secret parts of a connection (server, username,
// proxy, TLS mode) in a single TOML file so repeat fetches do not need the
// full flag set. Passwords are never written; they come from the
// environment or an interactive prompt at fetch time.
//
// The file lives at ~/.config/topolab/profiles.toml by default:
//
//	default = "lab"
//
//	[profiles.lab]
//	server = "nsp.lab.example.com"
//	username = "admin"
//	insecure = true
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// Sentinel errors for profile operations.
var (
	// ErrNotFound is returned when a named profile does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrNoDefault is returned when no profile is selected and no default
	// is set.
	ErrNoDefault = errors.New("no default profile set")
)

// Profile is one saved NSP connection. It intentionally has no password
// field.
type Profile struct {
	Server   string `toml:"server"`
	Username string `toml:"username,omitempty"`
	Network  string `toml:"network,omitempty"`
	Proxy    string `toml:"proxy,omitempty"`
	Insecure bool   `toml:"insecure,omitempty"`
	MongoURI string `toml:"mongo_uri,omitempty"` // archive backend, optional
}

// File is the on-disk shape of the profile store. Default must stay the
// first field so the encoder emits it before the profile tables.
type File struct {
	Default  string             `toml:"default,omitempty"`
	Profiles map[string]Profile `toml:"profiles,omitempty"`
}

// Store reads and writes one profile file. The config directory is created
// with 0700 and the file with 0600 because usernames and server addresses
// are mildly sensitive.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given file path.
// An empty path defaults to ~/.config/topolab/profiles.toml.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "topolab", "profiles.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the profile file path.
func (s *Store) Path() string { return s.path }

// Load reads the profile file. A missing file yields an empty File.
func (s *Store) Load() (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the named profile. An empty name selects the default.
func (s *Store) Get(name string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return Profile{}, err
	}
	if name == "" {
		if f.Default == "" {
			return Profile{}, ErrNoDefault
		}
		name = f.Default
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// Save stores the profile under name. The first profile saved becomes the
// default; makeDefault forces it for later ones.
func (s *Store) Save(name string, p Profile, makeDefault bool) error {
	if name == "" {
		return errors.New("profile name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	f.Profiles[name] = p
	if makeDefault || f.Default == "" {
		f.Default = name
	}
	return s.write(f)
}

// Delete removes the named profile. Deleting the default clears the
// default selection.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := f.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(f.Profiles, name)
	if f.Default == name {
		f.Default = ""
	}
	return s.write(f)
}

// SetDefault marks an existing profile as the default.
func (s *Store) SetDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := f.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	f.Default = name
	return s.write(f)
}

// Names returns the stored profile names in sorted order.
func (s *Store) Names() ([]string, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) load() (*File, error) {
	f := &File{Profiles: make(map[string]Profile)}
	if _, err := toml.DecodeFile(s.path, f); err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if f.Profiles == nil {
		f.Profiles = make(map[string]Profile)
	}
	return f, nil
}

func (s *Store) write(f *File) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
