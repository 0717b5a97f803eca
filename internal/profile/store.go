package profile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/iiroan/backlight/internal/jsonfile"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrExists      = errors.New("profile already exists")
	ErrLastProfile = errors.New("at least one profile must remain")
	ErrEmptyName   = errors.New("profile name cannot be empty")
)

// Origin records what Load found on disk.
type Origin int

const (
	// OriginDefault means nothing usable was on disk.
	OriginDefault Origin = iota
	// OriginFile means a profiles document was read.
	OriginFile
	// OriginLegacy means a single root-level profile was read.
	OriginLegacy
)

// Store is the persisted set of named profiles and the active pointer.
type Store struct {
	Active   string             `json:"active"`
	Profiles map[string]Profile `json:"profiles"`

	origin Origin
}

// NewStore returns a store holding only the default profile.
func NewStore() *Store {
	return &Store{
		Active:   DefaultName,
		Profiles: map[string]Profile{DefaultName: Default()},
	}
}

// Load reads the store at path. It never fails: a missing, corrupt or
// foreign document yields a store with a single default profile.
func Load(path string) *Store {
	raw, err := jsonfile.ReadObject(path)
	if err != nil || len(raw) == 0 {
		return NewStore()
	}
	return FromRaw(raw)
}

// FromRaw builds a store from a decoded JSON object.
func FromRaw(raw map[string]any) *Store {
	if len(raw) == 0 {
		return NewStore()
	}

	profiles, ok := raw["profiles"].(map[string]any)
	if !ok {
		// root-level fields are an older single-profile layout
		s := NewStore()
		s.Profiles[DefaultName] = Sanitize(raw)
		s.origin = OriginLegacy
		return s
	}

	s := &Store{Profiles: make(map[string]Profile, len(profiles)), origin: OriginFile}
	for name, data := range profiles {
		s.Profiles[name] = Sanitize(data)
	}
	if len(s.Profiles) == 0 {
		s.Profiles[DefaultName] = Default()
	}

	active, _ := raw["active"].(string)
	if _, ok := s.Profiles[active]; !ok || active == "" {
		active = s.Names()[0]
	}
	s.Active = active
	return s
}

// Origin reports what the store was loaded from.
func (s *Store) Origin() Origin {
	return s.origin
}

// Save writes the store to path atomically.
func (s *Store) Save(path string) error {
	s.ensureValid()
	if err := jsonfile.WriteAtomic(path, s); err != nil {
		return fmt.Errorf("saving profiles: %w", err)
	}
	return nil
}

// Names returns profile names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the named profile.
func (s *Store) Get(name string) (Profile, error) {
	p, ok := s.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Has reports whether name exists.
func (s *Store) Has(name string) bool {
	_, ok := s.Profiles[name]
	return ok
}

// ActiveProfile returns the active name and its profile.
func (s *Store) ActiveProfile() (string, Profile) {
	s.ensureValid()
	return s.Active, s.Profiles[s.Active]
}

// SetActive points the store at an existing profile.
func (s *Store) SetActive(name string) error {
	if !s.Has(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.Active = name
	return nil
}

// Create adds a default profile under name and makes it active.
func (s *Store) Create(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if s.Has(name) {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	s.Profiles[name] = Default()
	s.Active = name
	return nil
}

// Put stores p under name, overwriting any existing entry, and makes it active.
func (s *Store) Put(name string, p Profile) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if s.Profiles == nil {
		s.Profiles = map[string]Profile{}
	}
	s.Profiles[name] = p.Normalize()
	s.Active = name
	return nil
}

// Rename moves a profile to a new name, following the active pointer.
func (s *Store) Rename(from, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrEmptyName
	}
	p, ok := s.Profiles[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, from)
	}
	if from == to {
		return nil
	}
	if s.Has(to) {
		return fmt.Errorf("%w: %q", ErrExists, to)
	}
	delete(s.Profiles, from)
	s.Profiles[to] = p
	if s.Active == from {
		s.Active = to
	}
	return nil
}

// Delete removes a profile. The last remaining profile cannot be deleted.
// Deleting the active profile activates the first remaining name.
func (s *Store) Delete(name string) error {
	if !s.Has(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if len(s.Profiles) <= 1 {
		return ErrLastProfile
	}
	delete(s.Profiles, name)
	if s.Active == name {
		s.Active = s.Names()[0]
	}
	return nil
}

func (s *Store) ensureValid() {
	if len(s.Profiles) == 0 {
		s.Profiles = map[string]Profile{DefaultName: Default()}
	}
	if !s.Has(s.Active) {
		s.Active = s.Names()[0]
	}
}
