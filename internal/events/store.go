package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Store persists the ordered event list as a single file
type Store struct {
	path     string
	seed     []Event
	logger   *zap.Logger
	validate *validator.Validate
	mu       sync.Mutex
}

// NewStore creates a store backed by path. seed is returned by Load until
// a list has been saved.
func NewStore(path string, seed []Event, logger *zap.Logger) *Store {
	return &Store{
		path:     path,
		seed:     seed,
		logger:   logger,
		validate: validator.New(),
	}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the event list. A missing file yields the seed list, and so does
// a file that cannot be decoded.
func (s *Store) Load() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("Events file not found, using seed list",
				zap.String("file", s.path),
				zap.Int("seed_count", len(s.seed)))
			return s.seedCopy(), nil
		}
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}

	evs, err := s.decode(data)
	if err != nil {
		s.logger.Warn("Failed to parse saved events, falling back to seed list",
			zap.String("file", s.path),
			zap.Error(err))
		return s.seedCopy(), nil
	}

	s.logger.Debug("Events loaded",
		zap.String("file", s.path),
		zap.Int("count", len(evs)))

	return evs, nil
}

// Save replaces the stored list with evs
func (s *Store) Save(evs []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(evs)
}

func (s *Store) save(evs []Event) error {
	if evs == nil {
		evs = []Event{}
	}
	data, err := s.encode(evs)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create events dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write events file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace events file: %w", err)
	}

	s.logger.Info("Events saved",
		zap.String("file", s.path),
		zap.Int("count", len(evs)))

	return nil
}

// Add validates ev, appends it to the stored list and saves
func (s *Store) Add(ev NewEvent) (Event, error) {
	ev.Name = strings.TrimSpace(ev.Name)
	if err := s.validate.Struct(ev); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Event{}, fmt.Errorf("%w: %s", ErrInvalidEvent, describe(verrs))
		}
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evs, err := s.load()
	if err != nil {
		return Event{}, err
	}

	created := Event{
		ID:    ev.ID,
		Name:  ev.Name,
		Date:  ev.Date,
		Color: ev.Color,
	}
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.Color == "" {
		created.Color = DefaultColor
	}

	if err := s.save(append(evs, created)); err != nil {
		return Event{}, err
	}
	return created, nil
}

// Remove deletes every event with the given id. It reports whether anything
// was removed and only writes the file in that case.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evs, err := s.load()
	if err != nil {
		return false, err
	}

	kept := make([]Event, 0, len(evs))
	for _, ev := range evs {
		if ev.ID != id {
			kept = append(kept, ev)
		}
	}
	if len(kept) == len(evs) {
		return false, nil
	}

	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (s *Store) encode(evs []Event) ([]byte, error) {
	if s.isYAML() {
		return yaml.Marshal(evs)
	}
	return json.MarshalIndent(evs, "", "  ")
}

func (s *Store) decode(data []byte) ([]Event, error) {
	var evs []Event
	if s.isYAML() {
		if err := yaml.Unmarshal(data, &evs); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(data, &evs); err != nil {
		return nil, err
	}
	if evs == nil {
		evs = []Event{}
	}
	return evs, nil
}

func (s *Store) seedCopy() []Event {
	out := make([]Event, len(s.seed))
	copy(out, s.seed)
	return out
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "hexcolor":
			parts = append(parts, fmt.Sprintf("%s must be a hex color, got %q", strings.ToLower(fe.Field()), fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(parts, ", ")
}
