package handbook

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mcd-community/handbook/internal/models"
)

// ErrSectionNotFound is returned when no section has the requested id.
var ErrSectionNotFound = errors.New("section not found")

// Store holds the current handbook. Readers get an immutable snapshot;
// Reload swaps in a freshly loaded handbook without mutating the old one.
type Store struct {
	path    string
	current atomic.Pointer[models.Handbook]
	logger  *zap.Logger

	mu        sync.Mutex
	listeners []func(*models.Handbook)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore loads the content at path, or the built-in content when path is empty.
func NewStore(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	hb, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(hb)
	return s, nil
}

// NewStaticStore wraps an already loaded handbook. Reload is a no-op.
func NewStaticStore(hb *models.Handbook) *Store {
	s := &Store{logger: zap.NewNop()}
	s.current.Store(hb)
	return s
}

// Load reads and parses a content file. An empty path loads the built-in content.
func Load(path string) (*models.Handbook, error) {
	if path == "" {
		return Default()
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	hb, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return hb, nil
}

// Path returns the content file path, empty for built-in content.
func (s *Store) Path() string {
	return s.path
}

// Handbook returns the current handbook snapshot.
func (s *Store) Handbook() *models.Handbook {
	return s.current.Load()
}

// Sections returns the current sections.
func (s *Store) Sections() []models.Section {
	return s.current.Load().Sections
}

// Section returns the section with the given id.
func (s *Store) Section(id string) (models.Section, error) {
	section, ok := s.current.Load().Section(id)
	if !ok {
		return models.Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	return section, nil
}

// OnReload registers fn to run after every successful reload.
func (s *Store) OnReload(fn func(*models.Handbook)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Reload loads the content file again and swaps it in. On failure the
// previous handbook stays active.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	hb, err := Load(s.path)
	if err != nil {
		s.logger.Warn("content reload failed, keeping previous content", zap.Error(err))
		return err
	}
	s.current.Store(hb)
	s.logger.Info("content reloaded",
		zap.String("path", s.path),
		zap.Int("sections", len(hb.Sections)),
	)

	s.mu.Lock()
	listeners := append([]func(*models.Handbook){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(hb)
	}
	return nil
}
