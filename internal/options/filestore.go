package options

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// RecordVersion is the schema version written with every options record.
const RecordVersion = "1.0.0"

// supportedRecords is the range of record versions this build can read.
const supportedRecords = "^1.0.0"

// record is the on-disk shape of a persisted options entry.
type record struct {
	Version string `yaml:"version"`
	Options `yaml:",inline"`
}

// compile-time interface conformance check.
var _ Accessor = (*FileStore)(nil)

// FileStore is a session-scoped Accessor persisted as YAML under a state
// directory. Each session owns one file: <dir>/<session>/resource-list-options.yaml.
//
// Get always re-reads the file so that changes made by another process are
// observed. Unreadable, malformed or incompatible records yield defaults.
type FileStore struct {
	path   string
	logger *slog.Logger
	subs   notifier
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLogger sets the logger used for recovery warnings.
func WithLogger(logger *slog.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// NewFileStore creates a store for session under dir.
func NewFileStore(dir, session string, opts ...FileStoreOption) (*FileStore, error) {
	if err := ValidateSession(session); err != nil {
		return nil, err
	}

	s := &FileStore{
		path:   filepath.Join(dir, session, Key+".yaml"),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// ValidateSession rejects session names that are not a single path segment.
func ValidateSession(session string) error {
	if session == "" || session == "." || session == ".." ||
		strings.ContainsAny(session, `/\`) {
		return fmt.Errorf("invalid session name %q", session)
	}

	return nil
}

// Path returns the file backing this store.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the persisted options, or the defaults when none are usable.
func (s *FileStore) Get() Options {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("reading options, using defaults",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}

		return Default()
	}

	return s.decode(data)
}

// decode parses a record, recovering field by field where possible.
func (s *FileStore) decode(data []byte) Options {
	var rec record

	if err := yaml.Unmarshal(data, &rec); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			s.logger.Warn("malformed options record, using defaults",
				slog.String("path", s.path), slog.String("error", err.Error()))

			return Default()
		}

		// Fields that did decode are kept; the rest stay at their defaults.
		s.logger.Warn("ignoring malformed options fields",
			slog.String("path", s.path), slog.String("error", err.Error()))
	}

	if !compatible(rec.Version) {
		s.logger.Warn("unsupported options record version, using defaults",
			slog.String("path", s.path), slog.String("version", rec.Version))

		return Default()
	}

	return rec.Options
}

// compatible reports whether a record version can be read. Records written
// before versioning carry no version and are accepted.
func compatible(version string) bool {
	if version == "" {
		return true
	}

	c, err := semver.NewConstraint(supportedRecords)
	if err != nil {
		return false
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}

	return c.Check(v)
}

// Set persists o and notifies subscribers. Write failures are logged; the
// subscribers still observe the new value.
func (s *FileStore) Set(o Options) {
	if err := s.Save(o); err != nil {
		s.logger.Error("persisting options", slog.String("path", s.path), slog.String("error", err.Error()))
	}

	s.subs.notify(o)
}

// Save writes o to disk atomically without notifying subscribers.
func (s *FileStore) Save(o Options) error {
	data, err := yaml.Marshal(record{Version: RecordVersion, Options: o})
	if err != nil {
		return fmt.Errorf("marshaling options: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+Key+"-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}

// Reset removes the persisted record and notifies subscribers with the
// defaults.
func (s *FileStore) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", s.path, err)
	}

	s.subs.notify(Default())

	return nil
}

// Subscribe registers fn for change notifications made through this store.
func (s *FileStore) Subscribe(fn func(Options)) func() {
	return s.subs.add(fn)
}
