// Package file implements the synchronous, append-only audit sink. Events are
// written as line-delimited JSON to a single log file, one writer at a time,
// so the output is safe to tail with log-shipping agents like Filebeat.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"audittrail/pkg/audit"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultDirectory = "./audit-logs"
	DefaultPrefix    = "audit"
	DefaultExtension = ".log"
)

// Config controls file sink behavior. It is consumed at construction and not
// re-read afterward.
type Config struct {
	// Directory is the target directory for the log file.
	Directory string

	// Prefix and Extension form the log file name: <Prefix><Extension>.
	Prefix    string
	Extension string

	// Overwrite replaces the file contents on every emit instead of appending.
	// Appending is the default.
	Overwrite bool

	// DisableAutoCreate fails construction with ErrDirectoryUnavailable when
	// the directory is missing instead of creating it.
	DisableAutoCreate bool

	// LockFile serializes writers across processes with an advisory flock on a
	// sibling .lock file. Within a process the sink's own mutex already
	// serializes writers.
	LockFile bool
}

func (c Config) withDefaults() Config {
	if c.Directory == "" {
		c.Directory = DefaultDirectory
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	return c
}

// Path returns the full log file path for this configuration.
func (c Config) Path() string {
	c = c.withDefaults()
	return filepath.Join(c.Directory, c.Prefix+c.Extension)
}

// Sink writes audit events to a local file. A per-instance mutex serializes
// all writes, so concurrent Emit calls are safe but throughput is bounded by
// one writer at a time.
type Sink struct {
	cfg  Config
	path string
	flk  *flock.Flock

	mu     sync.Mutex
	closed bool
}

// New validates the target directory and returns a ready sink. A missing
// directory is created unless DisableAutoCreate is set, in which case
// construction fails with ErrDirectoryUnavailable. Directory problems are
// surfaced here, not at emit time.
func New(cfg Config) (*Sink, error) {
	cfg = cfg.withDefaults()

	info, err := os.Stat(cfg.Directory)
	switch {
	case os.IsNotExist(err):
		if cfg.DisableAutoCreate {
			return nil, fmt.Errorf("%w: %s does not exist and auto-create is disabled",
				audit.ErrDirectoryUnavailable, cfg.Directory)
		}
		if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", audit.ErrDirectoryUnavailable, cfg.Directory, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: stat %s: %w", audit.ErrDirectoryUnavailable, cfg.Directory, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", audit.ErrDirectoryUnavailable, cfg.Directory)
	}

	if !writable(cfg.Directory) {
		return nil, fmt.Errorf("%w: %s is not writable", audit.ErrDirectoryUnavailable, cfg.Directory)
	}

	s := &Sink{cfg: cfg, path: cfg.Path()}
	if cfg.LockFile {
		s.flk = flock.New(s.path + ".lock")
	}
	return s, nil
}

// Path returns the target log file path.
func (s *Sink) Path() string { return s.path }

// Emit serializes the event and appends it as one newline-terminated line.
// The write lock is held for the whole open-write-close cycle so lines from
// concurrent callers never interleave.
func (s *Sink) Emit(_ context.Context, ev audit.Event) error {
	line, err := audit.Marshal(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return audit.ErrClosed
	}

	if s.flk != nil {
		if err := s.flk.Lock(); err != nil {
			return fmt.Errorf("%w: lock %s: %w", audit.ErrIO, s.flk.Path(), err)
		}
		defer func() { _ = s.flk.Unlock() }()
	}

	flags := os.O_CREATE | os.O_WRONLY
	if s.cfg.Overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(s.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", audit.ErrIO, s.path, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %w", audit.ErrIO, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", audit.ErrIO, s.path, err)
	}
	return nil
}

// Ready reports whether the sink is open and the target directory still
// exists, is a directory, and is writable.
func (s *Sink) Ready(_ context.Context) bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return false
	}

	info, err := os.Stat(s.cfg.Directory)
	if err != nil || !info.IsDir() {
		return false
	}
	return writable(s.cfg.Directory)
}

// Close marks the sink closed. It takes the write lock so it serializes
// against in-flight emits; subsequent Emit calls fail with ErrClosed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// writable probes the directory with a throwaway temp file. os.Stat permission
// bits are not a reliable writability signal across platforms and mounts.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".audit-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
