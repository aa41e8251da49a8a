package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultDir is the cache directory relative to the working directory.
	DefaultDir = "playwright/.auth"
	// DefaultLockTimeout bounds how long a caller waits for another process
	// that is logging in with the same key.
	DefaultLockTimeout = 2 * time.Minute
	// DefaultLockRetryDelay is the polling interval for the file lock.
	DefaultLockRetryDelay = 100 * time.Millisecond
	// DefaultLoginTimeout bounds a shared login, including the wait for the lock.
	DefaultLoginTimeout = 5 * time.Minute

	fileExt = ".json"
	lockExt = ".lock"
)

// ErrLockTimeout is returned when the cache file lock could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for session lock")

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Key identifies one cached session.
type Key struct {
	Role        string
	Environment string
}

func (k Key) String() string {
	return k.role() + "." + k.environment()
}

func (k Key) role() string {
	return sanitize(k.Role, "anonymous")
}

func (k Key) environment() string {
	return sanitize(k.Environment, "default")
}

func sanitize(s, fallback string) string {
	s = strings.Trim(unsafeKeyChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if s == "" {
		return fallback
	}
	return s
}

// LoginFunc performs a full login and returns the serialized storage state.
type LoginFunc func(ctx context.Context) ([]byte, error)

// Result describes how Ensure satisfied a request.
type Result struct {
	// Path of the storage state file.
	Path string
	// Hit is true when the file already existed and no login ran.
	Hit bool
	// Shared is true when the caller waited for a concurrent login of the same key.
	Shared bool
}

// Entry is one cached storage state on disk.
type Entry struct {
	Key     Key
	Path    string
	Size    int64
	ModTime time.Time
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Dir is the cache directory.
	// Default: DefaultDir
	Dir string
	// Logger receives cache hits (debug) and logins (info).
	// Default: slog.Default()
	Logger *slog.Logger
	// LockTimeout bounds the wait for the cross-process lock.
	// Default: DefaultLockTimeout
	LockTimeout time.Duration
	// LockRetryDelay is the lock polling interval.
	// Default: DefaultLockRetryDelay
	LockRetryDelay time.Duration
	// LoginTimeout bounds one login shared by all callers of a key. A login
	// is not tied to the context of the caller that started it.
	// Default: DefaultLoginTimeout
	LoginTimeout time.Duration
}

// Store caches authenticated storage states per (role, environment).
//
// A login runs at most once per key for the lifetime of the cache file:
// concurrent callers in one process share a single login, callers in other
// processes wait on an advisory lock next to the cache file, and the file is
// written by rename so readers never see partial content. Cached files are
// never validated; delete them to force a fresh login.
type Store struct {
	dir            string
	logger         *slog.Logger
	lockTimeout    time.Duration
	lockRetryDelay time.Duration
	loginTimeout   time.Duration

	logins singleflight.Group
}

// NewStore creates a Store. The directory is created lazily.
func NewStore(opts StoreOptions) *Store {
	s := &Store{
		dir:            opts.Dir,
		logger:         opts.Logger,
		lockTimeout:    opts.LockTimeout,
		lockRetryDelay: opts.LockRetryDelay,
		loginTimeout:   opts.LoginTimeout,
	}
	if s.dir == "" {
		s.dir = DefaultDir
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.lockTimeout == 0 {
		s.lockTimeout = DefaultLockTimeout
	}
	if s.lockRetryDelay == 0 {
		s.lockRetryDelay = DefaultLockRetryDelay
	}
	if s.loginTimeout == 0 {
		s.loginTimeout = DefaultLoginTimeout
	}
	return s
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the deterministic cache file path for key.
func (s *Store) Path(key Key) string {
	return filepath.Join(s.dir, key.String()+fileExt)
}

// Ensure makes sure a storage state for key exists, running login if it does not.
//
// Cancelling ctx only stops this caller from waiting; a login already in
// progress keeps running for the other callers of the same key.
func (s *Store) Ensure(ctx context.Context, key Key, login LoginFunc) (Result, error) {
	path := s.Path(key)
	if fileExists(path) {
		s.logger.Debug("Session cache hit", slog.String("key", key.String()), slog.String("path", path))
		return Result{Path: path, Hit: true}, nil
	}

	ch := s.logins.DoChan(path, func() (any, error) {
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loginTimeout)
		defer cancel()
		return s.create(loginCtx, key, path, login)
	})
	select {
	case <-ctx.Done():
		return Result{Path: path}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{Path: path}, res.Err
		}
		result := res.Val.(Result)
		result.Shared = res.Shared
		return result, nil
	}
}

func (s *Store) create(ctx context.Context, key Key, path string, login LoginFunc) (Result, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{}, fmt.Errorf("creating session cache dir: %w", err)
	}

	lock := flock.New(path + lockExt)
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, s.lockRetryDelay)
	if err != nil && ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if err != nil || !locked {
		return Result{}, fmt.Errorf("%w: %s", ErrLockTimeout, key)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// Another process may have finished the login while we waited.
	if fileExists(path) {
		s.logger.Debug("Session created by another process", slog.String("key", key.String()))
		return Result{Path: path, Hit: true}, nil
	}

	start := time.Now()
	state, err := login(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("logging in as %s: %w", key, err)
	}
	if len(state) == 0 {
		return Result{}, fmt.Errorf("logging in as %s: empty storage state", key)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(state)); err != nil {
		return Result{}, fmt.Errorf("writing storage state: %w", err)
	}

	s.logger.Info("Session stored",
		slog.String("key", key.String()),
		slog.String("path", path),
		slog.Duration("login", time.Since(start)),
	)
	return Result{Path: path}, nil
}

// Invalidate deletes the cached state of key. Missing files are ignored.
func (s *Store) Invalidate(key Key) error {
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session %s: %w", key, err)
	}
	return nil
}

// Entries lists the cached states, sorted by key.
func (s *Store) Entries() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session cache dir: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		role, env, ok := strings.Cut(strings.TrimSuffix(name, fileExt), ".")
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Key:     Key{Role: role, Environment: env},
			Path:    filepath.Join(s.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key.String() < entries[j].Key.String()
	})
	return entries, nil
}

// Clear invalidates every cached state.
func (s *Store) Clear() error {
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	var errs []error
	for _, entry := range entries {
		errs = append(errs, s.Invalidate(entry.Key))
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
