package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/networkteam/cvsuite/session"
)

type countingLogin struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (l *countingLogin) login(ctx context.Context) ([]byte, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	return []byte(`{"cookies":[],"origins":[]}`), nil
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(session.StoreOptions{
		Dir:            filepath.Join(t.TempDir(), "auth"),
		LockTimeout:    5 * time.Second,
		LockRetryDelay: 10 * time.Millisecond,
	})
}

func TestStore_Path(t *testing.T) {
	store := session.NewStore(session.StoreOptions{Dir: "playwright/.auth"})

	assert.Equal(t, filepath.Join("playwright/.auth", "shadow-sbu.qa.json"), store.Path(session.Key{Role: "shadow-sbu", Environment: "QA"}))
	assert.Equal(t, filepath.Join("playwright/.auth", "employee.default.json"), store.Path(session.Key{Role: "employee"}))
	assert.Equal(t, filepath.Join("playwright/.auth", "super-admin.stage-2.json"), store.Path(session.Key{Role: "Super Admin", Environment: "stage 2"}))
}

func TestStore_EnsureLogsInOnce(t *testing.T) {
	store := newTestStore(t)
	login := &countingLogin{}
	key := session.Key{Role: "employee", Environment: "qa"}

	first, err := store.Ensure(context.Background(), key, login.login)
	require.NoError(t, err)
	assert.False(t, first.Hit)
	assert.FileExists(t, first.Path)

	second, err := store.Ensure(context.Background(), key, login.login)
	require.NoError(t, err)
	assert.True(t, second.Hit)
	assert.Equal(t, first.Path, second.Path)

	assert.EqualValues(t, 1, login.calls.Load())
}

func TestStore_EnsureRecreatesDeletedFile(t *testing.T) {
	store := newTestStore(t)
	login := &countingLogin{}
	key := session.Key{Role: "shadow-sbu", Environment: "qa"}

	res, err := store.Ensure(context.Background(), key, login.login)
	require.NoError(t, err)

	require.NoError(t, os.Remove(res.Path))

	res, err = store.Ensure(context.Background(), key, login.login)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.FileExists(t, res.Path)
	assert.EqualValues(t, 2, login.calls.Load())
}

func TestStore_EnsureConcurrentCallersShareLogin(t *testing.T) {
	store := newTestStore(t)
	login := &countingLogin{delay: 50 * time.Millisecond}
	key := session.Key{Role: "admin", Environment: "qa"}

	var wg sync.WaitGroup
	results := make([]session.Result, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.Ensure(context.Background(), key, login.login)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, store.Path(key), results[i].Path)
	}
	assert.EqualValues(t, 1, login.calls.Load())
}

func TestStore_EnsureCancelledCallerDoesNotAbortSharedLogin(t *testing.T) {
	store := newTestStore(t)
	key := session.Key{Role: "employee", Environment: "qa"}

	var calls atomic.Int32
	var startOnce sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	login := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		startOnce.Do(func() { close(started) })
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []byte(`{"cookies":[],"origins":[]}`), nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := store.Ensure(ctxA, key, login)
		errA <- err
	}()
	<-started

	type outcome struct {
		res session.Result
		err error
	}
	doneB := make(chan outcome, 1)
	go func() {
		res, err := store.Ensure(context.Background(), key, login)
		doneB <- outcome{res, err}
	}()
	// Give the second caller time to join the running login.
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case b := <-doneB:
		require.NoError(t, b.err)
		assert.FileExists(t, b.res.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("waiting caller did not return")
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestStore_EnsureLoginTimeout(t *testing.T) {
	store := session.NewStore(session.StoreOptions{
		Dir:            t.TempDir(),
		LockRetryDelay: 10 * time.Millisecond,
		LoginTimeout:   50 * time.Millisecond,
	})
	key := session.Key{Role: "employee", Environment: "qa"}
	login := &countingLogin{delay: time.Minute}

	_, err := store.Ensure(context.Background(), key, login.login)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoFileExists(t, store.Path(key))
}

func TestStore_EnsureSeparateStoresSameDir(t *testing.T) {
	dir := t.TempDir()
	login := &countingLogin{delay: 50 * time.Millisecond}
	key := session.Key{Role: "manager", Environment: "qa"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate stores do not share singleflight, only the file lock.
			store := session.NewStore(session.StoreOptions{Dir: dir, LockRetryDelay: 5 * time.Millisecond})
			_, err := store.Ensure(context.Background(), key, login.login)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, login.calls.Load())
}

func TestStore_EnsureLoginErrorWritesNothing(t *testing.T) {
	store := newTestStore(t)
	loginErr := errors.New("bad credentials")
	login := &countingLogin{err: loginErr}
	key := session.Key{Role: "employee", Environment: "qa"}

	_, err := store.Ensure(context.Background(), key, login.login)
	require.Error(t, err)
	assert.ErrorIs(t, err, loginErr)
	assert.Contains(t, err.Error(), "employee.qa")
	assert.NoFileExists(t, store.Path(key))
}

func TestStore_EnsureEmptyStateIsError(t *testing.T) {
	store := newTestStore(t)
	key := session.Key{Role: "employee", Environment: "qa"}

	_, err := store.Ensure(context.Background(), key, func(context.Context) ([]byte, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.NoFileExists(t, store.Path(key))
}

func TestStore_EnsureLockTimeout(t *testing.T) {
	dir := t.TempDir()
	store := session.NewStore(session.StoreOptions{
		Dir:            dir,
		LockTimeout:    100 * time.Millisecond,
		LockRetryDelay: 10 * time.Millisecond,
	})
	key := session.Key{Role: "employee", Environment: "qa"}

	// Hold the lock as another process would.
	holder := newTestFlock(t, store.Path(key)+".lock")
	defer holder()

	login := &countingLogin{}
	_, err := store.Ensure(context.Background(), key, login.login)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrLockTimeout)
	assert.EqualValues(t, 0, login.calls.Load())
}

func TestStore_EntriesAndClear(t *testing.T) {
	store := newTestStore(t)
	login := &countingLogin{}

	for _, key := range []session.Key{
		{Role: "shadow-sbu", Environment: "qa"},
		{Role: "employee", Environment: "qa"},
		{Role: "employee", Environment: "prod"},
	} {
		_, err := store.Ensure(context.Background(), key, login.login)
		require.NoError(t, err)
	}
	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o644))

	entries, err := store.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "employee.prod", entries[0].Key.String())
	assert.Equal(t, "employee.qa", entries[1].Key.String())
	assert.Equal(t, "shadow-sbu.qa", entries[2].Key.String())
	assert.Positive(t, entries[0].Size)

	require.NoError(t, store.Invalidate(session.Key{Role: "employee", Environment: "qa"}))
	entries, err = store.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, store.Clear())
	entries, err = store.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_EntriesMissingDir(t *testing.T) {
	store := session.NewStore(session.StoreOptions{Dir: filepath.Join(t.TempDir(), "missing")})

	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, store.Invalidate(session.Key{Role: "employee"}))
}

func newTestFlock(t *testing.T, path string) (release func()) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	lock := flock.New(path)
	require.NoError(t, lock.Lock())
	return func() {
		_ = lock.Unlock()
	}
}

var safeFileName = regexp.MustCompile(`^[a-z0-9-]+\.[a-z0-9-]+\.json$`)

func TestKey_PathProperties(t *testing.T) {
	store := session.NewStore(session.StoreOptions{Dir: "auth"})

	rapid.Check(t, func(t *rapid.T) {
		key := session.Key{
			Role:        rapid.String().Draw(t, "role"),
			Environment: rapid.String().Draw(t, "env"),
		}

		path := store.Path(key)
		if path != store.Path(key) {
			t.Fatalf("path not deterministic for %#v", key)
		}
		if filepath.Dir(path) != "auth" {
			t.Fatalf("path %q escapes the cache dir", path)
		}
		if !safeFileName.MatchString(filepath.Base(path)) {
			t.Fatalf("unsafe file name %q", filepath.Base(path))
		}
	})
}
