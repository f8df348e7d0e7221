package access

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
)

// ErrUnavailable reports that another process holds an exclusive lock on the file.
var ErrUnavailable = errors.New("access token unavailable")

// Token is a scoped grant over one source file.
type Token struct {
	path     string
	lock     *flock.Flock
	once     sync.Once
	released atomic.Bool
	err      error
}

// Acquire takes a shared lock on path without blocking. The file is opened
// read-only and must already exist.
func Acquire(path string) (*Token, error) {
	lock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	ok, err := lock.TryRLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", path, ErrUnavailable)
	}
	return &Token{path: path, lock: lock}, nil
}

// Path returns the file the token covers.
func (t *Token) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Release drops the lock. Subsequent calls return the first call's result.
func (t *Token) Release() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		t.released.Store(true)
		t.err = t.lock.Unlock()
	})
	return t.err
}

// Released reports whether Release has run.
func (t *Token) Released() bool {
	return t != nil && t.released.Load()
}
