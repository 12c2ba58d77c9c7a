// Package projectlock serializes shadowkit processes that mutate the same
// project. Sweeps, watch mode, and lifecycle commands hold an advisory file
// lock under <state_dir>/locks for the duration of their work.
package projectlock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the project lock.
var ErrLocked = errors.New("project is locked by another shadowkit process")

const retryDelay = 250 * time.Millisecond

// Lock is a held project lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// PathFor returns the lock file used for projectRoot. The file name carries
// the project directory name for readability and a digest of the absolute
// path so two projects with the same name do not share a lock.
func PathFor(lockDir, projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	sum := sha256.Sum256([]byte(abs))
	name := sanitize(filepath.Base(abs))
	return filepath.Join(lockDir, name+"-"+hex.EncodeToString(sum[:4])+".lock")
}

// Acquire takes the lock for projectRoot. With timeout <= 0 it fails
// immediately when the lock is held; otherwise it retries until the timeout
// or ctx ends.
func Acquire(ctx context.Context, lockDir, projectRoot string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := PathFor(lockDir, projectRoot)
	fl := flock.New(path)

	var (
		ok  bool
		err error
	)
	if timeout <= 0 {
		ok, err = fl.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ok, err = fl.TryLockContext(waitCtx, retryDelay)
		if err != nil && waitCtx.Err() != nil && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "project"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
