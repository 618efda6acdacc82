package branch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// mergeLockFile lives under the project metadata directory so merges and
// syncs into a shared target are serialized across processes.
const mergeLockFile = ".tfmux/merge.lock"

// withMergeLock runs fn while holding the project's merge lock. Concurrent
// merges into the same repository would interleave index updates, so only
// one merge or sync runs per project at a time.
func (m *Manager) withMergeLock(ctx context.Context, fn func() error) error {
	lockPath := filepath.Join(m.projectPath, mergeLockFile)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire merge lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("merge lock is held by another operation")
	}
	defer func() {
		_ = fl.Unlock()
	}()

	return fn()
}
