package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFile       = ".lock"
	lockRetryDelay = 50 * time.Millisecond
)

// DiskStore keeps one file per vector in a directory. Writers from several
// processes are serialized with a file lock.
type DiskStore struct {
	dir  string
	lock *flock.Flock
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskStore{dir: dir, lock: flock.New(filepath.Join(dir, lockFile))}, nil
}

// Get reads the vector stored under key.
func (d *DiskStore) Get(_ context.Context, key string) ([]float32, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	vec, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Put writes the vector atomically under the directory lock.
func (d *DiskStore) Put(ctx context.Context, key string, vec []float32) error {
	locked, err := d.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return errors.New("cache lock is held by another process")
	}
	defer func() { _ = d.lock.Unlock() }()

	path := d.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encode(vec), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (d *DiskStore) path(key string) string {
	return filepath.Join(d.dir, key+".bin")
}
