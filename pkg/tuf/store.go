// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tuf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName = ".lock"
	lockTimeout  = 30 * time.Second
)

// diskCache persists validated TUF metadata and downloaded targets
// between process invocations, in a single directory shared by every
// caller on the machine. Concurrent processes coordinate through an
// advisory file lock held for the duration of Update; reads of
// already-cached files outside Update take no lock.
type diskCache struct {
	dir string
}

func newDiskCache(dir string) (*diskCache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating TUF cache directory: %w", err)
	}
	return &diskCache{dir: dir}, nil
}

// lock acquires the cache's advisory file lock for the duration of an
// update, bounded by ctx or lockTimeout, whichever is shorter.
func (c *diskCache) lock(ctx context.Context) (func(), error) {
	fl := flock.New(filepath.Join(c.dir, lockFileName))

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquiring TUF cache lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("acquiring TUF cache lock: timed out")
	}
	return func() { _ = fl.Unlock() }, nil
}

func (c *diskCache) metadataPath(name string) string {
	return filepath.Join(c.dir, "metadata", name)
}

func (c *diskCache) targetPath(name string) string {
	return filepath.Join(c.dir, "targets", name)
}

func (c *diskCache) readMetadata(name string) ([]byte, bool) {
	data, err := os.ReadFile(c.metadataPath(name))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *diskCache) writeMetadata(name string, data []byte) error {
	path := c.metadataPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *diskCache) readTarget(name string) ([]byte, bool) {
	data, err := os.ReadFile(c.targetPath(name))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *diskCache) writeTarget(name string, data []byte) error {
	path := c.targetPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// defaultCacheDir returns SIGSTORE_TUF_CACHE if set, otherwise
// ~/.sigstore/root, matching the cache layout cosign's own TUF client
// uses.
func defaultCacheDir() (string, error) {
	if dir := os.Getenv("SIGSTORE_TUF_CACHE"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".sigstore", "root"), nil
}
