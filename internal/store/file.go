package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/afero"
)

const fileExt = ".json"

// File keeps one file per key in a directory of an afero filesystem.
// Writes go to a temporary file first and are renamed into place.
type File struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// NewFile creates a file backend rooted at dir, creating it if needed.
func NewFile(fsys afero.Fs, dir string) (*File, error) {
	if err := fsys.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &File{fs: fsys, dir: dir}, nil
}

func (f *File) pathFor(key string) string {
	return path.Join(f.dir, url.PathEscape(key)+fileExt)
}

// Get implements KV.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	data, err := afero.ReadFile(f.fs, f.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements KV.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.pathFor(key)
	tmp := target + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, []byte(value), 0o600); err != nil {
		_ = f.fs.Remove(tmp)
		if errors.Is(err, syscall.ENOSPC) {
			return fmt.Errorf("set %q: %w: %w", key, ErrQuotaExceeded, err)
		}
		return fmt.Errorf("set %q: %w", key, err)
	}
	if err := f.fs.Rename(tmp, target); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove implements KV.
func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.fs.Remove(f.pathFor(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Keys implements Backend.
func (f *File) Keys(_ context.Context, prefix string) ([]string, error) {
	entries, err := afero.ReadDir(f.fs, f.dir)
	if err != nil {
		return nil, fmt.Errorf("list keys %q: %w", prefix, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil || !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (f *File) Close() error { return nil }
