// Package fsys provides the read-only filesystem view the resolution
// pipeline runs against. Production code uses the OS filesystem; tests
// run against an in-memory filesystem with the same semantics.
package fsys

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS is the surface the resolution pipeline needs: directory listing,
// symlink-following stat, file reads, and path joining. Nothing here writes.
type FS interface {
	// ReadDir lists the immediate entries of a directory.
	ReadDir(path string) ([]os.FileInfo, error)

	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// ReadFile reads an entire file.
	ReadFile(path string) ([]byte, error)

	// Join joins path elements using the filesystem's separator.
	Join(elem ...string) string
}

type billyFS struct {
	fs billy.Filesystem
}

// NewOS returns an FS backed by the operating system, rooted at /.
// All paths passed to it must be absolute.
func NewOS() FS {
	return &billyFS{fs: osfs.New("/")}
}

func (b *billyFS) ReadDir(path string) ([]os.FileInfo, error) {
	list, err := b.fs.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("fsys: readdir %q: %w", path, err)
	}
	return list, nil
}

func (b *billyFS) Stat(path string) (os.FileInfo, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fsys: stat %q: %w", path, err)
	}
	return info, nil
}

func (b *billyFS) ReadFile(path string) ([]byte, error) {
	data, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("fsys: readfile %q: %w", path, err)
	}
	return data, nil
}

func (b *billyFS) Join(elem ...string) string {
	return b.fs.Join(elem...)
}

// Memory is an in-memory FS for tests and fixtures. It adds the two write
// operations needed to seed a directory tree.
type Memory struct {
	billyFS
}

// NewMemory returns an empty in-memory filesystem.
func NewMemory() *Memory {
	return &Memory{billyFS{fs: memfs.New()}}
}

// MkdirAll creates a directory and any missing parents.
func (m *Memory) MkdirAll(path string) error {
	if err := m.fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("fsys: mkdirall %q: %w", path, err)
	}
	return nil
}

// WriteFile writes a file, creating parent directories as needed.
func (m *Memory) WriteFile(path string, data []byte) error {
	if err := util.WriteFile(m.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("fsys: writefile %q: %w", path, err)
	}
	return nil
}
