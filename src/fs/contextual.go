// Package fs resolves operator-supplied relative paths, like a config
// file's seed_file or rego_file, against a base directory.
package fs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// ContextualFs is an afero.Fs that resolves relative paths against baseDir
type ContextualFs struct {
	afero.Fs
	baseDir string
}

// NewContextualFs wraps baseFs. An empty baseDir leaves paths untouched.
func NewContextualFs(baseFs afero.Fs, baseDir string) *ContextualFs {
	return &ContextualFs{
		Fs:      baseFs,
		baseDir: baseDir,
	}
}

// ForConfigFile returns a ContextualFs rooted at the directory holding
// configPath, or baseFs itself when configPath is empty.
func ForConfigFile(baseFs afero.Fs, configPath string) afero.Fs {
	if configPath == "" {
		return baseFs
	}
	dir := filepath.Dir(configPath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return NewContextualFs(baseFs, dir)
}

// Resolve returns the path the wrapped filesystem will see
func (c *ContextualFs) Resolve(path string) string {
	if path == "" {
		if c.baseDir == "" {
			return "."
		}
		return c.baseDir
	}

	if filepath.IsAbs(path) || c.baseDir == "" {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

func (c *ContextualFs) Open(name string) (afero.File, error) {
	return c.Fs.Open(c.Resolve(name))
}

func (c *ContextualFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return c.Fs.OpenFile(c.Resolve(name), flag, perm)
}

func (c *ContextualFs) Remove(name string) error {
	return c.Fs.Remove(c.Resolve(name))
}

func (c *ContextualFs) RemoveAll(path string) error {
	return c.Fs.RemoveAll(c.Resolve(path))
}

func (c *ContextualFs) Rename(oldname, newname string) error {
	return c.Fs.Rename(c.Resolve(oldname), c.Resolve(newname))
}

func (c *ContextualFs) Stat(name string) (os.FileInfo, error) {
	return c.Fs.Stat(c.Resolve(name))
}

func (c *ContextualFs) Create(name string) (afero.File, error) {
	return c.Fs.Create(c.Resolve(name))
}

func (c *ContextualFs) Mkdir(name string, perm os.FileMode) error {
	return c.Fs.Mkdir(c.Resolve(name), perm)
}

func (c *ContextualFs) MkdirAll(path string, perm os.FileMode) error {
	return c.Fs.MkdirAll(c.Resolve(path), perm)
}

func (c *ContextualFs) Chmod(name string, mode os.FileMode) error {
	return c.Fs.Chmod(c.Resolve(name), mode)
}

func (c *ContextualFs) Chtimes(name string, atime, mtime time.Time) error {
	return c.Fs.Chtimes(c.Resolve(name), atime, mtime)
}

// BaseDir returns the directory relative paths resolve against
func (c *ContextualFs) BaseDir() string {
	return c.baseDir
}
