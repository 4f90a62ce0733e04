package fsxlocal

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/fsx"
)

// LocalFileSystem stores files under a base directory on local disk
type LocalFileSystem struct {
	baseDir string
}

// NewLocalFileSystem creates the base directory if needed and returns a
// filesystem rooted at it. An empty baseDir roots at the working directory.
func NewLocalFileSystem(baseDir string) (*LocalFileSystem, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fsx.ErrWriteFailed(err).WithDetail("base_dir", baseDir)
		}
	}
	return &LocalFileSystem{baseDir: baseDir}, nil
}

func (l *LocalFileSystem) fullPath(path string) string {
	if l.baseDir == "" {
		return path
	}
	return filepath.Join(l.baseDir, path)
}

func (l *LocalFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fsx.ErrFileNotFound().WithDetail("path", path)
		}
		return nil, fsx.ErrReadFailed(err).WithDetail("path", path)
	}
	return data, nil
}

func (l *LocalFileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(l.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fsx.ErrFileNotFound().WithDetail("path", path)
		}
		return nil, fsx.ErrReadFailed(err).WithDetail("path", path)
	}
	return f, nil
}

func (l *LocalFileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	full := l.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fsx.ErrWriteFailed(err).WithDetail("path", path)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fsx.ErrWriteFailed(err).WithDetail("path", path)
	}
	return nil
}

func (l *LocalFileSystem) WriteFileStream(ctx context.Context, path string, reader io.Reader) error {
	full := l.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fsx.ErrWriteFailed(err).WithDetail("path", path)
	}

	f, err := os.Create(full)
	if err != nil {
		return fsx.ErrWriteFailed(err).WithDetail("path", path)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fsx.ErrWriteFailed(err).WithDetail("path", path)
	}
	return nil
}

func (l *LocalFileSystem) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(l.fullPath(path)); err != nil {
		if os.IsNotExist(err) {
			return fsx.ErrFileNotFound().WithDetail("path", path)
		}
		return fsx.ErrDeleteFailed(err).WithDetail("path", path)
	}
	return nil
}

func (l *LocalFileSystem) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(l.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fsx.ErrReadFailed(err).WithDetail("path", path)
	}
	return true, nil
}

func (l *LocalFileSystem) URL(path string) string {
	return l.fullPath(path)
}
