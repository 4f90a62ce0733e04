// Package fsx abstracts file storage behind a small interface so services can
// run against the local disk in development and S3 in production.
package fsx

import (
	"context"
	"io"
	"net/http"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
)

// FileReader reads stored files
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileWriter writes stored files
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	WriteFileStream(ctx context.Context, path string, reader io.Reader) error
}

// FileSystem is the full storage contract
type FileSystem interface {
	FileReader
	FileWriter
	DeleteFile(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// URL returns a stable reference to the stored file that can be handed
	// to clients (a local path or an object URL).
	URL(path string) string
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("FSX")

var (
	CodeFileNotFound = ErrRegistry.Register("FILE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "File not found")
	CodeReadFailed   = ErrRegistry.Register("READ_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to read file from storage")
	CodeWriteFailed  = ErrRegistry.Register("WRITE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to write file to storage")
	CodeDeleteFailed = ErrRegistry.Register("DELETE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to delete file from storage")
)

func ErrFileNotFound() *errx.Error {
	return ErrRegistry.New(CodeFileNotFound)
}

func ErrReadFailed(err error) *errx.Error {
	return ErrRegistry.NewWithError(CodeReadFailed, err)
}

func ErrWriteFailed(err error) *errx.Error {
	return ErrRegistry.NewWithError(CodeWriteFailed, err)
}

func ErrDeleteFailed(err error) *errx.Error {
	return ErrRegistry.NewWithError(CodeDeleteFailed, err)
}
