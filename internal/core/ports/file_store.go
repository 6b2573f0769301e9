package ports

import (
	"context"
	"io"
	"time"
)

// FileInfo describes a stored upload.
type FileInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// FileStore persists uploaded files by name. Open and Delete fail with
// domain.ErrFileNotFound for unknown names.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context) ([]FileInfo, error)
	Delete(ctx context.Context, name string) error
}
