package swap

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// FileStore is a Store backed by a pre-sized local swap file
type FileStore struct {
	slotted
	path   string
	mu     sync.Mutex
	file   *os.File
	closed bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates (or truncates) the swap file at location and sizes it
// to size bytes of zeros. Missing parent directories are created.
func NewFileStore(ctx context.Context, location string, size int64, slotSize int) (*FileStore, error) {
	if location == "" {
		return nil, fmt.Errorf("swap file location cannot be empty")
	}
	layout, err := newSlotted(size, slotSize)
	if err != nil {
		return nil, err
	}
	location = url.Path(url.Normalize(location, file.Scheme))
	fs := afs.New()
	parent := path.Dir(location)
	exists, _ := fs.Exists(ctx, parent)
	if !exists {
		if err := fs.Create(ctx, parent, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create swap directory: %w", err)
		}
	}
	f, err := os.OpenFile(location, os.O_RDWR|os.O_CREATE|os.O_TRUNC, file.DefaultFileOsMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap file %v: %w", location, err)
	}
	if err = f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to size swap file %v: %w", location, err)
	}
	return &FileStore{slotted: layout, path: location, file: f}, nil
}

func (f *FileStore) ReadSlot(slot int, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	return f.read(f.file, slot, buf)
}

func (f *FileStore) WriteSlot(slot int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	return f.write(f.file, slot, data)
}

// Path returns the local swap file path
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}
