package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/lysyi3m/ims-sessions/app/ims"
)

var _ ims.SnapshotStore = (*FileStore)(nil)

// FileStore keeps the snapshot in a single file whose modification time is
// the fetch time. A path ending in .gz is stored gzip-compressed.
type FileStore struct {
	path     string
	compress bool
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:     path,
		compress: strings.HasSuffix(path, ".gz"),
	}
}

func (s *FileStore) Name() string {
	return "file"
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*ims.Snapshot, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	var r io.Reader = f
	if s.compress {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed snapshot: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	return &ims.Snapshot{Body: data, FetchedAt: info.ModTime()}, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the previous snapshot, so readers never observe a partial file.
func (s *FileStore) Save(ctx context.Context, snapshot ims.Snapshot) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0775); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := s.write(tmp, snapshot.Body); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Chmod(0664); err != nil {
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Chtimes(tmp.Name(), snapshot.FetchedAt, snapshot.FetchedAt); err != nil {
		return fmt.Errorf("failed to set snapshot time: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}

func (s *FileStore) write(w io.Writer, data []byte) error {
	if !s.compress {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	}

	gz := gzip.NewWriter(w)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
