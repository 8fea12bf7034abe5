package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"restaurant-orders/internal/images"
)

// DiskStore writes files under a directory served statically at publicURL.
// Files are never overwritten or removed.
type DiskStore struct {
	dir       string
	publicURL string
}

var _ images.BlobStore = (*DiskStore)(nil)

func NewDiskStore(dir, publicURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare upload folder: %w", err)
	}
	return &DiskStore{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (d *DiskStore) Dir() string { return d.dir }

func (d *DiskStore) Store(ctx context.Context, r io.Reader, ext string) (images.Stored, error) {
	if err := ctx.Err(); err != nil {
		return images.Stored{}, err
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	path := filepath.Join(d.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return images.Stored{}, fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return images.Stored{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return images.Stored{}, fmt.Errorf("close %s: %w", name, err)
	}

	return images.Stored{Name: name, URL: d.publicURL + "/" + name}, nil
}
