package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalBucket stores objects under a directory and builds public URLs from a base URL.
// The directory is expected to be served as is, see the server package.
type LocalBucket struct {
	dir     string
	baseURL string
}

// NewLocalBucket makes a bucket rooted at dir
func NewLocalBucket(dir, baseURL string) *LocalBucket {
	return &LocalBucket{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put writes data to dir/name and returns baseURL/name
func (b *LocalBucket) Put(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := path.Clean("/" + name)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	dest := filepath.Join(b.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil { //nolint:gosec // thumbnails are public
		return "", fmt.Errorf("write object %s: %w", clean, err)
	}
	return b.baseURL + "/" + clean, nil
}

// Dir returns the bucket root directory
func (b *LocalBucket) Dir() string {
	return b.dir
}

func newObjectID() string {
	return uuid.NewString()
}
