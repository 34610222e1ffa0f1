// Package storage gives read and cache access to story pictures.
//
// Pictures are uploaded by the story API; this application only reads them
// and writes derived thumbnails next to them. Two providers exist:
// LocalStorage for development and R2Storage (S3 API) for production.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Storage is the picture store.
type Storage interface {
	// Put stores data at key. Without opts.Overwrite an existing key is an
	// ErrKeyExists error.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get opens the object at key. The caller closes the reader. A missing
	// key is ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// URL returns a browser-usable URL for key. Private buckets get a
	// presigned URL valid for expires.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether key exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures a write.
type PutOptions struct {
	ContentType string
	MaxSize     int64 // 0 means unlimited
	Overwrite   bool
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig configures LocalStorage.
type LocalConfig struct {
	// BasePath is the directory holding pictures, e.g. "./storage".
	BasePath string

	// BaseURL is the URL prefix the directory is served under, e.g.
	// "http://localhost:8080/files".
	BaseURL string
}

// R2Config configures R2Storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's public domain. When empty every URL is
	// presigned.
	PublicURL string

	// Region defaults to "auto".
	Region string

	// Endpoint overrides the account endpoint (S3-compatible test servers).
	Endpoint string
}

const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// CleanKey turns a picture path from the API into a storage key: leading
// slashes are dropped and traversal is rejected.
func CleanKey(p string) (string, error) {
	key := strings.TrimLeft(strings.TrimSpace(p), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	return path.Clean(key), nil
}

// ThumbnailKey is where the thumbnail of key at the given square size is
// cached.
func ThumbnailKey(key string, size int) string {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	return fmt.Sprintf("thumbnails/%d/%s.jpg", size, base)
}
