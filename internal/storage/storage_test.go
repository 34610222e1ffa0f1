package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "covers/1.jpg", want: "covers/1.jpg"},
		{in: "/covers/1.jpg", want: "covers/1.jpg"},
		{in: "  covers//1.jpg ", want: "covers/1.jpg"},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
		{in: "../etc/passwd", wantErr: true},
		{in: "covers/../../secret", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanKey(tt.in)
			if tt.wantErr {
				assert.True(t, IsInvalidKey(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThumbnailKey(t *testing.T) {
	assert.Equal(t, "thumbnails/64/covers/1.jpg", ThumbnailKey("covers/1.png", 64))
	assert.Equal(t, "thumbnails/128/a.jpg", ThumbnailKey("a", 128))
}

func TestContentTypes(t *testing.T) {
	assert.Equal(t, "image/png", DetectContentType("", "a/b.png"))
	assert.Equal(t, "text/plain", DetectContentType("text/plain", "a/b.png"))
	assert.Equal(t, "application/octet-stream", DetectContentType("", "noext"))

	assert.True(t, IsThumbnailable("image/jpeg"))
	assert.True(t, IsThumbnailable("IMAGE/PNG; charset=binary"))
	assert.False(t, IsThumbnailable("image/svg+xml"))
	assert.True(t, IsImage("image/svg+xml"))
	assert.False(t, IsImage("text/html"))
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir(), BaseURL: "http://localhost:8080/files/"}, discardLogger())
	require.NoError(t, err)

	exists, err := s.Exists(ctx, "covers/1.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = s.Get(ctx, "covers/1.jpg")
	assert.True(t, IsNotFound(err))

	require.NoError(t, s.Put(ctx, "covers/1.jpg", strings.NewReader("jpeg bytes"), PutOptions{}))

	err = s.Put(ctx, "covers/1.jpg", strings.NewReader("again"), PutOptions{})
	assert.True(t, errors.Is(err, ErrKeyExists))
	require.NoError(t, s.Put(ctx, "covers/1.jpg", strings.NewReader("replaced"), PutOptions{Overwrite: true}))

	rc, info, err := s.Get(ctx, "/covers/1.jpg")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(body))
	assert.Equal(t, "image/jpeg", info.ContentType)
	assert.Equal(t, int64(8), info.Size)

	url, err := s.URL(ctx, "covers/1.jpg", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/covers/1.jpg", url)

	_, err = s.URL(ctx, "../x", 0)
	assert.True(t, IsInvalidKey(err))
}

func TestLocalStorage_MaxSize(t *testing.T) {
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()}, discardLogger())
	require.NoError(t, err)

	err = s.Put(context.Background(), "big.jpg", strings.NewReader("0123456789"), PutOptions{MaxSize: 4})
	assert.True(t, errors.Is(err, ErrTooLarge))

	exists, err := s.Exists(context.Background(), "big.jpg")
	require.NoError(t, err)
	assert.False(t, exists, "oversized writes leave nothing behind")
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Exists(ctx, "a.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestR2Storage_URL(t *testing.T) {
	ctx := context.Background()

	private, err := NewR2Storage(R2Config{
		BucketName:      "pictures",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:9000",
	}, discardLogger())
	require.NoError(t, err)

	url, err := private.URL(ctx, "/covers/1.jpg", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/pictures/covers/1.jpg?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")

	public, err := NewR2Storage(R2Config{
		BucketName: "pictures",
		Endpoint:   "http://localhost:9000",
		PublicURL:  "https://img.example.com/",
	}, discardLogger())
	require.NoError(t, err)

	url, err = public.URL(ctx, "covers/1.jpg", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/covers/1.jpg", url)

	_, err = public.URL(ctx, "../1.jpg", 0)
	assert.True(t, IsInvalidKey(err))
}

func TestNewR2Storage_Validation(t *testing.T) {
	_, err := NewR2Storage(R2Config{}, discardLogger())
	assert.Error(t, err)

	_, err = NewR2Storage(R2Config{BucketName: "b"}, discardLogger())
	assert.Error(t, err, "account id or endpoint is required")
}

func TestWrapS3Error(t *testing.T) {
	assert.ErrorIs(t, wrapS3Error(&types.NoSuchKey{}), ErrNotFound)
	assert.ErrorIs(t, wrapS3Error(&types.NotFound{}), ErrNotFound)

	other := errors.New("connection reset")
	wrapped := wrapS3Error(other)
	assert.ErrorIs(t, wrapped, other)
	assert.False(t, IsNotFound(wrapped))
}
