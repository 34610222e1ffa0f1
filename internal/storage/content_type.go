package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// pictureTypes are the formats the thumbnailer can decode.
var pictureTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// DetectContentType returns provided when set, otherwise the type implied
// by the key's extension, falling back to application/octet-stream.
func DetectContentType(provided, key string) string {
	if provided != "" {
		return provided
	}
	ext := strings.ToLower(filepath.Ext(key))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// IsThumbnailable reports whether pictures of contentType can be resized.
func IsThumbnailable(contentType string) bool {
	return pictureTypes[baseType(contentType)]
}

// IsImage reports whether contentType is any image type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(baseType(contentType), "image/")
}

func baseType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(t))
}
