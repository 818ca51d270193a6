package utils

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

var contentExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
	"image/tiff": ".tiff",
}

// NewID returns a new random ID.
func NewID() string {
	return uuid.New().String()
}

// IsValidID returns true if the given string looks like one of our IDs.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewKey returns a fresh object key under the owner's prefix, keeping the file extension
// if we know it (from the filename, or failing that the content type).
func NewKey(owner, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = contentExt[strings.ToLower(contentType)]
	}
	if owner == "" {
		owner = "anonymous"
	}
	return fmt.Sprintf("%s/%s%s", sanitizeSegment(owner), NewID(), ext)
}

// sanitizeSegment stops owner ids from escaping their prefix.
func sanitizeSegment(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "..", "_")
	return s
}
