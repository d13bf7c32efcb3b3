package storage

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GenerateFileName generates a new file name based on the file extension
// It creates a UUID-based filename with the provided extension
func GenerateFileName(extension string) string {
	newUUID := uuid.New().String()
	// Ensure extension starts with a dot if it doesn't already
	if extension != "" && extension[0] != '.' {
		return newUUID + "." + extension
	}
	return newUUID + extension
}

// ExtensionFor picks a file extension from the content type, falling back to the filename
func ExtensionFor(meta UploadMetadata) string {
	switch strings.ToLower(meta.ContentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return strings.ToLower(filepath.Ext(meta.Filename))
}
