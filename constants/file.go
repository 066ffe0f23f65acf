package constants

import "strings"

// AllowedExtensions holds the image file extensions accepted for extraction.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
}

// AllowedFormats are the decoder names reported by image.DecodeConfig for accepted uploads.
var AllowedFormats = map[string]struct{}{
	"png":  {},
	"jpeg": {},
	"webp": {},
	"gif":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether ext (with or without dot) is an accepted image extension.
func IsImageExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
