// Package filekind groups file extensions into named kinds (image,
// video, ...) used by upload allow-listing, and maps MIME types to a
// default extension for payloads that arrive without a filename.
package filekind

import (
	"mime"
	"strings"
)

// kinds maps a kind name to its registered extensions, lowercased and
// without the leading dot.
var kinds = map[string][]string{
	"audio":       {"flac", "m4a", "mp3", "ogg", "wav", "wma"},
	"compressed":  {"bz2", "gz", "rar", "tar", "tgz", "zip", "7z"},
	"excel":       {"xls", "xlsx", "ods", "csv"},
	"html":        {"html", "htm"},
	"image":       {"avif", "bmp", "gif", "heic", "jpeg", "jpg", "png", "svg", "tif", "tiff", "webp"},
	"javascript":  {"js", "mjs"},
	"json":        {"json"},
	"pdf":         {"pdf"},
	"powerpoint":  {"ppt", "pptx", "odp"},
	"text":        {"txt", "text", "md"},
	"video":       {"avi", "mkv", "mov", "mp4", "mpg", "mpeg", "webm", "wmv"},
	"word":        {"doc", "docx", "odt", "rtf"},
	"xml":         {"xml", "xsl"},
	"captions":    {"srt", "vtt"},
	"illustrator": {"ai"},
	"photoshop":   {"psd"},
}

// extensionByMIME covers common types the platform MIME database may
// miss, and pins a deterministic choice where the database offers
// several.
var extensionByMIME = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"image/svg+xml":   "svg",
	"application/pdf": "pdf",
	"text/plain":      "txt",
	"audio/mpeg":      "mp3",
	"video/mp4":       "mp4",
	"application/json": "json",
	"application/zip":  "zip",
}

// Kinds returns the registered kind names.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	return names
}

// ExtensionsForKinds returns the union of the extensions registered for
// the given kinds as a lowercase set. Unknown kinds contribute nothing.
func ExtensionsForKinds(kindNames []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range kindNames {
		for _, ext := range kinds[strings.ToLower(name)] {
			set[ext] = struct{}{}
		}
	}
	return set
}

// IsAllowed reports whether the extension (with or without a leading
// dot, any case) belongs to the allowed set.
func IsAllowed(allowed map[string]struct{}, extension string) bool {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	_, ok := allowed[ext]
	return ok
}

// ExtensionByMIME returns the default extension for a MIME type,
// without the leading dot. The second return is false when the type is
// unknown.
func ExtensionByMIME(mimeType string) (string, bool) {
	base := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	if ext, ok := extensionByMIME[base]; ok {
		return ext, true
	}

	exts, err := mime.ExtensionsByType(base)
	if err != nil || len(exts) == 0 {
		return "", false
	}
	return strings.TrimPrefix(exts[0], "."), true
}
