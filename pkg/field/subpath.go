package field

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeSubpath cleans a rendered subpath. It trims leading and
// trailing slashes and rejects values that are empty, that were all
// slashes before trimming, or that contain adjacent separators. The
// returned path has no leading or trailing slash.
//
// The reason string is non-empty on rejection; pure function, no I/O.
func normalizeSubpath(rendered string, convertToASCII bool) (string, string) {
	trimmed := strings.Trim(rendered, "/")

	switch {
	case rendered == "":
		return "", "rendered to an empty path"
	case trimmed == "":
		return "", "rendered to slashes only"
	case strings.Contains(trimmed, "//"):
		return "", "contains adjacent path separators"
	}

	if convertToASCII {
		trimmed = foldToASCII(trimmed)
		if strings.Trim(trimmed, "/") == "" || strings.Contains(trimmed, "//") {
			return "", "unusable after ASCII conversion"
		}
	}

	return trimmed, ""
}

// asciiFolder decomposes characters, strips combining marks, then drops
// anything still outside ASCII.
var asciiFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	norm.NFC,
)

func foldToASCII(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return folded
}
