package chunk

import (
	"regexp"
	"strings"
)

// Context metadata is free-form provenance text supplied alongside the
// source file. It is sanitized before propagation so downstream
// consumers never see markup, control characters, or unexpected keys.

var allowedMetadataKeys = map[string]bool{
	"speaker": true,
	"title":   true,
	"track":   true,
	"day":     true,
}

const maxMetadataValueLen = 256

var (
	scriptTagRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleTagRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
	controlRe   = regexp.MustCompile("[\x00-\x1f\x7f]+")
	// Letters, digits, whitespace, and common punctuation survive;
	// everything else collapses to a space.
	specialRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.,!?()'"&/:@]+`)
	ampersandRe  = regexp.MustCompile(`\s*&\s*`)
	slashRe      = regexp.MustCompile(`\s*/\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SanitizeMetadata filters the context map down to allowed keys and
// strips markup, control characters, and stray symbols from values.
// A nil map yields an empty, non-nil map so chunk serialization always
// carries a metadata object.
func SanitizeMetadata(metadata map[string]string) map[string]string {
	clean := make(map[string]string, len(metadata))
	for key, value := range metadata {
		if !allowedMetadataKeys[key] {
			continue
		}
		v := scriptTagRe.ReplaceAllString(value, "")
		v = styleTagRe.ReplaceAllString(v, "")
		v = htmlTagRe.ReplaceAllString(v, " ")
		v = controlRe.ReplaceAllString(v, " ")
		v = specialRe.ReplaceAllString(v, " ")
		v = ampersandRe.ReplaceAllString(v, " & ")
		v = slashRe.ReplaceAllString(v, "/")
		v = whitespaceRe.ReplaceAllString(v, " ")
		v = strings.TrimSpace(v)

		if runes := []rune(v); len(runes) > maxMetadataValueLen {
			v = string(runes[:maxMetadataValueLen-3]) + "..."
		}
		if v != "" {
			clean[key] = v
		}
	}
	return clean
}
