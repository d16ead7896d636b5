package transcriber

import (
	"path"
	"strings"
)

// Media types recognized by the pipeline.
const (
	MediaTypeAudio = "audio"
	MediaTypeVideo = "video"
)

var audioFormats = map[string]bool{
	"mp3": true, "wav": true, "flac": true, "ogg": true, "amr": true,
}

var videoFormats = map[string]bool{
	"mp4": true, "avi": true, "mov": true, "mkv": true, "webm": true,
}

// DetectMedia returns the media format (the file extension) and media
// type for a source key. Unknown extensions default to audio; the second
// return value reports whether the extension was recognized.
func DetectMedia(key string) (format, mediaType string, known bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	switch {
	case audioFormats[ext]:
		return ext, MediaTypeAudio, true
	case videoFormats[ext]:
		return ext, MediaTypeVideo, true
	default:
		return ext, MediaTypeAudio, false
	}
}

// BaseName returns the file name without directory or extension, used to
// derive result document keys.
func BaseName(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}
