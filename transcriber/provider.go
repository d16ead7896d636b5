package transcriber

import (
	"context"

	"github.com/skillsenselab/transcriptflow/transcript"
)

// Request identifies the source media object to transcribe.
type Request struct {
	// Bucket is the object-storage bucket holding the media file.
	Bucket string
	// Key is the media file's object key. It doubles as the pipeline's
	// original_file identity.
	Key string
}

// Provider is the interface recognition backends must implement.
type Provider interface {
	// Name returns the backend name.
	Name() string

	// Transcribe runs recognition on the source media and returns the
	// normalized result: full text plus the recognition token stream and,
	// when the backend supplies one, its native sentence grouping.
	// It blocks until the recognition job completes, fails, or the
	// context is done.
	Transcribe(ctx context.Context, req Request) (*transcript.Result, error)
}
