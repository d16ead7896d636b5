package transcript

import (
	"strconv"
	"time"
)

// TokenType distinguishes spoken words from punctuation marks.
type TokenType string

const (
	// TypePronunciation is a spoken word with timing and confidence.
	TypePronunciation TokenType = "pronunciation"
	// TypePunctuation is a punctuation mark. Timing is optional;
	// confidence is not reported.
	TypePunctuation TokenType = "punctuation"
)

// Token is one word or punctuation mark from the recognizer, ordered by
// start time. Its position in the token list is its identity within a
// file. Tokens are immutable once produced.
type Token struct {
	Type       TokenType `json:"type"`
	Content    string    `json:"content"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Confidence string    `json:"confidence,omitempty"`
}

// Seconds parses the token's start and end times.
func (t Token) Seconds() (start, end float64, err error) {
	start, err = strconv.ParseFloat(t.StartTime, 64)
	if err != nil {
		return 0, 0, err
	}
	end, err = strconv.ParseFloat(t.EndTime, 64)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// HasTiming reports whether both timestamps are present.
func (t Token) HasTiming() bool {
	return t.StartTime != "" && t.EndTime != ""
}

// AudioSegment is a provider-native sentence-level grouping, present when
// the recognizer already sentence-segments its output. Items are indices
// into the token list.
type AudioSegment struct {
	ID         int    `json:"id"`
	Transcript string `json:"transcript"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Items      []int  `json:"items"`
}

// Result is the standard transcription result document written after the
// Transcribe stage and consumed by the Segmenting stage.
type Result struct {
	OriginalFile  string         `json:"original_file"`
	Text          string         `json:"transcription_text"`
	Timestamp     string         `json:"timestamp"`
	JobName       string         `json:"job_name,omitempty"`
	MediaType     string         `json:"media_type"`
	Tokens        []Token        `json:"segments,omitempty"`
	AudioSegments []AudioSegment `json:"audio_segments,omitempty"`
}

// NewResult stamps a result document with the current UTC timestamp.
func NewResult(originalFile, text, jobName, mediaType string) *Result {
	return &Result{
		OriginalFile: originalFile,
		Text:         text,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		JobName:      jobName,
		MediaType:    mediaType,
	}
}

// HasProviderSegments reports whether the recognizer supplied its own
// sentence-level grouping.
func (r *Result) HasProviderSegments() bool {
	return len(r.AudioSegments) > 0
}
