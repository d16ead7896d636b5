package segment

import "github.com/skillsenselab/transcriptflow/transcript"

// Segment is a sentence-level grouping of consecutive recognition
// tokens. TokenIndices are contiguous and non-overlapping across sibling
// segments. Segments are immutable once created.
type Segment struct {
	// ID is the ordinal position of the segment within the file,
	// starting at 0.
	ID int `json:"id"`
	// Transcript is the concatenated token text.
	Transcript string `json:"transcript"`
	// StartTime is the first token's start time.
	StartTime string `json:"start_time"`
	// EndTime is the last token's end time.
	EndTime string `json:"end_time"`
	// TokenIndices are the positions of the composing tokens in the
	// file's full token list.
	TokenIndices []int `json:"items"`
}

// FromProvider converts the recognizer's native sentence grouping into
// segments, preserving the provider's ids and token references. Used
// when the provider already groups sentences, in which case local
// segmentation is skipped entirely.
func FromProvider(audioSegments []transcript.AudioSegment) []Segment {
	segments := make([]Segment, 0, len(audioSegments))
	for _, as := range audioSegments {
		segments = append(segments, Segment{
			ID:           as.ID,
			Transcript:   as.Transcript,
			StartTime:    as.StartTime,
			EndTime:      as.EndTime,
			TokenIndices: as.Items,
		})
	}
	return segments
}
