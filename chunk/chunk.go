package chunk

import "github.com/skillsenselab/transcriptflow/segment"

// Chunk is a segment enriched with its stable identity and propagated
// context metadata, ready for downstream dispatch. Immutable.
type Chunk struct {
	ChunkID      string            `json:"chunk_id"`
	Text         string            `json:"text"`
	StartTime    string            `json:"start_time"`
	EndTime      string            `json:"end_time"`
	OriginalFile string            `json:"original_file"`
	SegmentID    int               `json:"segment_id"`
	Metadata     map[string]string `json:"metadata"`
}

// Build assigns identities to segments and attaches the sanitized
// context metadata, producing the ordered chunk list for dispatch.
// Absent metadata is not an error; every chunk then carries an empty map.
func Build(originalFile string, segments []segment.Segment, metadata map[string]string) ([]Chunk, error) {
	clean := SanitizeMetadata(metadata)

	chunks := make([]Chunk, 0, len(segments))
	for _, seg := range segments {
		id, err := NewID(originalFile, seg.ID)
		if err != nil {
			return nil, err
		}
		// Each chunk owns its metadata map; mutating one chunk must
		// never reach its siblings.
		meta := make(map[string]string, len(clean))
		for k, v := range clean {
			meta[k] = v
		}
		chunks = append(chunks, Chunk{
			ChunkID:      id,
			Text:         seg.Transcript,
			StartTime:    seg.StartTime,
			EndTime:      seg.EndTime,
			OriginalFile: originalFile,
			SegmentID:    seg.ID,
			Metadata:     meta,
		})
	}
	return chunks, nil
}
