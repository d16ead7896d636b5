package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/skillsenselab/transcriptflow/errors"
)

// IDLength is the length of a chunk id in hex characters.
const IDLength = 10

// NewID derives the deterministic chunk id for a segment: the first 10
// hex characters of the SHA-256 digest over "{originalFile}:{segmentID}".
// Equal inputs always produce the identical id.
func NewID(originalFile string, segmentID int) (string, error) {
	if originalFile == "" {
		return "", errors.InvalidIdentityInput("original_file must not be empty")
	}
	if segmentID < 0 {
		return "", errors.InvalidIdentityInput("segment_id must not be negative").
			WithDetail("segment_id", segmentID)
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", originalFile, segmentID)))
	return hex.EncodeToString(sum[:])[:IDLength], nil
}
