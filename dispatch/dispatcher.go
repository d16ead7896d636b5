package dispatch

import (
	"context"
	"encoding/json"

	"github.com/skillsenselab/transcriptflow/chunk"
	"github.com/skillsenselab/transcriptflow/errors"
	"github.com/skillsenselab/transcriptflow/logger"
)

// Dispatcher publishes chunks sequentially, aborting on the first
// failure so the caller can retry from the first unconfirmed chunk.
type Dispatcher struct {
	pub Publisher
	log *logger.Logger
}

// NewDispatcher creates a dispatcher over the given publisher.
func NewDispatcher(pub Publisher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, log: log.WithComponent("dispatch")}
}

// Send publishes the chunks in order, one message per chunk, waiting
// for confirmation before moving on. It returns the number of chunks
// confirmed; on error that count identifies the first unconfirmed
// chunk, so a retry may resume with chunks[published:]. Chunk ids are
// stable, so re-publishing an already confirmed chunk is harmless
// downstream.
func (d *Dispatcher) Send(ctx context.Context, chunks []chunk.Chunk) (int, error) {
	for i, c := range chunks {
		payload, err := json.Marshal(c)
		if err != nil {
			return i, errors.Internal(errors.ClassDispatch, "marshal chunk message").
				WithCause(err).
				WithDetail("chunk_id", c.ChunkID)
		}

		if err := d.pub.Publish(ctx, c.ChunkID, payload); err != nil {
			d.log.Error("Chunk publish failed", map[string]interface{}{
				logger.FieldChunkID: c.ChunkID,
				logger.FieldOrdinal: i,
				logger.FieldFile:    c.OriginalFile,
				logger.FieldError:   err.Error(),
			})
			return i, errors.PublishFailed(c.ChunkID, i, err)
		}

		d.log.Debug("Chunk published", map[string]interface{}{
			logger.FieldChunkID:   c.ChunkID,
			logger.FieldSegmentID: c.SegmentID,
			logger.FieldOrdinal:   i,
		})
	}

	if len(chunks) > 0 {
		d.log.Info("Dispatch complete", map[string]interface{}{
			logger.FieldFile:  chunks[0].OriginalFile,
			logger.FieldCount: len(chunks),
		})
	}
	return len(chunks), nil
}
