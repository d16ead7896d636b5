package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/skillsenselab/transcriptflow/chunk"
	"github.com/skillsenselab/transcriptflow/errors"
	"github.com/skillsenselab/transcriptflow/logger"
)

type fakePublisher struct {
	keys     []string
	payloads [][]byte
	failAt   map[int]error // call ordinal -> error
	calls    int
}

func (f *fakePublisher) Publish(_ context.Context, key string, value []byte) error {
	call := f.calls
	f.calls++
	if err, ok := f.failAt[call]; ok {
		return err
	}
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, value)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func testChunks(t *testing.T, n int) []chunk.Chunk {
	t.Helper()
	chunks := make([]chunk.Chunk, 0, n)
	for i := 0; i < n; i++ {
		id, err := chunk.NewID("media/talk.mp4", i)
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		chunks = append(chunks, chunk.Chunk{
			ChunkID:      id,
			Text:         fmt.Sprintf("Sentence %d.", i),
			StartTime:    fmt.Sprintf("%d.0", i),
			EndTime:      fmt.Sprintf("%d.5", i),
			OriginalFile: "media/talk.mp4",
			SegmentID:    i,
			Metadata:     map[string]string{},
		})
	}
	return chunks
}

func TestSendPublishesAllInOrder(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, logger.New(&logger.Config{Level: "error"}, "test"))
	chunks := testChunks(t, 4)

	n, err := d.Send(context.Background(), chunks)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != 4 {
		t.Errorf("published = %d, want 4", n)
	}
	for i, c := range chunks {
		if pub.keys[i] != c.ChunkID {
			t.Errorf("message %d keyed %q, want %q", i, pub.keys[i], c.ChunkID)
		}
	}
}

func TestSendMessageShape(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, logger.New(&logger.Config{Level: "error"}, "test"))
	chunks := testChunks(t, 1)
	chunks[0].Metadata = map[string]string{"speaker": "Ada"}

	if _, err := d.Send(context.Background(), chunks); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var msg map[string]interface{}
	if err := json.Unmarshal(pub.payloads[0], &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	for _, field := range []string{"chunk_id", "text", "start_time", "end_time", "original_file", "segment_id", "metadata"} {
		if _, ok := msg[field]; !ok {
			t.Errorf("payload missing field %q", field)
		}
	}
	if msg["chunk_id"] != chunks[0].ChunkID {
		t.Errorf("chunk_id = %v, want %s", msg["chunk_id"], chunks[0].ChunkID)
	}
	meta, ok := msg["metadata"].(map[string]interface{})
	if !ok || meta["speaker"] != "Ada" {
		t.Errorf("metadata = %v", msg["metadata"])
	}
}

func TestSendAbortsOnFirstFailure(t *testing.T) {
	pub := &fakePublisher{failAt: map[int]error{2: fmt.Errorf("broker unavailable")}}
	d := NewDispatcher(pub, logger.New(&logger.Config{Level: "error"}, "test"))
	chunks := testChunks(t, 5)

	n, err := d.Send(context.Background(), chunks)
	if err == nil {
		t.Fatal("expected publish failure")
	}
	if n != 2 {
		t.Errorf("confirmed = %d, want 2", n)
	}
	if pub.calls != 3 {
		t.Errorf("publish attempts = %d, want 3 (no chunks after the failure)", pub.calls)
	}

	pe, ok := errors.AsPipelineError(err)
	if !ok {
		t.Fatalf("error is not typed: %v", err)
	}
	if pe.Code != errors.ErrCodePublishFailed {
		t.Errorf("code = %s, want %s", pe.Code, errors.ErrCodePublishFailed)
	}
	if !pe.Retryable {
		t.Error("publish failures must be retryable")
	}
	if pe.Details["chunk_id"] != chunks[2].ChunkID {
		t.Errorf("details chunk_id = %v, want %s", pe.Details["chunk_id"], chunks[2].ChunkID)
	}
	if pe.Details["ordinal"] != 2 {
		t.Errorf("details ordinal = %v, want 2", pe.Details["ordinal"])
	}
}

func TestSendResumeProducesFullSet(t *testing.T) {
	pub := &fakePublisher{failAt: map[int]error{3: fmt.Errorf("timeout")}}
	d := NewDispatcher(pub, logger.New(&logger.Config{Level: "error"}, "test"))
	chunks := testChunks(t, 5)

	n, err := d.Send(context.Background(), chunks)
	if err == nil || n != 3 {
		t.Fatalf("first attempt: n=%d err=%v, want n=3 with error", n, err)
	}

	// Resume from the first unconfirmed chunk.
	m, err := d.Send(context.Background(), chunks[n:])
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if n+m != len(chunks) {
		t.Errorf("total confirmed = %d, want %d", n+m, len(chunks))
	}

	unique := make(map[string]bool)
	for _, k := range pub.keys {
		unique[k] = true
	}
	if len(unique) != len(chunks) {
		t.Errorf("unique chunk ids delivered = %d, want %d", len(unique), len(chunks))
	}
	// Order is preserved across the resume.
	for i, k := range pub.keys {
		if k != chunks[i].ChunkID {
			t.Errorf("delivery %d = %q, want %q", i, k, chunks[i].ChunkID)
		}
	}
}

func TestSendEmpty(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, logger.New(&logger.Config{Level: "error"}, "test"))
	n, err := d.Send(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("Send(nil) = %d, %v", n, err)
	}
}
