package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/skillsenselab/transcriptflow/segment"
)

func TestBuildAssignsIdentityToEverySegment(t *testing.T) {
	segments := []segment.Segment{
		{ID: 0, Transcript: "Welcome to the talk.", StartTime: "0.0", EndTime: "2.1"},
		{ID: 1, Transcript: "Let us begin.", StartTime: "3.8", EndTime: "5.2"},
	}

	chunks, err := Build("media/1 - Welcome.mp4", segments, map[string]string{"speaker": "Ada"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(chunks) != len(segments) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(segments))
	}
	for i, c := range chunks {
		if c.SegmentID != segments[i].ID {
			t.Errorf("chunk %d: segment id = %d, want %d", i, c.SegmentID, segments[i].ID)
		}
		if c.Text != segments[i].Transcript {
			t.Errorf("chunk %d: text = %q, want %q", i, c.Text, segments[i].Transcript)
		}
		if c.StartTime != segments[i].StartTime || c.EndTime != segments[i].EndTime {
			t.Errorf("chunk %d: times %s-%s, want %s-%s",
				i, c.StartTime, c.EndTime, segments[i].StartTime, segments[i].EndTime)
		}
		if c.OriginalFile != "media/1 - Welcome.mp4" {
			t.Errorf("chunk %d: original file = %q", i, c.OriginalFile)
		}
		if len(c.ChunkID) != IDLength {
			t.Errorf("chunk %d: id %q has length %d", i, c.ChunkID, len(c.ChunkID))
		}
		if c.Metadata["speaker"] != "Ada" {
			t.Errorf("chunk %d: metadata not propagated: %v", i, c.Metadata)
		}
	}
	if chunks[0].ChunkID == chunks[1].ChunkID {
		t.Error("chunks of distinct segments share an id")
	}
}

func TestBuildCopiesMetadataPerChunk(t *testing.T) {
	segments := []segment.Segment{
		{ID: 0, Transcript: "First.", StartTime: "0.0", EndTime: "1.0"},
		{ID: 1, Transcript: "Second.", StartTime: "1.5", EndTime: "2.5"},
	}
	chunks, err := Build("media/a.mp3", segments, map[string]string{"speaker": "Ada"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	chunks[0].Metadata["speaker"] = "mutated"
	if got := chunks[1].Metadata["speaker"]; got != "Ada" {
		t.Errorf("metadata aliased across chunks: chunk 1 speaker = %q", got)
	}
}

func TestBuildWithoutMetadata(t *testing.T) {
	segments := []segment.Segment{
		{ID: 0, Transcript: "Hello.", StartTime: "0.0", EndTime: "0.5"},
	}
	chunks, err := Build("media/a.mp3", segments, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if chunks[0].Metadata == nil {
		t.Error("metadata must be an empty map, not nil")
	}
	if len(chunks[0].Metadata) != 0 {
		t.Errorf("unexpected metadata: %v", chunks[0].Metadata)
	}
}

func TestBuildEmptySegments(t *testing.T) {
	chunks, err := Build("media/a.mp3", nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks for no segments", len(chunks))
	}
}

func TestBuildInvalidFile(t *testing.T) {
	segments := []segment.Segment{{ID: 0, Transcript: "Hi."}}
	if _, err := Build("", segments, nil); err == nil {
		t.Error("expected identity error for empty original file")
	}
}

func TestSanitizeMetadataFiltersKeys(t *testing.T) {
	clean := SanitizeMetadata(map[string]string{
		"speaker":  "Ada Lovelace",
		"title":    "On Engines",
		"password": "hunter2",
		"track":    "history",
	})
	if _, ok := clean["password"]; ok {
		t.Error("disallowed key survived sanitization")
	}
	if clean["speaker"] != "Ada Lovelace" || clean["title"] != "On Engines" || clean["track"] != "history" {
		t.Errorf("allowed keys mangled: %v", clean)
	}
}

func TestSanitizeMetadataStripsMarkup(t *testing.T) {
	clean := SanitizeMetadata(map[string]string{
		"title":   `Day <b>One</b><script>alert("x")</script>`,
		"speaker": "A\x00B\x1fC",
	})
	if got := clean["title"]; got != "Day One" {
		t.Errorf("title = %q, want %q", got, "Day One")
	}
	if got := clean["speaker"]; got != "A B C" {
		t.Errorf("speaker = %q, want %q", got, "A B C")
	}
	if strings.Contains(clean["title"], "alert") {
		t.Error("script body survived sanitization")
	}
}

func TestSanitizeMetadataTruncatesLongValues(t *testing.T) {
	long := strings.Repeat("a", 600)
	clean := SanitizeMetadata(map[string]string{"title": long})
	got := clean["title"]
	if len(got) != maxMetadataValueLen {
		t.Errorf("truncated length = %d, want %d", len(got), maxMetadataValueLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated value missing ellipsis: %q", got)
	}
}

func TestSanitizeMetadataTruncatesByRune(t *testing.T) {
	long := strings.Repeat("é", 300)
	clean := SanitizeMetadata(map[string]string{"title": long})
	got := clean["title"]
	if !utf8.ValidString(got) {
		t.Fatalf("truncated value is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != maxMetadataValueLen {
		t.Errorf("truncated rune count = %d, want %d", n, maxMetadataValueLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated value missing ellipsis: %q", got)
	}
}

func TestSanitizeMetadataStripsSpecialCharacters(t *testing.T) {
	clean := SanitizeMetadata(map[string]string{
		"track":   "AI/ML & Systems #2024 $pecial",
		"speaker": "Dr. O'Brien (keynote)",
		"day":     "Day 1, 9:30",
	})
	if got := clean["track"]; got != "AI/ML & Systems 2024 pecial" {
		t.Errorf("track = %q, want %q", got, "AI/ML & Systems 2024 pecial")
	}
	if got := clean["speaker"]; got != "Dr. O'Brien (keynote)" {
		t.Errorf("speaker = %q, want %q", got, "Dr. O'Brien (keynote)")
	}
	if got := clean["day"]; got != "Day 1, 9:30" {
		t.Errorf("day = %q, want %q", got, "Day 1, 9:30")
	}
}

func TestSanitizeMetadataDropsEmptyValues(t *testing.T) {
	clean := SanitizeMetadata(map[string]string{
		"title": "<script>only markup</script>",
		"day":   "   ",
	})
	if len(clean) != 0 {
		t.Errorf("expected empty map, got %v", clean)
	}
}

func TestSanitizeMetadataNil(t *testing.T) {
	clean := SanitizeMetadata(nil)
	if clean == nil {
		t.Fatal("nil input must yield empty non-nil map")
	}
	if len(clean) != 0 {
		t.Errorf("unexpected entries: %v", clean)
	}
}
