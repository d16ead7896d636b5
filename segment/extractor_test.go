package segment

import (
	"testing"

	"github.com/skillsenselab/transcriptflow/errors"
	"github.com/skillsenselab/transcriptflow/logger"
	"github.com/skillsenselab/transcriptflow/transcript"
)

func word(content, start, end string) transcript.Token {
	return transcript.Token{
		Type: transcript.TypePronunciation, Content: content,
		StartTime: start, EndTime: end, Confidence: "0.99",
	}
}

func punct(content, at string) transcript.Token {
	return transcript.Token{
		Type: transcript.TypePunctuation, Content: content,
		StartTime: at, EndTime: at,
	}
}

func newTestExtractor(cfg Config) *Extractor {
	return NewExtractor(cfg, logger.NewDefault("test"))
}

func TestExtractSingleSentence(t *testing.T) {
	tokens := []transcript.Token{
		word("This", "0.0", "0.3"),
		punct(",", "0.3"),
		word("is", "0.4", "0.6"),
		word("fine", "0.6", "0.9"),
		punct(".", "0.9"),
	}

	segs, err := newTestExtractor(Config{}).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}

	seg := segs[0]
	if seg.Transcript != "This, is fine." {
		t.Errorf("transcript = %q, want %q", seg.Transcript, "This, is fine.")
	}
	if seg.ID != 0 {
		t.Errorf("id = %d", seg.ID)
	}
	if seg.StartTime != "0.0" || seg.EndTime != "0.9" {
		t.Errorf("span = %s..%s", seg.StartTime, seg.EndTime)
	}
	wantIdx := []int{0, 1, 2, 3, 4}
	if len(seg.TokenIndices) != len(wantIdx) {
		t.Fatalf("indices = %v", seg.TokenIndices)
	}
	for i, idx := range wantIdx {
		if seg.TokenIndices[i] != idx {
			t.Errorf("indices = %v, want %v", seg.TokenIndices, wantIdx)
		}
	}
}

func TestExtractMultipleSentences(t *testing.T) {
	tokens := []transcript.Token{
		word("Hello", "0.0", "0.4"),
		punct(".", "0.4"),
		word("How", "0.6", "0.8"),
		word("are", "0.8", "1.0"),
		word("you", "1.0", "1.2"),
		punct("?", "1.2"),
	}

	segs, err := newTestExtractor(Config{}).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Transcript != "Hello." {
		t.Errorf("segment 0 = %q", segs[0].Transcript)
	}
	if segs[1].Transcript != "How are you?" {
		t.Errorf("segment 1 = %q", segs[1].Transcript)
	}
	if segs[0].ID != 0 || segs[1].ID != 1 {
		t.Errorf("ids = %d, %d", segs[0].ID, segs[1].ID)
	}
}

func TestExtractPauseGapBoundary(t *testing.T) {
	// No terminal punctuation at all; a 2s silence splits the stream.
	tokens := []transcript.Token{
		word("first", "0.0", "0.5"),
		word("thought", "0.6", "1.0"),
		word("second", "3.0", "3.5"),
		word("thought", "3.6", "4.0"),
	}

	segs, err := newTestExtractor(Config{PauseThreshold: 1.5}).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Transcript != "first thought" || segs[1].Transcript != "second thought" {
		t.Errorf("transcripts = %q, %q", segs[0].Transcript, segs[1].Transcript)
	}
	if segs[1].StartTime != "3.0" {
		t.Errorf("segment 1 start = %s", segs[1].StartTime)
	}
}

func TestExtractTrailingSegmentWithoutTerminal(t *testing.T) {
	tokens := []transcript.Token{
		word("Done", "0.0", "0.3"),
		punct(".", "0.3"),
		word("trailing", "0.5", "0.9"),
		word("words", "0.9", "1.2"),
	}

	segs, err := newTestExtractor(Config{}).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[1].Transcript != "trailing words" {
		t.Errorf("trailing segment = %q", segs[1].Transcript)
	}
}

func TestExtractEmptyStream(t *testing.T) {
	segs, err := newTestExtractor(Config{}).Extract(nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 0 {
		t.Errorf("expected empty segment list, got %v", segs)
	}
}

func TestExtractOrphanPunctuationDropped(t *testing.T) {
	tokens := []transcript.Token{
		punct(".", "0.0"),
		word("Real", "0.5", "0.9"),
		word("content", "0.9", "1.3"),
		punct(".", "1.3"),
	}

	segs, err := newTestExtractor(Config{}).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Transcript != "Real content." {
		t.Errorf("transcript = %q", segs[0].Transcript)
	}
	// The orphan at index 0 is dropped, not attached.
	for _, idx := range segs[0].TokenIndices {
		if idx == 0 {
			t.Error("orphan punctuation must not be part of any segment")
		}
	}
}

func TestExtractMalformedToken(t *testing.T) {
	tokens := []transcript.Token{
		word("ok", "0.0", "0.3"),
		{Type: transcript.TypePronunciation, Content: "broken"},
	}

	_, err := newTestExtractor(Config{}).Extract(tokens)
	if !errors.Is(err, errors.ErrCodeMalformedTranscript) {
		t.Fatalf("expected MalformedTranscript, got %v", err)
	}
	if errors.IsRetryable(err) {
		t.Error("malformed transcript must not be retryable")
	}
}

func TestExtractCoverageInvariant(t *testing.T) {
	// Mixed punctuation and pause boundaries; every token index must land
	// in exactly one segment, in order, with no gaps.
	tokens := []transcript.Token{
		word("a", "0.0", "0.2"),
		word("b", "0.2", "0.4"),
		punct(".", "0.4"),
		word("c", "0.5", "0.7"),
		word("d", "3.0", "3.2"),
		punct("!", "3.2"),
		word("e", "3.4", "3.6"),
	}

	segs, err := newTestExtractor(Config{PauseThreshold: 1.5}).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var all []int
	for _, seg := range segs {
		all = append(all, seg.TokenIndices...)
	}
	if len(all) != len(tokens) {
		t.Fatalf("covered %d of %d tokens", len(all), len(tokens))
	}
	for i, idx := range all {
		if idx != i {
			t.Fatalf("coverage broken at position %d: indices %v", i, all)
		}
	}
}

func TestExtractCustomTerminalSet(t *testing.T) {
	tokens := []transcript.Token{
		word("uno", "0.0", "0.3"),
		punct(";", "0.3"),
		word("dos", "0.4", "0.7"),
	}

	cfg := Config{TerminalPunctuation: []string{";"}}
	segs, err := newTestExtractor(cfg).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Transcript != "uno;" {
		t.Errorf("segment 0 = %q", segs[0].Transcript)
	}
}

func TestFromProviderPassThrough(t *testing.T) {
	audio := []transcript.AudioSegment{
		{ID: 0, Transcript: "One.", StartTime: "0.0", EndTime: "1.0", Items: []int{0, 1}},
		{ID: 1, Transcript: "Two.", StartTime: "1.2", EndTime: "2.0", Items: []int{2, 3}},
	}

	segs := FromProvider(audio)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Transcript != "One." || segs[0].ID != 0 {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if len(segs[1].TokenIndices) != 2 || segs[1].TokenIndices[0] != 2 {
		t.Errorf("segment 1 indices = %v", segs[1].TokenIndices)
	}
}
