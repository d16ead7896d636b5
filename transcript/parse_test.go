package transcript

import (
	"encoding/json"
	"testing"
)

const rawFixture = `{
  "results": {
    "transcripts": [{"transcript": "This, is fine."}],
    "items": [
      {"type": "pronunciation", "start_time": "0.0", "end_time": "0.3",
       "alternatives": [{"content": "This", "confidence": "0.99"}]},
      {"type": "punctuation",
       "alternatives": [{"content": ","}]},
      {"type": "pronunciation", "start_time": "0.4", "end_time": "0.6",
       "alternatives": [{"content": "is", "confidence": "0.98"}]},
      {"type": "pronunciation", "start_time": "0.6", "end_time": "0.9",
       "alternatives": [{"content": "fine", "confidence": "0.97"}]},
      {"type": "punctuation",
       "alternatives": [{"content": "."}]}
    ]
  }
}`

func TestParseRawTokens(t *testing.T) {
	res, err := ParseRaw([]byte(rawFixture))
	if err != nil {
		t.Fatalf("ParseRaw: %v", err)
	}

	if res.Text != "This, is fine." {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.Tokens) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(res.Tokens))
	}

	// Punctuation inherits the end time of the preceding item.
	comma := res.Tokens[1]
	if comma.Type != TypePunctuation || comma.Content != "," {
		t.Errorf("token 1 = %+v", comma)
	}
	if comma.StartTime != "0.3" || comma.EndTime != "0.3" {
		t.Errorf("comma timing = %s..%s, want 0.3..0.3", comma.StartTime, comma.EndTime)
	}

	period := res.Tokens[4]
	if period.StartTime != "0.9" || period.EndTime != "0.9" {
		t.Errorf("period timing = %s..%s, want 0.9..0.9", period.StartTime, period.EndTime)
	}

	if res.HasProviderSegments() {
		t.Error("fixture has no audio_segments")
	}
}

func TestParseRawAudioSegments(t *testing.T) {
	raw := `{
	  "results": {
	    "transcripts": [{"transcript": "One. Two."}],
	    "items": [],
	    "audio_segments": [
	      {"id": 0, "transcript": "One.", "start_time": "0.0", "end_time": "1.0", "items": [0, 1]},
	      {"id": 1, "transcript": "Two.", "start_time": "1.2", "end_time": "2.0", "items": [2, 3]}
	    ]
	  }
	}`

	res, err := ParseRaw([]byte(raw))
	if err != nil {
		t.Fatalf("ParseRaw: %v", err)
	}
	if !res.HasProviderSegments() {
		t.Fatal("expected provider segments")
	}
	if len(res.AudioSegments) != 2 {
		t.Fatalf("expected 2 audio segments, got %d", len(res.AudioSegments))
	}
	if res.AudioSegments[1].Transcript != "Two." || res.AudioSegments[1].ID != 1 {
		t.Errorf("segment 1 = %+v", res.AudioSegments[1])
	}
}

func TestParseRawSkipsUnknownItemTypes(t *testing.T) {
	raw := `{"results": {"items": [
	  {"type": "speaker-change", "alternatives": [{"content": "spk_0"}]},
	  {"type": "pronunciation", "start_time": "1.0", "end_time": "1.5",
	   "alternatives": [{"content": "hello", "confidence": "0.9"}]}
	]}}`

	res, err := ParseRaw([]byte(raw))
	if err != nil {
		t.Fatalf("ParseRaw: %v", err)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Content != "hello" {
		t.Errorf("tokens = %+v", res.Tokens)
	}
}

func TestParseRawInvalidJSON(t *testing.T) {
	if _, err := ParseRaw([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestResultDocumentRoundTrip(t *testing.T) {
	res := NewResult("media/1 - Welcome.mp4", "Hello.", "transcribe-abc", "video")
	res.Tokens = []Token{
		{Type: TypePronunciation, Content: "Hello", StartTime: "0.0", EndTime: "0.57", Confidence: "0.99"},
		{Type: TypePunctuation, Content: ".", StartTime: "0.57", EndTime: "0.57"},
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.OriginalFile != res.OriginalFile || back.MediaType != "video" {
		t.Errorf("round trip lost fields: %+v", back)
	}
	// Decimal-string precision must survive the round trip untouched.
	if back.Tokens[0].EndTime != "0.57" {
		t.Errorf("end_time = %s, want 0.57", back.Tokens[0].EndTime)
	}
}

func TestTokenSeconds(t *testing.T) {
	tok := Token{StartTime: "1.25", EndTime: "2.5"}
	start, end, err := tok.Seconds()
	if err != nil {
		t.Fatalf("Seconds: %v", err)
	}
	if start != 1.25 || end != 2.5 {
		t.Errorf("got %v..%v", start, end)
	}

	if _, _, err := (Token{StartTime: "x", EndTime: "1"}).Seconds(); err == nil {
		t.Error("expected parse error")
	}
}
