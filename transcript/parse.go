package transcript

import (
	"encoding/json"
	"fmt"
)

// Raw recognizer output format: results.transcripts, results.items with
// per-item alternatives, and optionally results.audio_segments.

type rawOutput struct {
	Results rawResults `json:"results"`
}

type rawResults struct {
	Transcripts   []rawTranscript   `json:"transcripts"`
	Items         []rawItem         `json:"items"`
	AudioSegments []rawAudioSegment `json:"audio_segments"`
}

type rawTranscript struct {
	Transcript string `json:"transcript"`
}

type rawItem struct {
	Type         string           `json:"type"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	Alternatives []rawAlternative `json:"alternatives"`
}

type rawAlternative struct {
	Content    string `json:"content"`
	Confidence string `json:"confidence"`
}

type rawAudioSegment struct {
	ID         int    `json:"id"`
	Transcript string `json:"transcript"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Items      []int  `json:"items"`
}

// ParseRaw normalizes the recognizer's native output into the token
// model. Only pronunciation and punctuation items are kept. Punctuation
// items carry no timing of their own; they inherit the end time of the
// preceding item so downstream gap detection sees a continuous stream.
func ParseRaw(data []byte) (*Result, error) {
	var raw rawOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse recognizer output: %w", err)
	}

	res := &Result{}
	if len(raw.Results.Transcripts) > 0 {
		res.Text = raw.Results.Transcripts[0].Transcript
	}

	lastEnd := "0.0"
	for _, item := range raw.Results.Items {
		if item.Type != string(TypePronunciation) && item.Type != string(TypePunctuation) {
			continue
		}
		tok := Token{
			Type:      TokenType(item.Type),
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
		}
		if len(item.Alternatives) > 0 {
			tok.Content = item.Alternatives[0].Content
			tok.Confidence = item.Alternatives[0].Confidence
		}
		if tok.Type == TypePunctuation && !tok.HasTiming() {
			tok.StartTime = lastEnd
			tok.EndTime = lastEnd
		}
		if tok.EndTime != "" {
			lastEnd = tok.EndTime
		}
		res.Tokens = append(res.Tokens, tok)
	}

	for _, seg := range raw.Results.AudioSegments {
		res.AudioSegments = append(res.AudioSegments, AudioSegment{
			ID:         seg.ID,
			Transcript: seg.Transcript,
			StartTime:  seg.StartTime,
			EndTime:    seg.EndTime,
			Items:      seg.Items,
		})
	}

	return res, nil
}
