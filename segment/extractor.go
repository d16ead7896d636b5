package segment

import (
	"strings"

	"github.com/skillsenselab/transcriptflow/errors"
	"github.com/skillsenselab/transcriptflow/logger"
	"github.com/skillsenselab/transcriptflow/transcript"
)

// Extractor groups recognition tokens into sentence-level segments.
type Extractor struct {
	cfg      Config
	terminal map[string]bool
	log      *logger.Logger
}

// NewExtractor creates an Extractor from config.
func NewExtractor(cfg Config, log *logger.Logger) *Extractor {
	cfg.ApplyDefaults()
	return &Extractor{
		cfg:      cfg,
		terminal: cfg.terminalSet(),
		log:      log.WithComponent("segment.extractor"),
	}
}

// open accumulates tokens for the segment currently being built.
type open struct {
	text      strings.Builder
	indices   []int
	startTime string
	endTime   string
}

// Extract scans the token stream left to right and returns the ordered
// segments covering it. An empty stream yields an empty list. A
// pronunciation token without usable timestamps fails the whole
// extraction; the error is terminal for this file.
func (e *Extractor) Extract(tokens []transcript.Token) ([]Segment, error) {
	var segments []Segment
	var cur *open
	prevEnd := 0.0

	flush := func() {
		segments = append(segments, Segment{
			ID:           len(segments),
			Transcript:   cur.text.String(),
			StartTime:    cur.startTime,
			EndTime:      cur.endTime,
			TokenIndices: cur.indices,
		})
		cur = nil
	}

	for i, tok := range tokens {
		switch tok.Type {
		case transcript.TypePunctuation:
			if cur == nil {
				// Cannot start a segment on punctuation alone.
				e.log.Warn("dropping orphan punctuation token", logger.Fields(
					logger.FieldOrdinal, i,
					"content", tok.Content,
				))
				continue
			}
			cur.text.WriteString(tok.Content)
			cur.indices = append(cur.indices, i)
			if tok.EndTime != "" {
				cur.endTime = tok.EndTime
			}
			if end, ok := parseEnd(tok); ok {
				prevEnd = end
			}
			if e.terminal[tok.Content] {
				flush()
			}

		case transcript.TypePronunciation:
			if !tok.HasTiming() {
				return nil, errors.MalformedTranscript("pronunciation token missing timestamps").
					WithDetail("token_index", i).
					WithDetail("content", tok.Content)
			}
			start, end, err := tok.Seconds()
			if err != nil {
				return nil, errors.MalformedTranscript("pronunciation token has unparseable timestamps").
					WithDetail("token_index", i).
					WithCause(err)
			}

			// A long silence closes the running segment even without
			// terminal punctuation.
			if cur != nil && start-prevEnd > e.cfg.PauseThreshold {
				flush()
			}

			if cur == nil {
				cur = &open{startTime: tok.StartTime}
			} else {
				cur.text.WriteString(" ")
			}
			cur.text.WriteString(tok.Content)
			cur.indices = append(cur.indices, i)
			cur.endTime = tok.EndTime
			prevEnd = end

		default:
			return nil, errors.MalformedTranscript("unknown token type").
				WithDetail("token_index", i).
				WithDetail("type", string(tok.Type))
		}
	}

	// Trailing tokens without terminal punctuation still form a segment.
	if cur != nil {
		flush()
	}

	return segments, nil
}

func parseEnd(tok transcript.Token) (float64, bool) {
	if tok.EndTime == "" {
		return 0, false
	}
	_, end, err := tok.Seconds()
	if err != nil {
		return 0, false
	}
	return end, true
}
