package segment

import (
	"errors"
	"fmt"
)

// Config holds segmentation configuration.
type Config struct {
	// TerminalPunctuation is the set of punctuation marks that close a
	// sentence.
	TerminalPunctuation []string `yaml:"terminal_punctuation" mapstructure:"terminal_punctuation"`

	// PauseThreshold is the silence gap in seconds between consecutive
	// tokens that closes a segment even without terminal punctuation.
	PauseThreshold float64 `yaml:"pause_threshold" mapstructure:"pause_threshold"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if len(c.TerminalPunctuation) == 0 {
		c.TerminalPunctuation = []string{".", "?", "!"}
	}
	if c.PauseThreshold <= 0 {
		c.PauseThreshold = 1.5
	}
}

// Validate checks that the segmentation configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.PauseThreshold < 0 {
		errs = append(errs, errors.New("segment: pause_threshold must be positive"))
	}
	for _, p := range c.TerminalPunctuation {
		if p == "" {
			errs = append(errs, errors.New("segment: terminal_punctuation entries must be non-empty"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("segment: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) terminalSet() map[string]bool {
	set := make(map[string]bool, len(c.TerminalPunctuation))
	for _, p := range c.TerminalPunctuation {
		set[p] = true
	}
	return set
}
