package orchestrator

import (
	"fmt"
	"time"

	"github.com/skillsenselab/transcriptflow/resilience"
)

// StageConfig holds retry and timeout settings for one pipeline stage.
type StageConfig struct {
	// MaxAttempts bounds attempts for the stage, including the first.
	MaxAttempts int `mapstructure:"max_attempts"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff string `mapstructure:"initial_backoff"`
	// MaxBackoff caps the delay between retries.
	MaxBackoff string `mapstructure:"max_backoff"`
	// Timeout bounds a single attempt. Empty means no per-attempt bound.
	Timeout string `mapstructure:"timeout"`
}

func (c *StageConfig) applyDefaults(attempts int, timeout string) {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = attempts
	}
	if c.InitialBackoff == "" {
		c.InitialBackoff = "1s"
	}
	if c.MaxBackoff == "" {
		c.MaxBackoff = "30s"
	}
	if c.Timeout == "" {
		c.Timeout = timeout
	}
}

func (c StageConfig) validate(name string) error {
	for _, d := range []struct {
		field, val string
	}{
		{"initial_backoff", c.InitialBackoff},
		{"max_backoff", c.MaxBackoff},
		{"timeout", c.Timeout},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("orchestrator %s: invalid %s %q: %w", name, d.field, d.val, err)
		}
	}
	return nil
}

// policy builds the retry policy for this stage.
func (c StageConfig) policy() resilience.Policy {
	p := resilience.Policy{
		MaxAttempts:    c.MaxAttempts,
		InitialBackoff: parseDuration(c.InitialBackoff),
		MaxBackoff:     parseDuration(c.MaxBackoff),
	}
	p.ApplyDefaults()
	return p
}

// attemptTimeout returns the per-attempt bound, zero when unbounded.
func (c StageConfig) attemptTimeout() time.Duration {
	return parseDuration(c.Timeout)
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Config holds per-stage orchestration settings.
type Config struct {
	// ResultsBucket receives the persisted result document.
	ResultsBucket string `mapstructure:"results_bucket"`
	// ResultsPrefix prefixes the result document key.
	ResultsPrefix string `mapstructure:"results_prefix"`

	Transcription StageConfig `mapstructure:"transcription"`
	Segmentation  StageConfig `mapstructure:"segmentation"`
	Dispatch      StageConfig `mapstructure:"dispatch"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.ResultsPrefix == "" {
		c.ResultsPrefix = "transcriptions/"
	}
	// Recognition jobs run for minutes; segmentation is local and only
	// fails on malformed input, so one attempt suffices.
	c.Transcription.applyDefaults(3, "10m")
	c.Segmentation.applyDefaults(1, "1m")
	c.Dispatch.applyDefaults(3, "2m")
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.ResultsBucket == "" {
		return fmt.Errorf("orchestrator results_bucket is required")
	}
	if err := c.Transcription.validate("transcription"); err != nil {
		return err
	}
	if err := c.Segmentation.validate("segmentation"); err != nil {
		return err
	}
	return c.Dispatch.validate("dispatch")
}
