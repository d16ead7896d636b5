package awstranscribe

import (
	"errors"
	"fmt"
	"time"
)

// ProviderName is the registered name for the AWS Transcribe backend.
const ProviderName = "aws-transcribe"

// Config holds AWS Transcribe backend configuration.
type Config struct {
	// Region is the AWS region for the Transcribe service.
	Region string `yaml:"region" mapstructure:"region"`

	// OutputBucket receives raw job output and result documents.
	OutputBucket string `yaml:"output_bucket" mapstructure:"output_bucket" validate:"required"`

	// LanguageCode is the expected language of the media.
	LanguageCode string `yaml:"language_code" mapstructure:"language_code"`

	// PollInterval is the delay between job status checks.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// MaxPollAttempts bounds how long a job is waited on before the
	// attempt is treated as timed out.
	MaxPollAttempts int `yaml:"max_poll_attempts" mapstructure:"max_poll_attempts"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.LanguageCode == "" {
		c.LanguageCode = "en-US"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.MaxPollAttempts <= 0 {
		c.MaxPollAttempts = 30
	}
}

// Validate checks that the backend configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.OutputBucket == "" {
		errs = append(errs, errors.New("transcriber: output_bucket is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("transcriber: invalid config: %w", errors.Join(errs...))
	}
	return nil
}
