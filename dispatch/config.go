package dispatch

import (
	"fmt"
	"time"
)

// Config holds queue connection and producer behavior configuration.
type Config struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers"`

	// Topic is the topic chunk messages are published to.
	Topic string `mapstructure:"topic"`

	// Producer settings
	Compression  string `mapstructure:"compression"` // none, gzip, snappy, lz4, zstd
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout string `mapstructure:"batch_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	RequiredAcks int    `mapstructure:"required_acks"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "transcript-chunks"
	}
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.BatchSize <= 0 {
		// One message per chunk keeps ordering observable; batching
		// stays small so confirmation tracks publish order.
		c.BatchSize = 1
	}
	if c.BatchTimeout == "" {
		c.BatchTimeout = "1s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "10s"
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = -1 // all replicas
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("dispatch brokers are required")
	}
	if c.Topic == "" {
		return fmt.Errorf("dispatch topic is required")
	}
	for _, d := range []struct {
		name, val string
	}{
		{"batch_timeout", c.BatchTimeout},
		{"write_timeout", c.WriteTimeout},
		{"dial_timeout", c.DialTimeout},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.val, err)
		}
	}
	return nil
}

// ParseDuration parses a duration string, returning zero on empty input.
func ParseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
