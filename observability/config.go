package observability

import (
	"fmt"
	"time"
)

// Config holds telemetry export configuration.
type Config struct {
	// Enabled controls whether telemetry providers are installed.
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string `mapstructure:"endpoint"`

	// Insecure allows plain HTTP to the collector.
	Insecure bool `mapstructure:"insecure"`

	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`

	// MetricInterval is the metric export interval.
	MetricInterval string `mapstructure:"metric_interval"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == "" {
		c.MetricInterval = "15s"
	}
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("observability endpoint is required")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability sample_rate must be in [0, 1] (got: %g)", c.SampleRate)
	}
	if _, err := time.ParseDuration(c.MetricInterval); err != nil {
		return fmt.Errorf("invalid metric_interval %q: %w", c.MetricInterval, err)
	}
	return nil
}

func (c Config) metricInterval() time.Duration {
	d, _ := time.ParseDuration(c.MetricInterval)
	return d
}
