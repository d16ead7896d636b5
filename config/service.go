package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/skillsenselab/transcriptflow/dispatch"
	"github.com/skillsenselab/transcriptflow/logger"
	"github.com/skillsenselab/transcriptflow/observability"
	"github.com/skillsenselab/transcriptflow/orchestrator"
	"github.com/skillsenselab/transcriptflow/segment"
	"github.com/skillsenselab/transcriptflow/server"
	"github.com/skillsenselab/transcriptflow/store"
	"github.com/skillsenselab/transcriptflow/transcriber/awstranscribe"
)

// Config is the full service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Store         store.Config         `yaml:"store" mapstructure:"store"`
	Transcriber   awstranscribe.Config `yaml:"transcriber" mapstructure:"transcriber"`
	Segmentation  segment.Config       `yaml:"segmentation" mapstructure:"segmentation"`
	Dispatch      dispatch.Config      `yaml:"dispatch" mapstructure:"dispatch"`
	Orchestrator  orchestrator.Config  `yaml:"orchestrator" mapstructure:"orchestrator"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills zero-valued fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "transcriptflow"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Transcriber.ApplyDefaults()
	c.Segmentation.ApplyDefaults()
	c.Dispatch.ApplyDefaults()
	c.Orchestrator.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the whole configuration, failing on the first invalid
// section.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, section := range []struct {
		name     string
		validate func() error
	}{
		{"logging", c.Logging.Validate},
		{"server", c.Server.Validate},
		{"store", c.Store.Validate},
		{"transcriber", c.Transcriber.Validate},
		{"segmentation", c.Segmentation.Validate},
		{"dispatch", c.Dispatch.Validate},
		{"orchestrator", c.Orchestrator.Validate},
		{"observability", c.Observability.Validate},
	} {
		if err := section.validate(); err != nil {
			return fmt.Errorf("config.%s: %w", section.name, err)
		}
	}
	return nil
}
