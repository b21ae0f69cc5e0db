package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if err := c.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if c.Calendar.Enabled && (c.Calendar.ClientID == "" || c.Calendar.ClientSecret == "") {
		return fmt.Errorf("calendar: client_id and client_secret are required when enabled")
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be > 0 (got %d)", c.Embedding.Dimensions)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	return nil
}

func (p *PipelineConfig) validate() error {
	if p.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", p.Workers)
	}
	if p.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0 (got %d)", p.QueueSize)
	}
	if p.DumpTimeout <= 0 {
		return fmt.Errorf("dump_timeout must be > 0 (got %v)", p.DumpTimeout)
	}
	if p.ContextLimit < 0 {
		return fmt.Errorf("context_limit must be >= 0 (got %d)", p.ContextLimit)
	}
	return nil
}
