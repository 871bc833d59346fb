// Package config loads and validates the device configuration file.
//
// The file is YAML; its shape is enforced by an embedded CUE schema, so a
// malformed config fails with a pointed message instead of surfacing as a
// zero value deep inside the orchestrator.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/fieldscan/tankmove/internal/geo"
)

//go:embed schema.cue
var schemaCUE string

// Config is the validated device configuration.
type Config struct {
	// APIBaseURL is the remote inventory authority, e.g.
	// "https://inventory.example.com".
	APIBaseURL string `yaml:"api_base_url"`

	// QueuePath is the durable offline queue database file.
	QueuePath string `yaml:"queue_path"`

	Geofence GeofenceConfig `yaml:"geofence"`

	// LocationTimeoutSeconds bounds the send-time location fix. Optional;
	// defaults to 10.
	LocationTimeoutSeconds float64 `yaml:"location_timeout_seconds"`

	// LogEntries is the transition log capacity. Optional; defaults to 20.
	LogEntries int `yaml:"log_entries"`
}

// GeofenceConfig is the trusted reference point and inclusive radius.
type GeofenceConfig struct {
	Lat          float64 `yaml:"lat"`
	Lng          float64 `yaml:"lng"`
	RadiusMeters float64 `yaml:"radius_meters"`
}

// Reference returns the geofence reference point as a coordinate.
func (g GeofenceConfig) Reference() geo.Coordinate {
	return geo.Coordinate{Lat: g.Lat, Lng: g.Lng}
}

// LocationTimeout returns the configured fix timeout as a duration.
func (c *Config) LocationTimeout() time.Duration {
	return time.Duration(c.LocationTimeoutSeconds * float64(time.Second))
}

// Load reads, schema-validates and decodes the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes raw YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("parse config: empty document")
	}

	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg := &Config{
		LocationTimeoutSeconds: 10,
		LogEntries:             20,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// validateSchema unifies the document with the embedded CUE schema.
func validateSchema(doc map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	unified := schema.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
