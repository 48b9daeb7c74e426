// Package config holds the fixed settings shared by the capture and playback
// tools. The embedded defaults.json is the single source of truth; the only
// values a user supplies are the ones the tools prompt for.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/hexlink/internal/serialport"
)

//go:embed defaults.json
var defaultsJSON []byte

// maxReadSize bounds read_size so a bad value cannot allocate unbounded memory.
const maxReadSize = 1 << 20

// Config holds serial line and capture settings. Fields omitted from the JSON
// fall back to the defaults returned by the Get* methods.
type Config struct {
	// Serial line framing
	DataBits    *int    `json:"data_bits,omitempty"`
	StopBits    *int    `json:"stop_bits,omitempty"`
	Parity      *string `json:"parity,omitempty"`
	ReadTimeout *string `json:"read_timeout,omitempty"` // duration string like "1s"

	// Capture
	ReadSize     *int    `json:"read_size,omitempty"`
	ECFilePrefix *string `json:"ec_file_prefix,omitempty"`
}

// Load parses and validates a JSON configuration document. Unknown fields
// are rejected.
func Load(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	return Load(defaultsJSON)
}

// MustDefaults is like Defaults but panics if the embedded file is invalid,
// which can only happen if defaults.json was edited badly.
func MustDefaults() *Config {
	cfg, err := Defaults()
	if err != nil {
		panic("embedded defaults.json: " + err.Error())
	}
	return cfg
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.ReadTimeout != nil && *c.ReadTimeout != "" {
		d, err := time.ParseDuration(*c.ReadTimeout)
		if err != nil {
			return fmt.Errorf("invalid read_timeout '%s': %w", *c.ReadTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("read_timeout must be positive, got %s", d)
		}
	}

	if c.ReadSize != nil {
		if *c.ReadSize <= 0 || *c.ReadSize > maxReadSize {
			return fmt.Errorf("read_size must be between 1 and %d, got %d", maxReadSize, *c.ReadSize)
		}
	}

	if c.ECFilePrefix != nil && strings.ContainsAny(*c.ECFilePrefix, `/\`) {
		return fmt.Errorf("ec_file_prefix must not contain path separators, got %q", *c.ECFilePrefix)
	}

	// Serial framing is checked by the same rules used when opening a port.
	// The baud rate is a placeholder; only the line settings are under test.
	if _, err := c.PortOptions(9600).Normalize(); err != nil {
		return err
	}

	return nil
}

// GetDataBits returns the data_bits value or the default.
func (c *Config) GetDataBits() int {
	if c.DataBits == nil {
		return 8
	}
	return *c.DataBits
}

// GetStopBits returns the stop_bits value or the default.
func (c *Config) GetStopBits() int {
	if c.StopBits == nil {
		return 1
	}
	return *c.StopBits
}

// GetParity returns the parity value or the default.
func (c *Config) GetParity() string {
	if c.Parity == nil {
		return "N"
	}
	return *c.Parity
}

// GetReadTimeout parses and returns the ReadTimeout as a time.Duration.
func (c *Config) GetReadTimeout() time.Duration {
	if c.ReadTimeout == nil || *c.ReadTimeout == "" {
		return time.Second
	}
	d, err := time.ParseDuration(*c.ReadTimeout)
	if err != nil {
		return time.Second
	}
	return d
}

// GetReadSize returns the maximum number of bytes requested per read.
func (c *Config) GetReadSize() int {
	if c.ReadSize == nil {
		return 4096
	}
	return *c.ReadSize
}

// GetECFilePrefix returns the prefix added to the EC output file name.
func (c *Config) GetECFilePrefix() string {
	if c.ECFilePrefix == nil {
		return "EC_"
	}
	return *c.ECFilePrefix
}

// PortOptions combines the configured line settings with a prompted baud rate.
func (c *Config) PortOptions(baud int) serialport.PortOptions {
	return serialport.PortOptions{
		BaudRate:    baud,
		DataBits:    c.GetDataBits(),
		StopBits:    c.GetStopBits(),
		Parity:      c.GetParity(),
		ReadTimeout: c.GetReadTimeout(),
	}
}
