// Package config loads the settings of a paracad session from YAML.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v3"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/expr"
	"github.com/chazu/paracad/pkg/kernel/sdfx"
	"github.com/chazu/paracad/pkg/tessellate"
)

// Config holds the tunables of the document core and its collaborators.
type Config struct {
	// DebugChecks turns contract violations during recompute into panics.
	DebugChecks bool `yaml:"debug_checks"`
	// ExpressionTimeout bounds the evaluation of one property expression.
	ExpressionTimeout time.Duration `yaml:"expression_timeout"`
	// MeshCells is the marching cubes resolution along the longest axis.
	MeshCells int `yaml:"mesh_cells"`
	// MeshCacheSize is the number of meshes kept between passes.
	MeshCacheSize int `yaml:"mesh_cache_size"`
	// LogLevel is a loggo config string, e.g. "INFO" or
	// "<root>=WARNING;paracad.document=DEBUG".
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ExpressionTimeout: expr.DefaultTimeout,
		MeshCells:         sdfx.DefaultMeshCells,
		MeshCacheSize:     tessellate.DefaultCacheSize,
		LogLevel:          "WARNING",
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.NotFoundf("config file %q", path)
		}
		return Config{}, errors.Annotatef(err, "reading config %q", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Annotatef(err, "config %q", path)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	var raw struct {
		DebugChecks       *bool   `yaml:"debug_checks"`
		ExpressionTimeout *string `yaml:"expression_timeout"`
		MeshCells         *int    `yaml:"mesh_cells"`
		MeshCacheSize     *int    `yaml:"mesh_cache_size"`
		LogLevel          *string `yaml:"log_level"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Annotate(err, "parsing config")
	}
	if raw.DebugChecks != nil {
		cfg.DebugChecks = *raw.DebugChecks
	}
	if raw.ExpressionTimeout != nil {
		d, err := time.ParseDuration(*raw.ExpressionTimeout)
		if err != nil {
			return Config{}, errors.NotValidf("expression_timeout %q", *raw.ExpressionTimeout)
		}
		cfg.ExpressionTimeout = d
	}
	if raw.MeshCells != nil {
		cfg.MeshCells = *raw.MeshCells
	}
	if raw.MeshCacheSize != nil {
		cfg.MeshCacheSize = *raw.MeshCacheSize
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

// Validate checks the ranges of every setting.
func (c Config) Validate() error {
	if c.ExpressionTimeout <= 0 {
		return errors.NotValidf("expression_timeout %v", c.ExpressionTimeout)
	}
	if c.MeshCells < 8 {
		return errors.NotValidf("mesh_cells %d (minimum 8)", c.MeshCells)
	}
	if c.MeshCacheSize <= 0 {
		return errors.NotValidf("mesh_cache_size %d", c.MeshCacheSize)
	}
	if _, err := loggo.ParseConfigString(c.LogLevel); err != nil {
		return errors.NotValidf("log_level %q", c.LogLevel)
	}
	return nil
}

// DocumentOptions converts the settings into document options.
func (c Config) DocumentOptions() []document.Option {
	return []document.Option{
		document.WithDebugChecks(c.DebugChecks),
		document.WithExpressionTimeout(c.ExpressionTimeout),
	}
}

// KernelOptions converts the settings into sdfx kernel options.
func (c Config) KernelOptions() []sdfx.Option {
	return []sdfx.Option{sdfx.WithMeshCells(c.MeshCells)}
}

// ApplyLogging configures the loggo loggers from LogLevel.
func (c Config) ApplyLogging() error {
	return errors.Trace(loggo.ConfigureLoggers(c.LogLevel))
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	out := struct {
		DebugChecks       bool   `yaml:"debug_checks"`
		ExpressionTimeout string `yaml:"expression_timeout"`
		MeshCells         int    `yaml:"mesh_cells"`
		MeshCacheSize     int    `yaml:"mesh_cache_size"`
		LogLevel          string `yaml:"log_level"`
	}{c.DebugChecks, c.ExpressionTimeout.String(), c.MeshCells, c.MeshCacheSize, c.LogLevel}
	data, err := yaml.Marshal(out)
	return data, errors.Trace(err)
}
