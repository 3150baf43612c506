package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = ".schedeval.yaml"

// Config holds tool-wide settings. Unset fields are filled from Default.
type Config struct {
	Parallelism *int   `yaml:"parallelism"` // concurrent candidate evaluations, 0 = unlimited
	Lenient     bool   `yaml:"lenient"`     // evaluate non-topological orders instead of rejecting them
	StateDir    string `yaml:"state_dir"`
	StorePath   string `yaml:"store_path"`  // sqlite archive of evaluated runs
	GanttWidth  int    `yaml:"gantt_width"` // 0 = terminal width
	Color       *bool  `yaml:"color"`       // nil = auto
	Listen      string `yaml:"listen"`
	Model       string `yaml:"model"` // Claude model for narrative summaries
}

const defaultParallelism = 4

// Default returns the built-in settings.
func Default() *Config {
	parallelism := defaultParallelism
	return &Config{
		Parallelism: &parallelism,
		StateDir:    ".schedeval",
		StorePath:   ".schedeval/history.db",
		Listen:      "127.0.0.1:8080",
	}
}

// Load reads a YAML config file and fills unset fields with defaults. When
// path is empty, DefaultPath is used if present; a missing default file is not
// an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := &Config{}
	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.SetStrict(true)
	// An empty or comment-only file decodes as io.EOF and means all defaults.
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Parallelism == nil {
		c.Parallelism = d.Parallelism
	}
	if c.StateDir == "" {
		c.StateDir = d.StateDir
	}
	if c.StorePath == "" {
		c.StorePath = d.StorePath
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
}

// Workers returns the evaluation concurrency limit; 0 means unlimited.
func (c *Config) Workers() int {
	if c.Parallelism == nil {
		return defaultParallelism
	}
	return *c.Parallelism
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	if c.Parallelism != nil && *c.Parallelism < 0 {
		return fmt.Errorf("config: parallelism must be >= 0, got %d", *c.Parallelism)
	}
	if c.GanttWidth < 0 {
		return fmt.Errorf("config: gantt_width must be >= 0, got %d", c.GanttWidth)
	}
	return nil
}
