package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/retry"
	"github.com/mash-protocol/mash-logic/pkg/version"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultMaxRounds       = 64
	DefaultShutdownTimeout = 5 * time.Second
	DefaultStateFile       = "state.json"
)

// Bus kinds.
const (
	BusNone      = "none"
	BusSimulated = "simulated"
)

// ErrInvalid is wrapped by every validation problem.
var ErrInvalid = errors.New("invalid configuration")

// Config is the runtime configuration document.
type Config struct {
	// Version is the document format version. Empty means version.Current.
	Version     string       `yaml:"version,omitempty"`
	Runtime     Runtime      `yaml:"runtime"`
	Bus         Bus          `yaml:"bus"`
	Devices     []Device     `yaml:"devices"`
	Connections []Connection `yaml:"connections"`
}

// Runtime holds process-wide settings.
type Runtime struct {
	// DataDir is where devices keep files and the state file lives. Empty
	// disables retained state.
	DataDir string `yaml:"data_dir"`

	// StateFile is the retained state file, relative to DataDir.
	StateFile string `yaml:"state_file"`

	// MaxRounds bounds the rounds of one settle.
	MaxRounds int `yaml:"max_rounds"`

	// ShutdownTimeout bounds how long device tasks get to exit.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TraceFile, if set, records the exchange trace in CBOR.
	TraceFile string `yaml:"trace_file"`

	// MetricsAddr, if set, serves Prometheus metrics on this address.
	MetricsAddr string `yaml:"metrics_addr"`
}

// StatePath returns the retained state file path, or "" if disabled.
func (r Runtime) StatePath() string {
	if r.DataDir == "" {
		return ""
	}
	if filepath.IsAbs(r.StateFile) {
		return r.StateFile
	}
	return filepath.Join(r.DataDir, r.StateFile)
}

// Bus configures the hardware board bus.
type Bus struct {
	Kind        string          `yaml:"kind"`
	Boards      []bus.BoardSpec `yaml:"boards"`
	Backoff     retry.Config    `yaml:"backoff"`
	OpenTimeout time.Duration   `yaml:"open_timeout"`
}

// Device declares one device.
type Device struct {
	Name   string         `yaml:"name"`
	Class  string         `yaml:"class"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Connection requests links from one source to one or more targets.
type Connection struct {
	From string     `yaml:"from"`
	To   StringList `yaml:"to"`
}

// StringList accepts a YAML sequence of strings or a single scalar.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses a configuration document, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = version.Current
	}
	if c.Runtime.MaxRounds == 0 {
		c.Runtime.MaxRounds = DefaultMaxRounds
	}
	if c.Runtime.ShutdownTimeout == 0 {
		c.Runtime.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Runtime.StateFile == "" {
		c.Runtime.StateFile = DefaultStateFile
	}
	if c.Bus.Kind == "" {
		c.Bus.Kind = BusNone
		if len(c.Bus.Boards) > 0 {
			c.Bus.Kind = BusSimulated
		}
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
