// Package config loads tsvisio settings from TOML or YAML files.
//
// The file format is picked by extension: .toml uses BurntSushi/toml, .yaml
// and .yml use gopkg.in/yaml.v3. Missing keys keep their [Default] values.
//
//	cfg, err := config.Load("tsvisio.toml")
//	if err != nil {
//	    return err
//	}
//
// A minimal TOML file:
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[layout]
//	axis = "horizontal"
//	spacing = 0.25
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "TSVISIO_CONFIG"

// Store backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the top-level configuration.
type Config struct {
	Log       Log       `toml:"log" yaml:"log" json:"log"`
	Store     Store     `toml:"store" yaml:"store" json:"store"`
	Layout    Layout    `toml:"layout" yaml:"layout" json:"layout"`
	Connector Connector `toml:"connector" yaml:"connector" json:"connector"`
	Server    Server    `toml:"server" yaml:"server" json:"server"`
}

// Log configures the charmbracelet logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level" json:"level"`
}

// Store selects and configures the page persistence backend.
type Store struct {
	// Backend is memory, file, redis or mongo.
	Backend string `toml:"backend" yaml:"backend" json:"backend"`

	// Dir is the page directory of the file backend.
	// Empty means ~/.config/tsvisio/pages.
	Dir string `toml:"dir" yaml:"dir" json:"dir,omitempty"`

	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password" json:"-"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db" json:"redis_db,omitempty"`

	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri" json:"-"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database" json:"mongo_database,omitempty"`

	// KeyPrefix namespaces redis keys and the mongo collection.
	KeyPrefix string `toml:"key_prefix" yaml:"key_prefix" json:"key_prefix,omitempty"`
}

// Layout holds container defaults and the Graphviz settings of autolayout.
type Layout struct {
	Axis    string  `toml:"axis" yaml:"axis" json:"axis"`
	Spacing float64 `toml:"spacing" yaml:"spacing" json:"spacing"`
	Padding float64 `toml:"padding" yaml:"padding" json:"padding"`

	Engine  string  `toml:"engine" yaml:"engine" json:"engine"`
	RankDir string  `toml:"rankdir" yaml:"rankdir" json:"rankdir"`
	NodeSep float64 `toml:"nodesep" yaml:"nodesep" json:"nodesep"`
	RankSep float64 `toml:"ranksep" yaml:"ranksep" json:"ranksep"`
}

// Connector configures routing.
type Connector struct {
	// Policy is strict or lenient.
	Policy string `toml:"policy" yaml:"policy" json:"policy"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:   Log{Level: "info"},
		Store: Store{Backend: BackendFile, RedisAddr: "localhost:6379", MongoDatabase: "tsvisio", KeyPrefix: "tsvisio"},
		Layout: Layout{
			Axis:    shape.AxisVertical.String(),
			Spacing: 0.125,
			Padding: 0.25,
			Engine:  "dot",
			RankDir: "TB",
			NodeSep: 0.5,
			RankSep: 0.5,
		},
		Connector: Connector{Policy: connector.PolicyStrict.String()},
		Server:    Server{Addr: ":8080"},
	}
}

// Load reads the file at path over the defaults and validates the result.
// An empty path falls back to $TSVISIO_CONFIG, then to the defaults alone.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, filepath.Ext(path), &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses data in the format named by ext (".toml", ".yaml", ".yml") into cfg.
func Decode(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "parse TOML")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "parse YAML")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	return nil
}

// Validate checks every enumerated and numeric setting.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errs.New(errs.ErrCodeInvalidInput, "log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidInput, "store.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return errs.New(errs.ErrCodeInvalidInput, "store.mongo_uri and store.mongo_database are required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}

	if _, err := c.Layout.StackAxis(); err != nil {
		return err
	}
	state := shape.ContainerState{Spacing: c.Layout.Spacing, Padding: c.Layout.Padding}
	if err := state.Validate(); err != nil {
		return err
	}
	if _, err := connector.ParsePolicy(c.Connector.Policy); err != nil {
		return err
	}
	return nil
}

// StackAxis returns the parsed default stack axis.
func (l Layout) StackAxis() (shape.Axis, error) {
	return shape.ParseAxis(l.Axis)
}

// RouterPolicy returns the parsed connector policy.
func (c Connector) RouterPolicy() (connector.Policy, error) {
	return connector.ParsePolicy(c.Policy)
}
