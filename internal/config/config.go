// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads the game configuration from YAML, the command line
// and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/logging"
	"github.com/holomush/pennmush/internal/xdg"
)

// SchemaVersion is the configuration format this build writes.
const SchemaVersion = "1.0.0"

// supportedVersions is the range of configuration formats this build reads.
const supportedVersions = "^1.0.0"

// Config is the whole game configuration.
type Config struct {
	SchemaVersion string          `koanf:"schema_version" json:"schema_version" jsonschema:"required,pattern=^[0-9]+\\.[0-9]+\\.[0-9]+$"`
	Log           logging.Options `koanf:"log" json:"log,omitempty"`
	Database      Database        `koanf:"database" json:"database,omitempty"`
	// MetricsAddr, when set, serves /metrics and health probes.
	MetricsAddr string `koanf:"metrics_addr" json:"metrics_addr,omitempty"`
	// World is the YAML world fixture to load.
	World    string                  `koanf:"world" json:"world,omitempty"`
	Game     Game                    `koanf:"game" json:"game,omitempty"`
	Commands []command.Customization `koanf:"commands" json:"commands,omitempty"`
}

// Database configures PostgreSQL persistence. An empty URL runs the game
// purely in memory.
type Database struct {
	URL             string `koanf:"url" json:"url,omitempty"`
	ConnectAttempts uint64 `koanf:"connect_attempts" json:"connect_attempts,omitempty" jsonschema:"minimum=0"`
}

// Game holds the dispatcher's tunables.
type Game struct {
	HookDepth       int              `koanf:"hook_depth" json:"hook_depth,omitempty" jsonschema:"minimum=0"`
	QueueLimit      int              `koanf:"queue_limit" json:"queue_limit,omitempty" jsonschema:"minimum=0"`
	LogCommands     bool             `koanf:"log_commands" json:"log_commands,omitempty"`
	ReservedAliases []string         `koanf:"reserved_aliases" json:"reserved_aliases,omitempty"`
	PatternCache    int              `koanf:"pattern_cache" json:"pattern_cache,omitempty" jsonschema:"minimum=0"`
	RateLimit       RateLimit        `koanf:"rate_limit" json:"rate_limit,omitempty"`
	Attributes      attribute.Limits `koanf:"attributes" json:"attributes,omitempty"`
	Channels        []Channel        `koanf:"channels" json:"channels,omitempty"`
}

// RateLimit configures the socket input limiter. A zero Burst disables it.
type RateLimit struct {
	Burst     int     `koanf:"burst" json:"burst,omitempty" jsonschema:"minimum=0"`
	PerSecond float64 `koanf:"per_second" json:"per_second,omitempty" jsonschema:"minimum=0"`
}

// Channel is a chat channel and its members.
type Channel struct {
	Name    string      `koanf:"name" json:"name" jsonschema:"required,minLength=1"`
	Members []dbref.Ref `koanf:"members" json:"members,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		Log:           logging.Options{Format: "json", Level: "info"},
		World:         xdg.WorldFile(),
		Game: Game{
			HookDepth:       command.DefaultHookDepth,
			QueueLimit:      command.DefaultQueueLimit,
			ReservedAliases: []string{"N", "S", "E", "W", "U", "D"},
			Attributes:      attribute.DefaultLimits(),
		},
	}
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"database-url": "database.url",
	"metrics-addr": "metrics_addr",
	"world":        "world",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"log-file":     "log.file",
}

// Load reads the configuration. Values come from Default, then the file
// at path (or the XDG config file, if it exists, when path is empty),
// then any flags in flags that name configuration keys. DATABASE_URL
// fills in a missing database URL.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		if _, err := os.Stat(xdg.ConfigFile()); err == nil {
			path = xdg.ConfigFile()
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			code := "CONFIG_READ_FAILED"
			if errors.Is(err, fs.ErrNotExist) {
				code = "CONFIG_NOT_FOUND"
			}
			return nil, oops.Code(code).With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// Validate checks the values the schema cannot.
func (c *Config) Validate() error {
	v, err := semver.NewVersion(c.SchemaVersion)
	if err != nil {
		return oops.Code("CONFIG_INVALID").
			With("schema_version", c.SchemaVersion).
			Errorf("schema_version %q is not a version: %v", c.SchemaVersion, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if !constraint.Check(v) {
		return oops.Code("CONFIG_UNSUPPORTED_VERSION").
			With("schema_version", c.SchemaVersion).
			With("supported", supportedVersions).
			Errorf("configuration version %s is not supported", v)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code("CONFIG_INVALID").Errorf("log.level: %v", err)
	}
	if f := c.Log.Format; f != "" && f != "json" && f != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be json or text, got %q", f)
	}
	if c.Game.HookDepth < 0 || c.Game.QueueLimit < 0 || c.Game.PatternCache < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("game limits must not be negative")
	}
	if c.Game.RateLimit.Burst < 0 || c.Game.RateLimit.PerSecond < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("game.rate_limit must not be negative")
	}
	for i, ch := range c.Game.Channels {
		if strings.TrimSpace(ch.Name) == "" {
			return oops.Code("CONFIG_INVALID").With("index", i).Errorf("game.channels[%d] has no name", i)
		}
	}
	for i, cust := range c.Commands {
		if strings.TrimSpace(cust.Command) == "" {
			return oops.Code("CONFIG_INVALID").With("index", i).Errorf("commands[%d] names no command", i)
		}
		switch cust.Kind {
		case command.CustomAdd, command.CustomAlias, command.CustomClone, command.CustomDelete,
			command.CustomRestrict, command.CustomEnable, command.CustomDisable:
		case command.CustomHook:
			if _, ok := command.ParseHookKind(cust.Hook); !ok {
				return oops.Code("CONFIG_INVALID").With("index", i).Errorf("commands[%d] has unknown hook %q", i, cust.Hook)
			}
		default:
			return oops.Code("CONFIG_INVALID").With("index", i).Errorf("commands[%d] has unknown kind %q", i, cust.Kind)
		}
	}
	return nil
}
