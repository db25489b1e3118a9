// Package config loads CLI configuration from conjuga.yaml, CONJUGA_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// EnvPrefix is the prefix of every environment variable.
const EnvPrefix = "CONJUGA"

// LogConfig selects the logger.
type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// ResilienceConfig tunes the external source wrappers.
type ResilienceConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// Config is the resolved CLI configuration.
type Config struct {
	DB   string `mapstructure:"db"`
	User string `mapstructure:"user"`

	Level    string `mapstructure:"level"`
	Region   string `mapstructure:"region"`
	VerbType string `mapstructure:"verb_type"`
	Mode     string `mapstructure:"mode"`
	// Target is "mood" or "mood|tense" for specific practice, and the
	// optional filter for review practice.
	Target string `mapstructure:"target"`
	Family string `mapstructure:"family"`
	Double bool   `mapstructure:"double"`

	// Packs lists extra pack files or directories loaded before the
	// embedded sample pack.
	Packs []string `mapstructure:"packs"`
	// Seed fixes the random source; zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	Log        LogConfig        `mapstructure:"log"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
}

// SetDefaults registers every key with its default so environment
// variables are picked up for all of them.
func SetDefaults(v *viper.Viper) {
	d := settings.Default()
	v.SetDefault("db", "")
	v.SetDefault("user", "local")
	v.SetDefault("level", string(d.Level))
	v.SetDefault("region", string(d.Region))
	v.SetDefault("verb_type", string(d.VerbType))
	v.SetDefault("mode", string(settings.ModeMixed))
	v.SetDefault("target", "")
	v.SetDefault("family", "")
	v.SetDefault("double", false)
	v.SetDefault("packs", []string{})
	v.SetDefault("seed", 0)
	v.SetDefault("log.mode", "prod")
	v.SetDefault("log.level", "warn")
	v.SetDefault("resilience.enabled", true)
	v.SetDefault("resilience.call_timeout", 750*time.Millisecond)
	v.SetDefault("resilience.max_attempts", 2)
}

// Load resolves the configuration. An explicit file must exist; otherwise
// conjuga.yaml is looked up in the working directory and the user config
// directory, and a missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("conjuga")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "conjuga"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Settings builds and validates the practice settings.
func (c *Config) Settings() (settings.Settings, error) {
	s := settings.Settings{
		Level:    settings.Level(strings.ToUpper(strings.TrimSpace(c.Level))),
		Region:   settings.Region(c.Region),
		VerbType: settings.VerbType(c.VerbType),
		Double:   c.Double,
	}

	var target verb.Key
	if c.Target != "" {
		t, err := parseTarget(c.Target)
		if err != nil {
			return s, err
		}
		target = t
	}

	switch settings.Mode(c.Mode) {
	case settings.ModeMixed, "":
		s.Practice = settings.Mixed{Family: c.Family}
	case settings.ModeSpecific:
		s.Practice = settings.Specific{Target: target}
	case settings.ModeReview:
		s.Practice = settings.Review{Mood: target.Mood, Tense: target.Tense}
	default:
		return s, fmt.Errorf("%w: unknown mode %q", settings.ErrInvalidConfiguration, c.Mode)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s.Normalized(), nil
}

// parseTarget accepts "mood" or "mood|tense".
func parseTarget(s string) (verb.Key, error) {
	if !strings.Contains(s, "|") {
		return verb.Key{Mood: verb.Mood(strings.TrimSpace(s))}, nil
	}
	return verb.ParseKey(s)
}
