package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"domkey/internal/registry"
)

// FileName is the config file looked up when no path is given.
const FileName = "domkey.toml"

// EnvPrefix prefixes environment overrides, e.g. DOMKEY_VALIDATION_MODE.
const EnvPrefix = "DOMKEY"

// Config represents the complete domkey configuration
type Config struct {
	Validation ValidationConfig `toml:"validation" mapstructure:"validation"`
	Source     SourceConfig     `toml:"source" mapstructure:"source"`
	Export     ExportConfig     `toml:"export" mapstructure:"export"`
	Logging    LoggingConfig    `toml:"logging" mapstructure:"logging"`
}

// ValidationConfig controls traversal contract checking
type ValidationConfig struct {
	Mode string `toml:"mode" mapstructure:"mode"`
}

// SourceConfig controls how input files become element trees
type SourceConfig struct {
	IDAttribute string `toml:"idAttribute" mapstructure:"idAttribute"`
	MaxDepth    int    `toml:"maxDepth" mapstructure:"maxDepth"`
	SkipText    bool   `toml:"skipText" mapstructure:"skipText"`
}

// ExportConfig controls snapshot output
type ExportConfig struct {
	Format   string `toml:"format" mapstructure:"format"`
	Compress bool   `toml:"compress" mapstructure:"compress"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `toml:"format" mapstructure:"format"`
	Level  string `toml:"level" mapstructure:"level"`
	// File additionally appends human-format logs to this path when set.
	File   string `toml:"file" mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			Mode: string(registry.ModeStrict),
		},
		Source: SourceConfig{
			IDAttribute: "id",
			MaxDepth:    0,
			SkipText:    true,
		},
		Export: ExportConfig{
			Format: "human",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("validation.mode", d.Validation.Mode)
	v.SetDefault("source.idAttribute", d.Source.IDAttribute)
	v.SetDefault("source.maxDepth", d.Source.MaxDepth)
	v.SetDefault("source.skipText", d.Source.SkipText)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.compress", d.Export.Compress)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// LoadConfig loads configuration from path, or when path is empty from
// domkey.toml in the working directory or $HOME/.config/domkey. A missing
// default file yields the defaults. DOMKEY_* environment variables override
// both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "domkey"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration as TOML to path
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := registry.ParseMode(c.Validation.Mode); err != nil {
		return &ConfigError{Field: "validation.mode", Message: err.Error()}
	}
	if c.Source.MaxDepth < 0 {
		return &ConfigError{Field: "source.maxDepth", Message: "must not be negative"}
	}
	switch c.Export.Format {
	case "human", "json", "yaml", "toml":
	default:
		return &ConfigError{Field: "export.format", Message: "unsupported format " + c.Export.Format}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "unsupported format " + c.Logging.Format}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
