// Package config loads cmsclean settings from a YAML file, CMSCLEAN_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/cmsclean/pkg/cleaner/cms"
	"github.com/jmylchreest/cmsclean/pkg/linkaudit"
)

const (
	// AppName names the XDG config directory.
	AppName = "cmsclean"
	// FileName is the config file name without extension.
	FileName = "cmsclean"
	// EnvPrefix prefixes environment overrides, e.g. CMSCLEAN_AUDIT_TIMEOUT.
	EnvPrefix = "CMSCLEAN"
)

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid configuration")

// Config is the complete cmsclean configuration.
type Config struct {
	Clean cms.Settings     `json:"clean" yaml:"clean" mapstructure:"clean"`
	Audit linkaudit.Config `json:"audit" yaml:"audit" mapstructure:"audit"`
	Log   LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// LogConfig controls the log destination. Verbosity comes from --debug and
// --quiet.
type LogConfig struct {
	JSON          bool          `json:"json" yaml:"json" mapstructure:"json"`
	File          string        `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
	FlushInterval time.Duration `json:"flush_interval" yaml:"flush_interval" mapstructure:"flush_interval" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Clean: *cms.DefaultSettings(),
		Audit: linkaudit.DefaultConfig(),
		Log:   LogConfig{FlushInterval: time.Second},
	}
}

// Dir is the per-user config directory, $XDG_CONFIG_HOME/cmsclean.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPath is where Write puts a new config file.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName+".yaml")
}

// Load reads configuration into v and decodes it. An explicit path must
// exist; otherwise cmsclean.yaml is looked up in the working directory and
// Dir, and a missing file leaves the defaults in place.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Used returns the config file Load read, or "" when none was found.
func Used(v *viper.Viper) string {
	return v.ConfigFileUsed()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("clean.markup_to_remove", []string{})
	v.SetDefault("clean.add_target_blank", d.Clean.AddTargetBlank)
	v.SetDefault("clean.add_rel_noopener", d.Clean.AddRelNoOpener)
	v.SetDefault("clean.quote_process", string(d.Clean.QuoteProcess))
	v.SetDefault("clean.query_clean_level", string(d.Clean.QueryCleanLevel))
	v.SetDefault("clean.create_link_from_text", d.Clean.CreateLinkFromText)
	v.SetDefault("clean.local_hosts", []string{})

	v.SetDefault("audit.timeout", d.Audit.Timeout)
	v.SetDefault("audit.stagger", d.Audit.Stagger)
	v.SetDefault("audit.concurrency", d.Audit.Concurrency)
	v.SetDefault("audit.max_redirects", d.Audit.MaxRedirects)
	v.SetDefault("audit.user_agent", d.Audit.UserAgent)

	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.flush_interval", d.Log.FlushInterval)
}

// Validate checks every section.
func Validate(cfg *Config) error {
	if err := cfg.Clean.Validate(); err != nil {
		return fmt.Errorf("%w: clean: %w", ErrInvalidSettings, err)
	}
	validate := validator.New()
	if err := validate.Struct(cfg.Audit); err != nil {
		return fmt.Errorf("%w: audit: %v", ErrInvalidSettings, err)
	}
	if err := validate.Struct(cfg.Log); err != nil {
		return fmt.Errorf("%w: log: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Write encodes cfg as YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// WriteFile writes cfg to path, creating its directory.
func WriteFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path) //#nosec G304 -- user-chosen config path
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := Write(f, cfg); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
