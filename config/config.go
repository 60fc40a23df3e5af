package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/database"
	rjshttp "github.com/rjavier441/rjs2/http"
	"github.com/rjavier441/rjs2/keybackend"
	"github.com/rjavier441/rjs2/pipeline"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "RJS2"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for rjs2.
type Config struct {
	Env      string             `mapstructure:"env" validate:"required"`
	Server   ServerConfig       `mapstructure:"server"`
	Content  ContentConfig      `mapstructure:"content"`
	Meta     MetaConfig         `mapstructure:"meta"`
	CSRF     CSRFConfig         `mapstructure:"csrf"`
	Manifest ManifestConfig     `mapstructure:"manifest"`
	CORS     rjshttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig          `mapstructure:"log"`
}

// IsProduction reports whether env names a production deployment.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host     string    `mapstructure:"host"`
	Port     int       `mapstructure:"port" validate:"required,min=1,max=65535"`
	Insecure bool      `mapstructure:"insecure"`
	TLS      TLSConfig `mapstructure:"tls"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// TLSConfig holds the certificate pair used unless the server is insecure.
type TLSConfig struct {
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	Root       string `mapstructure:"root" validate:"required"`
	ConfigFile string `mapstructure:"config_file" validate:"required"`
	// Templates is the error page directory. Empty uses the embedded pages.
	Templates string `mapstructure:"templates"`
}

// MetaConfig holds the defaults every rendered template sees.
type MetaConfig struct {
	ServerName  string `mapstructure:"server_name"`
	ServerEmail string `mapstructure:"server_email"`
}

// Pipeline converts the meta config into template defaults.
func (m MetaConfig) Pipeline() pipeline.Meta {
	return pipeline.Meta{Title: m.ServerName, Email: m.ServerEmail}
}

// CSRFConfig holds CSRF cookie and key configuration.
type CSRFConfig struct {
	CookieName     string   `mapstructure:"cookie_name" validate:"required"`
	MaxAge         int      `mapstructure:"max_age" validate:"min=0"`
	Secure         bool     `mapstructure:"secure"`
	Key            string   `mapstructure:"key"`
	KeyFile        string   `mapstructure:"key_file"`
	TrustedOrigins []string `mapstructure:"trusted_origins"`
}

// KeyConfig returns the key source for keybackend.LoadKey.
func (c CSRFConfig) KeyConfig() keybackend.KeyConfig {
	return keybackend.KeyConfig{Key: c.Key, File: c.KeyFile}
}

// ManifestConfig holds route manifest persistence configuration.
type ManifestConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	database.Config `mapstructure:",squash"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// SlogLevel converts the configured level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"host":         "server.host",
	"port":         "server.port",
	"insecure":     "server.insecure",
	"root":         "content.root",
	"templates":    "content.templates",
	"manifest":     "manifest.enabled",
	"manifest-dsn": "manifest.dsn",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// needs a default so AutomaticEnv sees it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 443)
	v.SetDefault("server.insecure", false)
	v.SetDefault("server.tls.cert", "")
	v.SetDefault("server.tls.key", "")

	v.SetDefault("content.root", "./public")
	v.SetDefault("content.config_file", rjs2.DefaultConfigFileName)
	v.SetDefault("content.templates", "")

	v.SetDefault("meta.server_name", "rjserver2")
	v.SetDefault("meta.server_email", "")

	v.SetDefault("csrf.cookie_name", pipeline.DefaultCookieName)
	v.SetDefault("csrf.max_age", 21600)
	v.SetDefault("csrf.secure", true)
	v.SetDefault("csrf.key", "")
	v.SetDefault("csrf.key_file", "")
	v.SetDefault("csrf.trusted_origins", []string{})

	v.SetDefault("manifest.enabled", false)
	v.SetDefault("manifest.type", "sqlite")
	v.SetDefault("manifest.dsn", "rjs2.db")
	v.SetDefault("manifest.tables.routes", "rjs2_routes")

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Manifest.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: manifest: %w", err)
	}

	return &cfg, nil
}
