package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Generation Generation `mapstructure:"generation"`
	Server     Server     `mapstructure:"server"`
	Store      Store      `mapstructure:"store"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`
	ConfigFile string `mapstructure:"-"`
}

// AI holds generation provider configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int32         `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`

	// KeySource names where APIKey came from; never the key itself.
	KeySource string `mapstructure:"-"`
}

// Generation holds the orchestrator policy knobs
type Generation struct {
	PreferredModelPattern    string `mapstructure:"preferred_model_pattern"`
	RetryOnValidationFailure bool   `mapstructure:"retry_on_validation_failure"`
	MaxConcepts              int    `mapstructure:"max_concepts"`
	ParallelSections         bool   `mapstructure:"parallel_sections"`
	UseResponseSchema        bool   `mapstructure:"use_response_schema"`
	MinCredentialLength      int    `mapstructure:"min_credential_length"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StrictMethods   bool          `mapstructure:"strict_methods"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin configuration
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Store holds day-record store configuration
type Store struct {
	Driver string `mapstructure:"driver"` // sqlite3 or postgres
	DSN    string `mapstructure:"dsn"`
}

// CredentialEnvNames lists the accepted provider credential variables in priority order.
var CredentialEnvNames = []string{
	"GEMINI_API_KEY",
	"GOOGLE_GEMINI_API_KEY",
	"GOOGLE_AI_API_KEY",
	"GOOGLE_API_KEY",
}

// ErrCredentialNotFound is returned when none of the candidate names holds a value.
var ErrCredentialNotFound = errors.New("provider credential not found")

// Credential is a resolved secret and the variable it was read from.
type Credential struct {
	Value  string
	Source string
}

// ResolveCredential returns the first non-empty value among names in env.
func ResolveCredential(names []string, env map[string]string) (Credential, error) {
	for _, name := range names {
		if value := strings.TrimSpace(env[name]); value != "" {
			return Credential{Value: value, Source: name}, nil
		}
	}
	return Credential{}, ErrCredentialNotFound
}

// EnvMap converts os.Environ style pairs into a map.
func EnvMap(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Load loads the configuration from .env, an optional YAML file and the
// process environment. A missing provider credential is not an error.
func Load(configFile string) (*Config, error) {
	return LoadWithEnv(configFile, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil env reads the
// process environment after loading .env.
func LoadWithEnv(configFile string, env map[string]string) (*Config, error) {
	if env == nil {
		// Load .env file if it exists
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(".env"); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
			}
		}
		env = EnvMap(os.Environ())
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".dailybrief")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v, env)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.App.ConfigFile = v.ConfigFileUsed()

	// Environment wins over the config file for the credential.
	if cred, err := ResolveCredential(CredentialEnvNames, env); err == nil {
		cfg.AI.Gemini.APIKey = cred.Value
		cfg.AI.Gemini.KeySource = cred.Source
	} else if cfg.AI.Gemini.APIKey != "" {
		cfg.AI.Gemini.KeySource = "ai.gemini.api_key"
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("ai.gemini.timeout", "10s")
	v.SetDefault("ai.gemini.max_tokens", 4096)
	v.SetDefault("ai.gemini.temperature", 0.7)

	v.SetDefault("generation.preferred_model_pattern", "flash")
	v.SetDefault("generation.retry_on_validation_failure", true)
	v.SetDefault("generation.max_concepts", 3)
	v.SetDefault("generation.parallel_sections", false)
	v.SetDefault("generation.use_response_schema", true)
	v.SetDefault("generation.min_credential_length", 20)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.strict_methods", false)
	v.SetDefault("server.cors.enabled", true)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})

	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.dsn", "")
}

// bindEnvironmentVariables maps the first found alias onto each viper key.
func bindEnvironmentVariables(v *viper.Viper, env map[string]string) {
	bindEnvKeys(v, env, "app.log_level", []string{"LOG_LEVEL", "DAILYBRIEF_LOG_LEVEL"})
	bindEnvKeys(v, env, "app.log_format", []string{"LOG_FORMAT", "DAILYBRIEF_LOG_FORMAT"})
	bindEnvKeys(v, env, "app.debug", []string{"DEBUG", "DAILYBRIEF_DEBUG"})
	bindEnvKeys(v, env, "ai.gemini.base_url", []string{"GEMINI_BASE_URL"})
	bindEnvKeys(v, env, "generation.preferred_model_pattern", []string{"GEMINI_MODEL_PATTERN", "PREFERRED_MODEL_PATTERN"})
	bindEnvKeys(v, env, "server.port", []string{"PORT", "DAILYBRIEF_PORT"})
	bindEnvKeys(v, env, "server.cors.allowed_origins", []string{"CORS_ALLOWED_ORIGINS"})
	bindEnvKeys(v, env, "store.driver", []string{"STORE_DRIVER"})
	bindEnvKeys(v, env, "store.dsn", []string{"STORE_DSN", "DATABASE_URL"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, env map[string]string, key string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := env[envKey]; value != "" {
			if key == "server.cors.allowed_origins" {
				v.Set(key, splitList(value))
				return
			}
			v.Set(key, value)
			return
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validateConfig rejects values the server cannot run with
func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port out of range: %d", cfg.Server.Port))
	}
	if cfg.Generation.MaxConcepts < 1 {
		errs = append(errs, "generation.max_concepts must be at least 1")
	}
	if cfg.AI.Gemini.Timeout < 0 {
		errs = append(errs, "ai.gemini.timeout must not be negative")
	}
	switch cfg.Store.Driver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("unknown store driver: %s. Supported: sqlite3, postgres", cfg.Store.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// HasCredential reports whether a provider key is configured at all.
func (c *Config) HasCredential() bool {
	return c.AI.Gemini.APIKey != ""
}
