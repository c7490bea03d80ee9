package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	MeshgenConfigPathEnvVar = "MESHGEN_CONFIG_PATH" // Environment variable for config path
)

// Profile selects which variant of the catalog is generated
type Profile string

const (
	// ProfileTracing is the original layout with the tracing-system namespace
	ProfileTracing Profile = "tracing"
	// ProfileCentral uses a shared observability namespace and ships a Grafana datasource
	ProfileCentral Profile = "central"
)

const (
	DefaultRepoURL  = "https://github.com/alevsk/ossm-tempo-gitops.git"
	DefaultFetchURL = "https://raw.githubusercontent.com/istio/istio/release-1.24/samples/bookinfo/platform/kube/bookinfo.yaml"
)

// DefaultNamespace returns the observability namespace a profile uses when none is configured
func DefaultNamespace(p Profile) string {
	if p == ProfileTracing {
		return "tracing-system"
	}
	return "central-observability"
}

// ErrInvalidConfig is returned when a loaded configuration cannot drive a generation
var ErrInvalidConfig = fmt.Errorf("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	// Debug enables verbose logging and additional debug information
	Debug bool `mapstructure:"debug"`
	// RepoURL is the Git remote the bootstrap applications sync from
	RepoURL string `mapstructure:"repo_url"`
	// ObservabilityNamespace hosts the tracing backend and its object store
	ObservabilityNamespace string `mapstructure:"observability_namespace"`
	// Profile selects the catalog variant
	Profile Profile `mapstructure:"profile"`
	// OutputDir is the root of the generated tree
	OutputDir string `mapstructure:"output_dir"`
	// ValidateTree runs structural checks on the rendered tree before writing
	ValidateTree bool `mapstructure:"validate"`

	// Fetch configuration for the sample application manifest
	Fetch struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
		Strict  bool          `mapstructure:"strict"`
		Retries int           `mapstructure:"retries"`
	} `mapstructure:"fetch"`

	// Server configuration for the preview API
	Server struct {
		Host    string        `mapstructure:"host"`
		Port    int           `mapstructure:"port"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"server"`
}

// Default returns a configuration populated with the built-in defaults
func Default() *Config {
	cfg, _ := load(viper.New())
	cfg.ApplyProfileDefaults()
	return cfg
}

// Load initializes and returns the configuration from all sources:
// 1. Command-line flags (highest priority, applied by the caller)
// 2. Environment variables (prefixed with MESHGEN_)
// 3. Configuration file (lowest priority)
func Load(configPath string) (*Config, error) {
	// Check for environment variable config path if not explicitly provided
	if configPath == "" {
		if envPath := os.Getenv(MeshgenConfigPathEnvVar); envPath != "" {
			if _, err := os.Stat(envPath); os.IsNotExist(err) {
				return nil, fmt.Errorf("config file specified in %s not found: %s", MeshgenConfigPathEnvVar, envPath)
			}
			configPath = envPath
		}
	} else {
		// Verify explicitly provided config file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	}
	v := viper.New()

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config.yml in the current directory
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Read environment variables
	v.SetEnvPrefix("MESHGEN")
	v.AutomaticEnv()
	// Replace dots with underscores in env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		} else if configPath != "" {
			// Only error if config file was explicitly specified
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
		// If no config file was specified, we'll use defaults
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// ApplyProfileDefaults fills the values whose default depends on the profile.
// It must run after flag overrides so that --profile picks the right namespace.
func (c *Config) ApplyProfileDefaults() {
	if c.ObservabilityNamespace == "" {
		c.ObservabilityNamespace = DefaultNamespace(c.Profile)
	}
}

// Validate reports whether the configuration can drive a generation.
// The repository URL is used verbatim and only checked for presence.
func (c *Config) Validate() error {
	if c.RepoURL == "" {
		return fmt.Errorf("%w: repository URL cannot be empty", ErrInvalidConfig)
	}
	switch c.Profile {
	case ProfileTracing, ProfileCentral:
	default:
		return fmt.Errorf("%w: unknown profile %q (expected %q or %q)", ErrInvalidConfig, c.Profile, ProfileTracing, ProfileCentral)
	}
	if errs := validation.IsDNS1123Label(c.ObservabilityNamespace); len(errs) > 0 {
		return fmt.Errorf("%w: observability namespace %q: %s", ErrInvalidConfig, c.ObservabilityNamespace, strings.Join(errs, "; "))
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive, got %s", ErrInvalidConfig, c.Fetch.Timeout)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("%w: fetch retries cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("repo_url", DefaultRepoURL)
	v.SetDefault("observability_namespace", "")
	v.SetDefault("profile", string(ProfileCentral))
	v.SetDefault("output_dir", ".")
	v.SetDefault("validate", false)

	// Fetch defaults
	v.SetDefault("fetch.url", DefaultFetchURL)
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.strict", false)
	v.SetDefault("fetch.retries", 0)

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "30s")
}
