package internal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "ytscribe"

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Transcription backends
const (
	BackendReplicate = "replicate"
	BackendOpenAI    = "openai"
)

// FailurePolicy decides what a playlist run does when one video fails
type FailurePolicy string

const (
	// FailFast aborts the whole batch on the first failure and writes no CSV
	FailFast FailurePolicy = "fail-fast"
	// ContinueOnError records the failure, skips the video and exports the rest
	ContinueOnError FailurePolicy = "continue"
)

// ParseFailurePolicy maps a config or flag value to a FailurePolicy
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail-fast", "failfast":
		return FailFast, nil
	case "continue", "continue-on-error", "skip":
		return ContinueOnError, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (use fail-fast or continue)", s)
}

// SupportedModelSizes are the Whisper sizes accepted by the Replicate model
var SupportedModelSizes = []string{"tiny", "base", "small", "medium", "large", "large-v1", "large-v2", "large-v3"}

// Config holds application settings
type Config struct {
	// User configurable settings
	Backend              string
	Language             string
	ModelSize            string
	ReplicateAPIToken    string
	ReplicateModel       string
	ReplicateVersion     string
	ReplicateBaseURL     string
	OpenAIAPIKey         string
	PollInterval         time.Duration
	TranscriptionTimeout time.Duration
	OutputDir            string
	FailurePolicy        FailurePolicy
	Verbose              bool
	Quiet                bool
	MCPLogEnabled        bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string
}

// ReplicateConfig is the fixed configuration handed to the Replicate client
type ReplicateConfig struct {
	APIToken     string
	Model        string
	Version      string
	BaseURL      string
	Language     string
	ModelSize    string
	PollInterval time.Duration
	Timeout      time.Duration
}

// WhisperConfig is the fixed configuration handed to the OpenAI Whisper client
type WhisperConfig struct {
	APIKey   string
	Language string
	TempDir  string
	Timeout  time.Duration
}

// ReplicateConfig derives the Replicate client settings
func (c *Config) ReplicateConfig() ReplicateConfig {
	return ReplicateConfig{
		APIToken:     c.ReplicateAPIToken,
		Model:        c.ReplicateModel,
		Version:      c.ReplicateVersion,
		BaseURL:      c.ReplicateBaseURL,
		Language:     c.Language,
		ModelSize:    c.ModelSize,
		PollInterval: c.PollInterval,
		Timeout:      c.TranscriptionTimeout,
	}
}

// WhisperConfig derives the OpenAI Whisper client settings
func (c *Config) WhisperConfig() WhisperConfig {
	return WhisperConfig{
		APIKey:   c.OpenAIAPIKey,
		Language: c.Language,
		TempDir:  c.TempDir,
		Timeout:  c.TranscriptionTimeout,
	}
}

//go:embed config.toml
var defaultFS embed.FS

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	filePath := filepath.Join(configDir, "config.toml")
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile("config.toml")
	if err != nil {
		return fmt.Errorf("reading embedded default configuration: %w", err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default configuration: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created default configuration at %s\n", filePath)
	return nil
}

// InitConfig loads .env, the config file and the environment into a Config
func InitConfig(configFile string) *Config {
	// Same lookup as python-dotenv: a .env in the working directory, if any
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error reading .env file: %v\n", err)
	}

	configDir := filepath.Join(xdg.ConfigHome, appName)
	dataDir := filepath.Join(xdg.DataHome, appName)
	cacheDir := filepath.Join(xdg.CacheHome, appName)

	v := newViper(configDir)
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := configFromViper(v, configDir, dataDir, cacheDir)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// newViper sets defaults, config search paths and environment bindings
func newViper(configDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("backend", BackendReplicate)
	v.SetDefault("language", "en")
	v.SetDefault("model_size", "tiny")
	v.SetDefault("replicate_model", "openai/whisper")
	v.SetDefault("replicate_model_version", "")
	v.SetDefault("replicate_base_url", defaultReplicateBaseURL)
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("transcription_timeout", 10*time.Minute)
	v.SetDefault("output_dir", ".")
	v.SetDefault("failure_policy", string(FailFast))
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("mcp_log_enabled", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("YTSCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by the Replicate and OpenAI tooling
	_ = v.BindEnv("replicate_api_token", "YTSCRIBE_REPLICATE_API_TOKEN", "REPLICATE_API_TOKEN", "REPLICATE_API_KEY")
	_ = v.BindEnv("replicate_model_version", "YTSCRIBE_REPLICATE_MODEL_VERSION", "REPLICATE_MODEL_VERSION")
	_ = v.BindEnv("openai_api_key", "YTSCRIBE_OPENAI_API_KEY", "OPENAI_API_KEY")

	return v
}

// configFromViper creates the config struct from viper
func configFromViper(v *viper.Viper, configDir, dataDir, cacheDir string) *Config {
	policy, err := ParseFailurePolicy(v.GetString("failure_policy"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using %s\n", err, FailFast)
		policy = FailFast
	}

	return &Config{
		Backend:              strings.ToLower(v.GetString("backend")),
		Language:             v.GetString("language"),
		ModelSize:            v.GetString("model_size"),
		ReplicateAPIToken:    v.GetString("replicate_api_token"),
		ReplicateModel:       v.GetString("replicate_model"),
		ReplicateVersion:     v.GetString("replicate_model_version"),
		ReplicateBaseURL:     v.GetString("replicate_base_url"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		PollInterval:         v.GetDuration("poll_interval"),
		TranscriptionTimeout: v.GetDuration("transcription_timeout"),
		OutputDir:            v.GetString("output_dir"),
		FailurePolicy:        policy,
		Verbose:              v.GetBool("verbose"),
		Quiet:                v.GetBool("quiet"),
		MCPLogEnabled:        v.GetBool("mcp_log_enabled"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		TempDir:   filepath.Join(cacheDir, "temp_chunks"),
	}
}

// ValidateModelSize checks if the Whisper model size is supported
func ValidateModelSize(size string) error {
	if slices.Contains(SupportedModelSizes, size) {
		return nil
	}
	return fmt.Errorf("unsupported model size: %s (supported: %s)", size, strings.Join(SupportedModelSizes, ", "))
}

// ValidateAPIToken checks that the configured backend has credentials
func ValidateAPIToken(config *Config) error {
	switch config.Backend {
	case BackendReplicate:
		if config.ReplicateAPIToken == "" {
			return fmt.Errorf("%w: set replicate_api_token in config.toml or REPLICATE_API_TOKEN", ErrMissingToken)
		}
	case BackendOpenAI:
		if config.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: set openai_api_key in config.toml or OPENAI_API_KEY", ErrMissingToken)
		}
	default:
		return fmt.Errorf("unknown transcription backend %q (use %s or %s)", config.Backend, BackendReplicate, BackendOpenAI)
	}
	return nil
}
