package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// Generation API defaults.
const (
	DefaultBaseURL    = "https://api.stability.ai/v1"
	DefaultEngineID   = "stable-diffusion-xl-beta-v2-2-2"
	DefaultImportSize = 512
)

// API key sources.
const (
	KeySourceStore = "store"
	KeySourceEnv   = "env"
	KeySourceSSM   = "ssm"
)

// Crop anchors for imported images.
const (
	AnchorTopLeft = "top-left"
	AnchorCenter  = "center"
)

// Config holds application configuration loaded from environment and file.
// Priority: env vars (including <DataDir>/.env) > config.toml > defaults.
// A Config is built once at startup and never mutated.
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string
	LogLevel   string

	BaseURL  string
	EngineID string

	APIKeySource   string
	CredentialName string
	SSMParameter   string
	AWSRegion      string

	// DebugDumpDir, when set, receives a copy of every raw API response.
	DebugDumpDir string

	CropAnchor string
	ImportSize int

	ExportDir    string
	ExportBucket string
	ExportPrefix string

	// Defaults seed every generation request; callers override per field.
	Defaults types.GenerationParameters

	Views []ViewConfig
}

// Load reads <DataDir>/.env, the TOML file and the environment.
func Load() (*Config, error) {
	// Variables already set in the environment win over .env.
	if err := godotenv.Load(EnvPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", EnvPath(), err)
	}

	fileConfig, err := LoadFile()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ConfigPath(), err)
	}

	return FromFile(fileConfig)
}

// FromFile resolves a Config from a parsed file and the environment.
func FromFile(fc *FileConfig) (*Config, error) {
	importSize, err := getEnvIntOrFile("IMPORT_SIZE", fc.ImportSize, DefaultImportSize)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:     getEnvOrFile("SERVER_PORT", fc.ServerPort, ":8080"),
		LogLevel:       strings.ToLower(getEnvOrFile("LOG_LEVEL", fc.LogLevel, "info")),
		BaseURL:        strings.TrimRight(getEnvOrFile("STABILITY_BASE_URL", fc.BaseURL, DefaultBaseURL), "/"),
		EngineID:       getEnvOrFile("STABILITY_ENGINE_ID", fc.EngineID, DefaultEngineID),
		APIKeySource:   strings.ToLower(getEnvOrFile("API_KEY_SOURCE", fc.APIKeySource, KeySourceStore)),
		CredentialName: getEnvOrFile("CREDENTIAL_NAME", fc.CredentialName, ""),
		SSMParameter:   getEnvOrFile("SSM_PARAMETER", fc.SSMParameter, ""),
		AWSRegion:      getEnvOrFile("AWS_REGION", fc.AWSRegion, ""),
		DebugDumpDir:   getEnvOrFile("DEBUG_DUMP_DIR", fc.DebugDumpDir, ""),
		CropAnchor:     strings.ToLower(getEnvOrFile("CROP_ANCHOR", fc.CropAnchor, AnchorTopLeft)),
		ImportSize:     importSize,
		ExportDir:      getEnvOrFile("EXPORT_DIR", fc.ExportDir, DefaultExportDir()),
		ExportBucket:   getEnvOrFile("EXPORT_BUCKET", fc.ExportBucket, ""),
		ExportPrefix:   getEnvOrFile("EXPORT_PREFIX", fc.ExportPrefix, ""),
		Defaults:       fc.Defaults.apply(types.DefaultParameters()),
		Views:          fc.Views,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.APIKeySource {
	case KeySourceStore, KeySourceEnv:
	case KeySourceSSM:
		if c.SSMParameter == "" {
			return errors.New("api_key_source is ssm but ssm_parameter is empty")
		}
	default:
		return fmt.Errorf("unknown api_key_source %q", c.APIKeySource)
	}

	if c.CropAnchor != AnchorTopLeft && c.CropAnchor != AnchorCenter {
		return fmt.Errorf("unknown crop_anchor %q", c.CropAnchor)
	}
	if c.ImportSize <= 0 {
		return fmt.Errorf("import_size must be positive, got %d", c.ImportSize)
	}

	// The prompt is supplied per request.
	if err := c.Defaults.WithPrompt("defaults").Validate(); err != nil {
		return fmt.Errorf("invalid [defaults]: %w", err)
	}

	seen := make(map[string]bool, len(c.Views))
	for _, v := range c.Views {
		if v.Name == "" {
			return errors.New("view with empty name")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate view %q", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

func (d *FileDefaults) apply(p types.GenerationParameters) types.GenerationParameters {
	if d == nil {
		return p
	}
	return types.ParameterOverrides{
		Steps:              d.Steps,
		Width:              d.Width,
		Height:             d.Height,
		CfgScale:           d.CfgScale,
		PromptWeight:       d.PromptWeight,
		ImageStrength:      d.ImageStrength,
		ClipGuidancePreset: d.ClipGuidancePreset,
		Sampler:            d.Sampler,
		StylePreset:        d.StylePreset,
	}.Apply(p)
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

func getEnvIntOrFile(key string, fileValue, defaultValue int) (int, error) {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		return n, nil
	}
	if fileValue != 0 {
		return fileValue, nil
	}
	return defaultValue, nil
}
