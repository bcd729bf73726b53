package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort     string        `toml:"server_port"`
	LogLevel       string        `toml:"log_level"`
	BaseURL        string        `toml:"base_url"`
	EngineID       string        `toml:"engine_id"`
	APIKeySource   string        `toml:"api_key_source"`
	CredentialName string        `toml:"credential_name"`
	SSMParameter   string        `toml:"ssm_parameter"`
	AWSRegion      string        `toml:"aws_region"`
	DebugDumpDir   string        `toml:"debug_dump_dir"`
	CropAnchor     string        `toml:"crop_anchor"`
	ImportSize     int           `toml:"import_size"`
	ExportDir      string        `toml:"export_dir"`
	ExportBucket   string        `toml:"export_bucket"`
	ExportPrefix   string        `toml:"export_prefix"`
	Defaults       *FileDefaults `toml:"defaults"`
	Views          []ViewConfig  `toml:"views"`
}

// FileDefaults overrides the generation defaults. Unset fields keep the
// engine defaults.
type FileDefaults struct {
	Steps              *int     `toml:"steps"`
	Width              *int     `toml:"width"`
	Height             *int     `toml:"height"`
	CfgScale           *int     `toml:"cfg_scale"`
	PromptWeight       *float64 `toml:"prompt_weight"`
	ImageStrength      *float64 `toml:"image_strength"`
	ClipGuidancePreset *string  `toml:"clip_guidance_preset"`
	Sampler            *string  `toml:"sampler"`
	StylePreset        *string  `toml:"style_preset"`
}

// ViewConfig declares a viewport. Capture reads the image at CapturePath.
type ViewConfig struct {
	Name        string `toml:"name"`
	CapturePath string `toml:"capture_path"`
}

// ConfigPath returns the path to the config file (~/.scenesculpt/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	return loadFileFrom(ConfigPath())
}

func loadFileFrom(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := EnsureDataDir(); err != nil {
		return err
	}

	defaultConfig := `# SceneSculpt Configuration
# server_port = ":8080"
# log_level = "info"

# Generation API
# base_url = "https://api.stability.ai/v1"
# engine_id = "stable-diffusion-xl-beta-v2-2-2"

# Where the API key comes from: "store" (encrypted local store, managed via
# /api/admin/credentials), "env" (STABILITY_API_KEY) or "ssm" (AWS Parameter Store)
# api_key_source = "store"
# credential_name = "studio"        # optional; default credential otherwise
# ssm_parameter = "/scenesculpt/stability-api-key"
# aws_region = "us-east-1"

# Write each raw API response here (debugging only)
# debug_dump_dir = ""

# Imported images are scaled to cover import_size x import_size, then cropped.
# crop_anchor = "top-left"          # or "center"
# import_size = 512

# Export target: a local directory, or an S3 bucket when export_bucket is set
# export_dir = ""
# export_bucket = ""
# export_prefix = "scenesculpt/"

# [defaults]
# steps = 50
# cfg_scale = 7
# prompt_weight = 1.0
# image_strength = 0.35
# clip_guidance_preset = "NONE"
# sampler = ""
# style_preset = "photographic"

# [[views]]
# name = "Perspective"
# capture_path = "/path/to/perspective.png"
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
