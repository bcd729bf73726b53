package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// isolate points the data dir at a temp directory and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SCENESCULPT_HOME", dir)
	for _, k := range []string{
		"SERVER_PORT", "LOG_LEVEL", "STABILITY_BASE_URL", "STABILITY_ENGINE_ID",
		"API_KEY_SOURCE", "CREDENTIAL_NAME", "SSM_PARAMETER", "DEBUG_DUMP_DIR",
		"CROP_ANCHOR", "IMPORT_SIZE", "EXPORT_DIR", "EXPORT_BUCKET", "EXPORT_PREFIX",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.ServerPort)
	}
	if cfg.BaseURL != DefaultBaseURL || cfg.EngineID != DefaultEngineID {
		t.Errorf("unexpected endpoint %q / %q", cfg.BaseURL, cfg.EngineID)
	}
	if cfg.APIKeySource != KeySourceStore {
		t.Errorf("expected store key source, got %q", cfg.APIKeySource)
	}
	if cfg.CropAnchor != AnchorTopLeft || cfg.ImportSize != 512 {
		t.Errorf("unexpected import settings %q / %d", cfg.CropAnchor, cfg.ImportSize)
	}
	if cfg.Defaults != types.DefaultParameters() {
		t.Errorf("expected engine defaults, got %+v", cfg.Defaults)
	}
	if cfg.ExportDir != filepath.Join(dir, "exports") {
		t.Errorf("unexpected export dir %q", cfg.ExportDir)
	}
}

func TestLoadFileAndEnvPriority(t *testing.T) {
	dir := isolate(t)

	file := `
server_port = ":9000"
engine_id = "custom-engine"
base_url = "http://localhost:1234/v1/"
crop_anchor = "center"

[defaults]
steps = 30
style_preset = "anime"

[[views]]
name = "Top"
capture_path = "/tmp/top.png"

[[views]]
name = "Front"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(file), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVER_PORT", ":7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != ":7000" {
		t.Errorf("env should win over file, got %q", cfg.ServerPort)
	}
	if cfg.EngineID != "custom-engine" {
		t.Errorf("file should win over default, got %q", cfg.EngineID)
	}
	if cfg.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.CropAnchor != AnchorCenter {
		t.Errorf("expected center anchor, got %q", cfg.CropAnchor)
	}
	if cfg.Defaults.Steps != 30 || cfg.Defaults.StylePreset != "anime" || cfg.Defaults.CfgScale != types.DefaultCfgScale {
		t.Errorf("unexpected defaults %+v", cfg.Defaults)
	}
	if len(cfg.Views) != 2 || cfg.Views[0].Name != "Top" || cfg.Views[0].CapturePath != "/tmp/top.png" {
		t.Errorf("unexpected views %+v", cfg.Views)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv("STABILITY_ENGINE_ID")
	t.Cleanup(func() { os.Unsetenv("STABILITY_ENGINE_ID") })

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STABILITY_ENGINE_ID=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.EngineID != "from-dotenv" {
		t.Errorf("expected engine from .env, got %q", cfg.EngineID)
	}
}

func TestFromFileValidation(t *testing.T) {
	isolate(t)

	badSteps := 500
	badStyle := "watercolor"

	tests := []struct {
		name string
		fc   *FileConfig
	}{
		{"unknown key source", &FileConfig{APIKeySource: "vault"}},
		{"ssm without parameter", &FileConfig{APIKeySource: "ssm"}},
		{"unknown crop anchor", &FileConfig{CropAnchor: "bottom"}},
		{"negative import size", &FileConfig{ImportSize: -1}},
		{"steps out of range", &FileConfig{Defaults: &FileDefaults{Steps: &badSteps}}},
		{"unknown style", &FileConfig{Defaults: &FileDefaults{StylePreset: &badStyle}}},
		{"duplicate view", &FileConfig{Views: []ViewConfig{{Name: "A"}, {Name: "A"}}}},
		{"unnamed view", &FileConfig{Views: []ViewConfig{{CapturePath: "x.png"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromFile(tt.fc); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := FromFile(&FileConfig{APIKeySource: "ssm", SSMParameter: "/p"}); err != nil {
		t.Errorf("ssm with parameter should be valid, got %v", err)
	}
}

func TestFromFileRejectsBadImportSizeEnv(t *testing.T) {
	isolate(t)
	t.Setenv("IMPORT_SIZE", "big")

	_, err := FromFile(&FileConfig{ImportSize: 256})
	if err == nil || !strings.Contains(err.Error(), "IMPORT_SIZE") {
		t.Errorf("expected IMPORT_SIZE error, got %v", err)
	}

	t.Setenv("IMPORT_SIZE", " 1024 ")
	cfg, err := FromFile(&FileConfig{ImportSize: 256})
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if cfg.ImportSize != 1024 {
		t.Errorf("expected env import size 1024, got %d", cfg.ImportSize)
	}
}

func TestEnsureConfigFile(t *testing.T) {
	dir := isolate(t)

	if err := EnsureConfigFile(); err != nil {
		t.Fatalf("EnsureConfigFile failed: %v", err)
	}

	path := filepath.Join(dir, "config.toml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	// The generated file is entirely commented out and must parse.
	if _, err := LoadFile(); err != nil {
		t.Errorf("generated config should parse: %v", err)
	}

	// Existing files are left alone
	if err := os.WriteFile(path, []byte("server_port = \":1\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := EnsureConfigFile(); err != nil {
		t.Fatal(err)
	}
	fc, _ := LoadFile()
	if fc.ServerPort != ":1" || info.Size() == 0 {
		t.Error("EnsureConfigFile should not overwrite an existing file")
	}
}
