package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the scenesculpt data directory.
// - Windows: %APPDATA%\scenesculpt
// - Other OS: ~/.scenesculpt
// SCENESCULPT_HOME overrides both.
func DataDir() string {
	if dir := os.Getenv("SCENESCULPT_HOME"); dir != "" {
		return dir
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "scenesculpt")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".scenesculpt"
	}
	return filepath.Join(home, ".scenesculpt")
}

// DBPath returns the path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "scenesculpt.db")
}

// EnvPath returns the path to the optional dotenv file.
func EnvPath() string {
	return filepath.Join(DataDir(), ".env")
}

// BackgroundsDir is where images applied as viewport backgrounds are written.
func BackgroundsDir() string {
	return filepath.Join(DataDir(), "backgrounds")
}

// DefaultExportDir is used when export_dir is unset.
func DefaultExportDir() string {
	return filepath.Join(DataDir(), "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
