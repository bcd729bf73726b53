package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/mandalnilabja/scenesculpt/internal/config"
	"github.com/mandalnilabja/scenesculpt/internal/version"
)

// setupLogger returns a colored handler on a terminal and plain text otherwise.
func setupLogger(level string) *slog.Logger {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		lvl, err := log.ParseLevel(level)
		if err != nil {
			lvl = log.InfoLevel
		}
		return slog.New(log.NewWithOptions(os.Stdout, log.Options{
			Level:           lvl,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "scenesculpt",
		}))
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func printStartupBanner(cfg *config.Config, maxUpload int64) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "SceneSculpt %s - Stable Diffusion studio\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Studio API: http://localhost%s/api/generate\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Admin API:  http://localhost%s/api/admin/\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Engine:     %s\n", cfg.EngineID)
	fmt.Fprintf(os.Stderr, "API key:    %s\n", cfg.APIKeySource)
	fmt.Fprintf(os.Stderr, "Views:      %d\n", len(cfg.Views))
	fmt.Fprintf(os.Stderr, "Uploads:    up to %s\n", humanize.IBytes(uint64(maxUpload)))
	if cfg.ExportBucket != "" {
		fmt.Fprintf(os.Stderr, "Exports:    s3://%s/%s\n", cfg.ExportBucket, cfg.ExportPrefix)
	} else {
		fmt.Fprintf(os.Stderr, "Exports:    %s\n", cfg.ExportDir)
	}
	fmt.Fprintf(os.Stderr, "Data:       %s\n", config.DataDir())
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
