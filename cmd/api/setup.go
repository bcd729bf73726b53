package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/mandalnilabja/scenesculpt/internal/provider"
	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
	"github.com/mandalnilabja/scenesculpt/internal/tokenizer"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
)

// envAdminPassword sets the admin password on first run without a prompt.
const envAdminPassword = "SCENESCULPT_ADMIN_PASSWORD"

func ensureAdminPassword(store storage.Storage) error {
	hasPassword, err := store.HasAdminPassword()
	if err != nil {
		return fmt.Errorf("failed to check admin password: %w", err)
	}

	if hasPassword {
		return nil
	}

	if password := strings.TrimSpace(os.Getenv(envAdminPassword)); password != "" {
		if !shared.IsValidAdminPassword(password) {
			return fmt.Errorf("%s must be at least 8 characters with a letter and a digit", envAdminPassword)
		}
		return saveAdminPassword(store, password)
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("no admin password configured: set %s or run interactively", envAdminPassword)
	}

	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║              FIRST-TIME SETUP REQUIRED                     ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("No admin password configured. Please set one now.")
	fmt.Println("This password protects the studio and admin APIs.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("Enter admin password (min 8 chars, a letter and a digit): ")
		password, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(password)

		if !shared.IsValidAdminPassword(password) {
			fmt.Println("❌ Password must have at least 8 characters, a letter and a digit.")
			fmt.Println()
			continue
		}

		fmt.Print("Confirm password: ")
		confirm, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		confirm = strings.TrimSpace(confirm)

		if password != confirm {
			fmt.Println("❌ Passwords do not match. Please try again.")
			fmt.Println()
			continue
		}

		if err := saveAdminPassword(store, password); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("✓ Admin password saved successfully!")
		fmt.Println()
		return nil
	}
}

func saveAdminPassword(store storage.Storage, password string) error {
	hash, err := storage.HashPassword(password, storage.DefaultPasswordParams())
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := store.SetAdminPasswordHash(hash); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}
	return nil
}

// seedCredential stores STABILITY_API_KEY as the default credential when the
// store has none, so the key only has to be supplied once.
func seedCredential(store storage.Storage, logger *slog.Logger) error {
	key := strings.TrimSpace(os.Getenv(provider.EnvAPIKey))
	if key == "" {
		return nil
	}

	_, err := store.GetDefaultCredential(models.ProviderStability)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to check credentials: %w", err)
	}

	cred := &storage.Credential{
		Provider:  models.ProviderStability,
		Name:      "env",
		APIKey:    key,
		IsDefault: true,
	}
	if err := store.CreateCredential(cred); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Warn("credential named env exists but is not the default; leaving it alone")
			return nil
		}
		return fmt.Errorf("failed to store credential: %w", err)
	}
	logger.Info("stored API key from environment", "name", cred.Name, "key", storage.MaskAPIKey(key))
	return nil
}

// tokenizerLoadTimeout bounds the startup fetch of the BPE vocabulary.
const tokenizerLoadTimeout = 10 * time.Second

// newTokenCounter loads the prompt tokenizer before serving. Counting is
// disabled when the vocabulary cannot be loaded in time, so no request ever
// waits on the fetch.
func newTokenCounter(tok *tokenizer.TiktokenTokenizer, timeout time.Duration, logger *slog.Logger) tokenizer.Counter {
	done := make(chan error, 1)
	go func() { done <- tok.Load() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Warn("prompt token counting disabled", "error", err)
			return nil
		}
		return tok
	case <-time.After(timeout):
		logger.Warn("prompt token counting disabled", "error", "tokenizer load timed out", "timeout", timeout)
		return nil
	}
}
