package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"investment-tracker/config"
	"investment-tracker/models"
)

func testDefaults() models.NotificationSettings {
	return models.NotificationSettings{
		Email:      "default@example.com",
		SMTPServer: "smtp.gmail.com",
		SMTPPort:   587,
	}
}

func TestNewStore_UsesDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "test-passphrase", testDefaults())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store.filePath != filepath.Join(dir, fileName) {
		t.Errorf("filePath = %s", store.filePath)
	}

	got := store.NotificationSettings()
	if got.Email != "default@example.com" || got.SMTPPort != 587 {
		t.Errorf("expected defaults, got %+v", got)
	}
	if _, err := os.Stat(store.filePath); !errors.Is(err, os.ErrNotExist) {
		t.Error("defaults should not be written until the first update")
	}
}

func TestStore_UpdatePersistsEncrypted(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, "test-passphrase", testDefaults())
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	masked, err := store.Update(Input{
		Email:            "me@example.com",
		TelegramBotToken: "123456:ABC-secret",
		TelegramChatID:   "42",
		SMTPUsername:     "me@example.com",
		SMTPPassword:     "app-password",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !masked.HasTelegramToken || !masked.HasSMTPCredentials {
		t.Errorf("masked view should flag configured secrets: %+v", masked)
	}
	if !masked.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", masked.UpdatedAt, fixed)
	}
	if masked.SMTPServer != "smtp.gmail.com" || masked.SMTPPort != 587 {
		t.Errorf("empty server/port should keep defaults: %+v", masked)
	}

	raw, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	if strings.Contains(string(raw), "app-password") || strings.Contains(string(raw), "ABC-secret") {
		t.Error("settings file must not contain plaintext secrets")
	}

	reopened, err := NewStore(dir, "test-passphrase", models.NotificationSettings{})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got := reopened.NotificationSettings()
	if got.SMTPPassword != "app-password" || got.TelegramBotToken != "123456:ABC-secret" || got.TelegramChatID != "42" {
		t.Errorf("reopened settings = %+v", got)
	}
}

func TestStore_EmptySecretsKeepStoredValues(t *testing.T) {
	store, _ := NewStore(t.TempDir(), "p", testDefaults())
	if _, err := store.Update(Input{TelegramBotToken: "1:a", SMTPUsername: "u", SMTPPassword: "pw"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := store.Update(Input{Email: "new@example.com", SMTPUsername: "u"}); err != nil {
		t.Fatalf("second Update() error = %v", err)
	}

	got := store.NotificationSettings()
	if got.TelegramBotToken != "1:a" || got.SMTPPassword != "pw" {
		t.Errorf("secrets should survive a masked round trip: %+v", got)
	}
	if got.Email != "new@example.com" {
		t.Errorf("Email = %s", got.Email)
	}
}

func TestStore_WrongPassphraseFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, "right", testDefaults())
	if _, err := store.Update(Input{Email: "saved@example.com"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	other, err := NewStore(dir, "wrong", testDefaults())
	if err != nil {
		t.Fatalf("NewStore() should not fail on an unreadable file: %v", err)
	}
	if got := other.NotificationSettings(); got.Email != "default@example.com" {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	store, _ := NewStore(t.TempDir(), "p", testDefaults())
	s := store.NotificationSettings()
	s.Email = "mutated@example.com"
	if store.NotificationSettings().Email != "default@example.com" {
		t.Error("NotificationSettings() must return a copy")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"empty is fine", Input{}, false},
		{"full settings", Input{Email: "a@b.c", SMTPServer: "smtp.example.com", SMTPPort: 465, TelegramBotToken: "1:x"}, false},
		{"email without at", Input{Email: "nope"}, true},
		{"email with newline", Input{Email: "a@b.c\nBcc: x@y.z"}, true},
		{"port out of range", Input{SMTPPort: 70000}, true},
		{"negative port", Input{SMTPPort: -1}, true},
		{"server with path", Input{SMTPServer: "smtp.example.com/x"}, true},
		{"malformed bot token", Input{TelegramBotToken: "token"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("Validate() error should wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdate_RejectsInvalidInput(t *testing.T) {
	store, _ := NewStore(t.TempDir(), "p", testDefaults())
	if _, err := store.Update(Input{Email: "broken"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Update() error = %v, want ErrInvalidInput", err)
	}
	if store.NotificationSettings().Email != "default@example.com" {
		t.Error("rejected update must not change settings")
	}
}

func TestDefaultsFromConfig(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Notification.DefaultEmail = "env@example.com"
	cfg.Notification.TelegramToken = "9:z"

	got := DefaultsFromConfig(cfg.Notification)
	if got.Email != "env@example.com" || got.TelegramBotToken != "9:z" || got.SMTPPort != cfg.Notification.SMTPPort {
		t.Errorf("DefaultsFromConfig() = %+v", got)
	}
}
