// Package settings persists notification delivery settings in an encrypted file.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"investment-tracker/config"
	"investment-tracker/models"
	"investment-tracker/observability"
)

const fileName = "notifications.enc"

// Input is a settings submission. Empty secrets keep the stored value,
// since clients only ever see the masked view.
type Input struct {
	Email            string `json:"email"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
	SMTPServer       string `json:"smtp_server"`
	SMTPPort         int    `json:"smtp_port"`
	SMTPUsername     string `json:"smtp_username"`
	SMTPPassword     string `json:"smtp_password"`
}

// Store holds the current notification settings and mirrors them to disk
type Store struct {
	mu       sync.RWMutex
	filePath string
	crypto   *Crypto
	current  models.NotificationSettings
	now      func() time.Time
}

// NewStore opens the settings file in dataDir, seeding from defaults when it does not exist.
// An unreadable file is logged and replaced by the defaults on the next save.
func NewStore(dataDir, passphrase string, defaults models.NotificationSettings) (*Store, error) {
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".investment-tracker")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	s := &Store{
		filePath: filepath.Join(dataDir, fileName),
		crypto:   NewCrypto(passphrase),
		current:  defaults,
		now:      time.Now,
	}
	if err := s.load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		observability.WithError(err).Warn("failed to load notification settings, using defaults", "path", s.filePath)
	}
	return s, nil
}

// DefaultsFromConfig maps the environment notification config to settings
func DefaultsFromConfig(cfg config.NotificationConfig) models.NotificationSettings {
	return models.NotificationSettings{
		Email:            cfg.DefaultEmail,
		TelegramBotToken: cfg.TelegramToken,
		TelegramChatID:   cfg.TelegramChatID,
		SMTPServer:       cfg.SMTPServer,
		SMTPPort:         cfg.SMTPPort,
		SMTPUsername:     cfg.SMTPUsername,
		SMTPPassword:     cfg.SMTPPassword,
	}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	plain, err := s.crypto.Decrypt(data)
	if err != nil {
		return fmt.Errorf("failed to decrypt settings: %w", err)
	}

	var loaded models.NotificationSettings
	if err := json.Unmarshal(plain, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

func (s *Store) save(settings models.NotificationSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	sealed, err := s.crypto.Encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}
	if err := os.WriteFile(s.filePath, sealed, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// NotificationSettings returns a copy of the current settings, secrets included
func (s *Store) NotificationSettings() *models.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.current
	return &cp
}

// Masked returns the client-safe view
func (s *Store) Masked() models.MaskedNotificationSettings {
	return s.NotificationSettings().Masked()
}

// Update validates in, merges it over the current settings and persists the result
func (s *Store) Update(in Input) (models.MaskedNotificationSettings, error) {
	if err := Validate(in); err != nil {
		return models.MaskedNotificationSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.Email = strings.TrimSpace(in.Email)
	next.TelegramChatID = strings.TrimSpace(in.TelegramChatID)
	next.SMTPUsername = strings.TrimSpace(in.SMTPUsername)
	if in.SMTPServer != "" {
		next.SMTPServer = strings.TrimSpace(in.SMTPServer)
	}
	if in.SMTPPort != 0 {
		next.SMTPPort = in.SMTPPort
	}
	if in.TelegramBotToken != "" {
		next.TelegramBotToken = strings.TrimSpace(in.TelegramBotToken)
	}
	if in.SMTPPassword != "" {
		next.SMTPPassword = in.SMTPPassword
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.save(next); err != nil {
		return models.MaskedNotificationSettings{}, err
	}
	s.current = next
	observability.Info("notification settings updated",
		"has_telegram_token", next.TelegramBotToken != "", "has_smtp_credentials", next.HasSMTPCredentials())
	return next.Masked(), nil
}

// Validate checks the shape of a settings submission
func Validate(in Input) error {
	email := strings.TrimSpace(in.Email)
	if email != "" && (!strings.Contains(email, "@") || strings.ContainsAny(email, " \r\n")) {
		return fmt.Errorf("%w: email is malformed", models.ErrInvalidInput)
	}
	if in.SMTPPort < 0 || in.SMTPPort > 65535 {
		return fmt.Errorf("%w: smtp_port must be between 1 and 65535", models.ErrInvalidInput)
	}
	if strings.ContainsAny(in.SMTPServer, "/ ") {
		return fmt.Errorf("%w: smtp_server must be a host name", models.ErrInvalidInput)
	}
	if token := strings.TrimSpace(in.TelegramBotToken); token != "" && !strings.Contains(token, ":") {
		return fmt.Errorf("%w: telegram_bot_token must look like <id>:<secret>", models.ErrInvalidInput)
	}
	return nil
}
