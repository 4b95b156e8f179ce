package models

import "time"

// NotificationSettings holds delivery credentials. Never serialized as-is.
type NotificationSettings struct {
	Email            string    `json:"email"`
	TelegramBotToken string    `json:"telegram_bot_token"`
	TelegramChatID   string    `json:"telegram_chat_id"`
	SMTPServer       string    `json:"smtp_server"`
	SMTPPort         int       `json:"smtp_port"`
	SMTPUsername     string    `json:"smtp_username"`
	SMTPPassword     string    `json:"smtp_password"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasSMTPCredentials reports whether both SMTP username and password are set
func (s *NotificationSettings) HasSMTPCredentials() bool {
	return s.SMTPUsername != "" && s.SMTPPassword != ""
}

// Masked returns the view of the settings that may leave the process
func (s *NotificationSettings) Masked() MaskedNotificationSettings {
	return MaskedNotificationSettings{
		Email:              s.Email,
		TelegramChatID:     s.TelegramChatID,
		SMTPServer:         s.SMTPServer,
		SMTPPort:           s.SMTPPort,
		HasTelegramToken:   s.TelegramBotToken != "",
		HasSMTPCredentials: s.HasSMTPCredentials(),
		UpdatedAt:          s.UpdatedAt,
	}
}

type MaskedNotificationSettings struct {
	Email              string    `json:"email,omitempty"`
	TelegramChatID     string    `json:"telegram_chat_id,omitempty"`
	SMTPServer         string    `json:"smtp_server"`
	SMTPPort           int       `json:"smtp_port"`
	HasTelegramToken   bool      `json:"has_telegram_token"`
	HasSMTPCredentials bool      `json:"has_smtp_credentials"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Notification is one delivery request produced by a trigger or a test send
type Notification struct {
	Channel   NotificationChannel
	Recipient string
	Subject   string
	Body      string
}
