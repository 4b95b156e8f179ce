package services

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPSettings addresses an SMTP relay
type SMTPSettings struct {
	Server   string
	Port     int
	Username string
	Password string
}

func (s SMTPSettings) addr() string {
	return net.JoinHostPort(s.Server, strconv.Itoa(s.Port))
}

// EmailService sends HTML mail; smtp.SendMail upgrades with STARTTLS when offered
type EmailService struct {
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService() *EmailService {
	return &EmailService{sendMail: smtp.SendMail}
}

// SendEmail sends one HTML message from the SMTP username to a single recipient
func (s *EmailService) SendEmail(ctx context.Context, cfg SMTPSettings, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg.Server == "" || cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("smtp credentials: %w", ErrNotConfigured)
	}
	if to == "" || strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("invalid recipient %q", to)
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Server)
	message := buildMIMEMessage(cfg.Username, to, subject, htmlBody)

	if err := s.sendMail(cfg.addr(), auth, cfg.Username, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMIMEMessage(from, to, subject, htmlBody string) []byte {
	subject = strings.NewReplacer("\r", "", "\n", " ").Replace(subject)
	return []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", from, to, subject, htmlBody))
}
