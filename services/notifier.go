package services

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/Rhymond/go-money"

	"investment-tracker/models"
	"investment-tracker/observability"
)

// Dispatcher delivers notifications with the credentials currently saved in settings.
// Failures are logged and counted; retrying is left to the caller.
type Dispatcher struct {
	settings NotificationSettingsSource
	email    EmailSenderInterface
	telegram TelegramSenderInterface
	breakers *CircuitBreakerRegistry
}

func NewDispatcher(settings NotificationSettingsSource, email EmailSenderInterface, telegram TelegramSenderInterface) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		email:    email,
		telegram: telegram,
		breakers: GetGlobalRegistry(),
	}
}

// Send delivers n over its channel. ChannelBoth is rejected; expand it with AlertNotifications.
func (d *Dispatcher) Send(ctx context.Context, n models.Notification) error {
	var err error
	switch n.Channel {
	case models.ChannelEmail:
		err = d.sendEmail(ctx, n)
	case models.ChannelTelegram:
		err = d.sendTelegram(ctx, n)
	default:
		err = fmt.Errorf("%w: unsupported notification channel %q", models.ErrInvalidInput, n.Channel)
	}

	observability.GetMetrics().RecordNotification(string(n.Channel), err)
	if err != nil {
		observability.Warn("notification failed", "channel", n.Channel, "error", err)
	}
	return err
}

func (d *Dispatcher) current() *models.NotificationSettings {
	if d.settings == nil {
		return &models.NotificationSettings{}
	}
	if s := d.settings.NotificationSettings(); s != nil {
		return s
	}
	return &models.NotificationSettings{}
}

func (d *Dispatcher) sendEmail(ctx context.Context, n models.Notification) error {
	settings := d.current()
	to := n.Recipient
	if to == "" {
		to = settings.Email
	}
	if to == "" {
		return fmt.Errorf("%w: no email recipient configured", models.ErrInvalidInput)
	}

	smtpCfg := SMTPSettings{
		Server:   settings.SMTPServer,
		Port:     settings.SMTPPort,
		Username: settings.SMTPUsername,
		Password: settings.SMTPPassword,
	}
	_, err := d.breakers.Execute(ctx, BreakerSMTP, func() (any, error) {
		return nil, d.email.SendEmail(ctx, smtpCfg, to, n.Subject, renderEmailHTML(n.Body))
	})
	return err
}

func (d *Dispatcher) sendTelegram(ctx context.Context, n models.Notification) error {
	settings := d.current()
	chatID := n.Recipient
	if chatID == "" {
		chatID = settings.TelegramChatID
	}
	if chatID == "" {
		return fmt.Errorf("%w: no telegram chat id configured", models.ErrInvalidInput)
	}

	text := "🚨 *Investment Tracker Alert*\n\n" + n.Body
	_, err := d.breakers.Execute(ctx, BreakerTelegram, func() (any, error) {
		return nil, d.telegram.SendMessage(ctx, settings.TelegramBotToken, chatID, text)
	})
	return err
}

// renderEmailHTML turns the Markdown-flavoured body into a small HTML page
func renderEmailHTML(body string) string {
	escaped := html.EscapeString(strings.ReplaceAll(body, "*", ""))
	escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
	return `<html>
<body style="font-family: Arial, sans-serif; background-color: #1a1a2e; color: #eee; padding: 20px;">
<div style="max-width: 600px; margin: 0 auto; background-color: #16213e; border-radius: 10px; padding: 20px;">
<h2 style="color: #4ade80;">Investment Tracker Alert</h2>
<div style="background-color: #1a1a2e; padding: 15px; border-radius: 8px;">
` + escaped + `
</div>
<p style="color: #888; font-size: 12px;">This alert was generated automatically by Investment Tracker.</p>
</div>
</body>
</html>`
}

// FormatUSD renders an amount as US dollars rounded to the cent, e.g. $1,234.56
func FormatUSD(amount float64) string {
	return money.New(int64(math.Round(amount*100)), money.USD).Display()
}

// AlertMessage composes the subject and Markdown body announcing a trigger
func AlertMessage(alert *models.Alert, quote *models.Quote) (subject, body string) {
	var headline string
	switch alert.AlertType {
	case models.AlertTypePriceAbove:
		headline = fmt.Sprintf("📈 *%s* rose above your target", alert.Symbol)
	case models.AlertTypePriceBelow:
		headline = fmt.Sprintf("📉 *%s* fell below your target", alert.Symbol)
	default:
		headline = fmt.Sprintf("📊 *%s* moved %.2f%% today (threshold %.2f%%)",
			alert.Symbol, quote.DailyChangePercent, alert.TargetValue)
	}

	lines := []string{headline, ""}
	if alert.AlertType != models.AlertTypePercentChange {
		lines = append(lines, "Target price: "+FormatUSD(alert.TargetValue))
	}
	lines = append(lines, "Current price: "+FormatUSD(quote.Price))
	if alert.Message != "" {
		lines = append(lines, "", "📝 "+alert.Message)
	}

	return "🚨 Price alert: " + alert.Symbol, strings.Join(lines, "\n")
}

// AlertNotifications expands an alert's channel into one delivery request per channel
func AlertNotifications(alert *models.Alert, quote *models.Quote) []models.Notification {
	subject, body := AlertMessage(alert, quote)
	var out []models.Notification
	if alert.Channel.IncludesEmail() {
		out = append(out, models.Notification{
			Channel:   models.ChannelEmail,
			Recipient: alert.Email,
			Subject:   subject,
			Body:      body,
		})
	}
	if alert.Channel.IncludesTelegram() {
		out = append(out, models.Notification{
			Channel:   models.ChannelTelegram,
			Recipient: alert.TelegramChatID,
			Subject:   subject,
			Body:      body,
		})
	}
	return out
}
