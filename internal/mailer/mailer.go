package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
	"go.uber.org/zap"
)

// Mailer sends transactional email. Implementations must not block the
// caller for longer than a single send attempt.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, resetLink string) error
}

// MailerSend sends email through the MailerSend API.
type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

// NewMailerSend creates a MailerSend-backed mailer.
func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSend {
	return &MailerSend{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: fromName, Email: fromEmail},
	}
}

// SendPasswordReset emails a password-reset link valid for 10 minutes.
func (m *MailerSend) SendPasswordReset(ctx context.Context, toEmail, toName, resetLink string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject("Reset your password")
	msg.SetText(fmt.Sprintf("Reset your password using this link (valid for 10 minutes): %s", resetLink))
	msg.SetHTML(fmt.Sprintf(`<p>Reset your password using <a href="%s">this link</a>. The link is valid for 10 minutes.</p>`, resetLink))

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// DevMailer logs mail instead of sending it. Used in development and tests.
type DevMailer struct {
	logger *zap.Logger
}

// NewDevMailer creates a log-only mailer.
func NewDevMailer(logger *zap.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

// SendPasswordReset logs the reset link at info level.
func (m *DevMailer) SendPasswordReset(_ context.Context, toEmail, _ string, resetLink string) error {
	m.logger.Info("password reset email (dev mode)",
		zap.String("to", toEmail),
		zap.String("reset_link", resetLink),
	)
	return nil
}
