package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// Mailer is the email leg of the developer alert channel. SMS is primary;
// email only fires when a MailerSend key is configured.
type Mailer struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	to      string
	Enabled bool
}

func NewMailer(apiKey, fromEmail, toEmail string) *Mailer {
	m := &Mailer{
		Enabled: apiKey != "" && fromEmail != "" && toEmail != "",
		from: mailersend.From{
			Name:  "door-access",
			Email: fromEmail,
		},
		to: toEmail,
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *Mailer) SendAlert(ctx context.Context, subject, text string) error {
	if !m.Enabled {
		return errors.New("mailer disabled (missing MAILERSEND_API_KEY, ALERT_EMAIL_FROM or ALERT_EMAIL_TO)")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: m.to}})
	msg.SetSubject(subject)
	msg.SetText(text)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
