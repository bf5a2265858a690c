// Package notify delivers workflow notifications. Delivery is strictly
// fire-and-forget: a failed send is logged and never rolls back or blocks
// the workflow transition that triggered it.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// Notifier sends a message to a recipient.
type Notifier interface {
	Notify(recipient, subject, body string)
}

// SMTPConfig holds the outbound mail configuration.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPNotifier sends notifications over SMTP in a background goroutine.
type SMTPNotifier struct {
	config SMTPConfig
	auth   smtp.Auth
	logger *slog.Logger
}

// NewSMTPNotifier creates an SMTP notifier. When the configuration is
// incomplete, sends become logged no-ops.
func NewSMTPNotifier(config SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &SMTPNotifier{
		config: config,
		auth:   auth,
		logger: logger,
	}
}

func (n *SMTPNotifier) configured() bool {
	return n.config.Host != "" && n.config.Port != "" && n.config.From != ""
}

// Notify queues a send and returns immediately.
func (n *SMTPNotifier) Notify(recipient, subject, body string) {
	if !n.configured() {
		n.logger.Debug("notifier not configured, dropping message", "recipient", recipient, "subject", subject)
		return
	}

	go func() {
		msg := []byte(fmt.Sprintf(
			"To: %s\r\nFrom: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
			recipient, n.config.From, subject, body,
		))

		addr := n.config.Host + ":" + n.config.Port
		if err := smtp.SendMail(addr, n.auth, n.config.From, []string{recipient}, msg); err != nil {
			n.logger.Warn("notification delivery failed",
				"recipient", recipient,
				"subject", subject,
				"error", err,
			)
			return
		}

		n.logger.Debug("notification sent", "recipient", recipient, "subject", subject)
	}()
}
