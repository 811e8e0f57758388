package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

const (
	MessageEmailSent = "Email sent successfully!"
	failedPrefix     = "Failed to send email: "
)

// Delivery reports the outcome of one send attempt.
type Delivery struct {
	Sent bool
	// Skipped is set when no send was attempted, as in a dry run.
	Skipped   bool
	Message   string
	MessageID string
	Err       error
}

// NotifierService delivers applicant emails. Send never returns an error;
// failures are reported in the Delivery.
type NotifierService interface {
	Send(ctx context.Context, recipient string, n models.Notification) Delivery
}

type smtpNotifier struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func NewSMTPNotifier(cfg config.MailConfig, log *zap.Logger) NotifierService {
	return &smtpNotifier{
		cfg:    cfg,
		logger: logger.OrNop(log),
	}
}

// Send implements NotifierService.
func (s *smtpNotifier) Send(ctx context.Context, recipient string, n models.Notification) Delivery {
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.cfg.Host)

	if err := s.send(ctx, recipient, messageID, n); err != nil {
		s.logger.Warn("email delivery failed",
			zap.String("to", recipient),
			zap.String("relay", s.cfg.Address()),
			zap.Error(err),
		)
		return Delivery{
			Sent:    false,
			Message: failedPrefix + err.Error(),
			Err:     apperrors.NewNotificationError(recipient, err),
		}
	}

	s.logger.Info("email sent",
		zap.String("to", recipient),
		zap.String("message_id", messageID),
	)

	return Delivery{
		Sent:      true,
		Message:   MessageEmailSent,
		MessageID: messageID,
	}
}

func (s *smtpNotifier) send(ctx context.Context, recipient, messageID string, n models.Notification) error {
	to, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", recipient, err)
	}
	from := s.cfg.FromAddress()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}

	dialer := net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if s.cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName:         s.cfg.Host,
			InsecureSkipVerify: s.cfg.InsecureSkipVerify,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	} else if s.cfg.RequireTLS {
		return errors.New("SMTP server does not support STARTTLS")
	} else if !isLoopbackHost(s.cfg.Host) {
		s.logger.Warn("SMTP server does not offer STARTTLS, sending in plaintext",
			zap.String("relay", s.cfg.Address()),
		)
	}

	if s.cfg.HasCredentials() {
		auth := smtp.PlainAuth("", s.cfg.Sender, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to.Address); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", to.Address, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(buildMessage(from, to.Address, messageID, n)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	// The relay has queued the message once DATA is acknowledged.
	if err := client.Quit(); err != nil {
		s.logger.Debug("smtp quit failed", zap.Error(err))
	}
	return nil
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// buildMessage renders a single-part plain-text message with CRLF line endings.
func buildMessage(from, to, messageID string, n models.Notification) []byte {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", headerValue(from)))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", headerValue(to)))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(n.Subject))))
	builder.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	builder.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	builder.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	builder.WriteString("\r\n")

	body := strings.ReplaceAll(n.Body, "\r\n", "\n")
	builder.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return []byte(builder.String())
}

// headerValue drops line breaks so user input cannot add headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(v))
}

// previewNotifier composes but never sends; used for dry runs.
type previewNotifier struct {
	logger *zap.Logger
}

func NewPreviewNotifier(log *zap.Logger) NotifierService {
	return &previewNotifier{logger: logger.OrNop(log)}
}

// Send implements NotifierService.
func (p *previewNotifier) Send(_ context.Context, recipient string, n models.Notification) Delivery {
	p.logger.Info("dry run, email not sent",
		zap.String("to", recipient),
		zap.String("subject", n.Subject),
	)
	return Delivery{
		Sent:    false,
		Skipped: true,
		Message: "Dry run: email not sent",
	}
}
