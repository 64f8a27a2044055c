// Package notify sends booking confirmations and reminder messages to
// patients over email and SMS.
package notify

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Attachment is a file included with an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailMessage is a single outgoing email.
type EmailMessage struct {
	To          string
	ToName      string
	Subject     string
	Body        string
	HTML        bool
	Attachments []Attachment
}

// EmailSender delivers email messages.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SendGridSender delivers email through the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSendGridSender creates a SendGrid-backed sender. Returns nil when no
// API key is configured so callers can fall back to the stub.
func NewSendGridSender(apiKey, fromEmail, fromName string, logger *logging.Logger) *SendGridSender {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

// Send delivers the message. Attachments are base64-encoded per the
// SendGrid v3 API.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("notify: email message has no recipient")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	var plain, html string
	if msg.HTML {
		html = msg.Body
	} else {
		plain = msg.Body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, plain, html)

	for _, att := range msg.Attachments {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(att.Data))
		attachment.SetType(att.ContentType)
		attachment.SetFilename(att.Filename)
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}

	s.logger.Info("notify: email sent", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	return nil
}

// StubEmailSender records messages in memory instead of sending them.
type StubEmailSender struct {
	Sent   []EmailMessage
	logger *logging.Logger
}

// NewStubEmailSender creates a sender that only logs.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send records the message.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("notify: email message has no recipient")
	}
	s.Sent = append(s.Sent, msg)
	s.logger.Info("stub email sender: would send", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Ensure interface compliance
var _ EmailSender = (*SendGridSender)(nil)
var _ EmailSender = (*StubEmailSender)(nil)
