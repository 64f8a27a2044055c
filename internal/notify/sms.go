package notify

import (
	"context"
	"fmt"

	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// SMSMessage is a single outgoing text message.
type SMSMessage struct {
	To   string
	Body string
}

// SMSSender delivers text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, msg SMSMessage) error
}

// StubSMSSender records messages in memory instead of sending them. The
// clinic has no SMS gateway provisioned yet; this keeps the reminder
// pipeline exercisable end to end.
type StubSMSSender struct {
	Sent   []SMSMessage
	logger *logging.Logger
}

// NewStubSMSSender creates a sender that only logs.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS records the message.
func (s *StubSMSSender) SendSMS(ctx context.Context, msg SMSMessage) error {
	if msg.To == "" {
		return fmt.Errorf("notify: sms message has no recipient")
	}
	s.Sent = append(s.Sent, msg)
	s.logger.Info("stub sms sender: would send", "to", msg.To)
	return nil
}

// Ensure interface compliance
var _ SMSSender = (*StubSMSSender)(nil)
