package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/clinic-scheduler/internal/notify"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Worker polls the store and dispatches reminders that have come due.
// Delivery failures are logged and retried on the next tick; a reminder is
// only marked sent after its channel accepts it.
type Worker struct {
	store        Store
	email        notify.EmailSender
	sms          notify.SMSSender
	pollInterval time.Duration
	logger       *logging.Logger
	nowFunc      func() time.Time
}

// NewWorker creates a reminder dispatch worker.
func NewWorker(store Store, email notify.EmailSender, sms notify.SMSSender, pollInterval time.Duration, logger *logging.Logger) *Worker {
	if store == nil {
		panic("reminders: store cannot be nil")
	}
	if email == nil {
		panic("reminders: email sender cannot be nil")
	}
	if sms == nil {
		panic("reminders: sms sender cannot be nil")
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		store:        store,
		email:        email,
		sms:          sms,
		pollInterval: pollInterval,
		logger:       logger,
		nowFunc:      time.Now,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("reminder worker started", "poll_interval", w.pollInterval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			if n, err := w.DispatchDue(ctx); err != nil {
				w.logger.Error("reminder dispatch failed", "error", err)
			} else if n > 0 {
				w.logger.Info("reminders dispatched", "count", n)
			}
		}
	}
}

// DispatchDue sends every due reminder once and returns how many went out.
func (w *Worker) DispatchDue(ctx context.Context) (int, error) {
	due, err := w.store.Due(ctx, w.nowFunc().UTC())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, d := range due {
		if err := w.dispatch(ctx, d); err != nil {
			w.logger.Error("reminder delivery failed",
				"reminder_id", d.ID,
				"appointment_id", d.AppointmentID,
				"channel", d.Channel,
				"error", err)
			continue
		}
		if err := w.store.MarkSent(ctx, d.ID); err != nil {
			w.logger.Error("failed to mark reminder sent", "reminder_id", d.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (w *Worker) dispatch(ctx context.Context, d Descriptor) error {
	switch d.Channel {
	case ChannelEmail:
		return w.email.Send(ctx, notify.EmailMessage{
			To:      d.Email,
			ToName:  d.PatientName,
			Subject: fmt.Sprintf("Appointment Reminder - %s", d.AppointmentID),
			Body:    d.Message,
		})
	case ChannelSMS:
		return w.sms.SendSMS(ctx, notify.SMSMessage{To: d.Phone, Body: d.Message})
	default:
		return fmt.Errorf("reminders: unknown channel %q", d.Channel)
	}
}
