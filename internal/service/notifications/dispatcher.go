package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/pkg/clients/sms"
)

const errNotConfigured = "sms credentials not configured"

// DeliveryLog records every delivery attempt.
type DeliveryLog interface {
	SaveNotification(ctx context.Context, n *models.Notification) error
}

// Dispatcher sends alerts over SMS and logs the outcome. It never returns an
// error: a failed delivery is reported as false. Email has no provider yet,
// so email copies are only queued in the log as pending.
type Dispatcher struct {
	sender sms.Client
	log    DeliveryLog
	now    func() time.Time
	logger *zap.Logger
}

// NewDispatcher builds a dispatcher. A nil sender means SMS is not configured
// and every attempt is logged as failed.
func NewDispatcher(sender sms.Client, log DeliveryLog, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, log: log, now: time.Now, logger: logger}
}

// SendAlert texts message to contact.
func (d *Dispatcher) SendAlert(ctx context.Context, contact models.Contact, message string) bool {
	entry := &models.Notification{
		Channel:   models.ChannelSMS,
		Recipient: contact.Mobile,
		Message:   message,
	}

	switch {
	case d.sender == nil:
		entry.Status = models.NotificationFailed
		entry.Error = errNotConfigured
		d.logger.Warn("sms not configured, alert not sent", zap.String("recipient", contact.Mobile))
	default:
		resp, err := d.sender.SendMessage(ctx, sms.SendMessageRequest{To: contact.Mobile, Body: message})
		if err != nil {
			entry.Status = models.NotificationFailed
			entry.Error = err.Error()
			d.logger.Error("sms delivery failed", zap.String("recipient", contact.Mobile), zap.Error(err))
		} else {
			entry.Status = models.NotificationSent
			entry.ProviderMessageID = resp.SID
			d.logger.Info("sms delivered", zap.String("recipient", contact.Mobile), zap.String("sid", resp.SID))
		}
	}

	entry.SentAt = d.now().UTC()
	if d.log != nil {
		if err := d.log.SaveNotification(ctx, entry); err != nil {
			d.logger.Error("failed to record notification", zap.Error(err))
		}
	}

	return entry.Status == models.NotificationSent
}

// SendEmail queues an email for to. It reports false only when the entry
// could not be recorded.
func (d *Dispatcher) SendEmail(ctx context.Context, to, subject, message string) bool {
	entry := &models.Notification{
		Channel:   models.ChannelEmail,
		Recipient: to,
		Subject:   subject,
		Message:   message,
		Status:    models.NotificationPending,
		SentAt:    d.now().UTC(),
	}
	if d.log == nil {
		d.logger.Info("email queued without a delivery log", zap.String("recipient", to))
		return true
	}
	if err := d.log.SaveNotification(ctx, entry); err != nil {
		d.logger.Error("failed to queue email", zap.String("recipient", to), zap.Error(err))
		return false
	}
	d.logger.Info("email queued", zap.String("recipient", to), zap.String("subject", subject))
	return true
}
