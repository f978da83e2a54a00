// Package mailer sends SMTP notifications for new portal submissions. Sends
// run on a bounded worker pool off the event bus so a slow SMTP server never
// backs up request handling.
package mailer

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/viewguard/viewguard/config"
	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/events"
)

type Mailer struct {
	cfg  config.SmtpConfig
	pool *ants.Pool
}

// New builds the mailer and subscribes it to portal events. With SMTP
// disabled it still returns a mailer that only logs.
func New(cfg config.SmtpConfig) (*Mailer, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}
	m := &Mailer{cfg: cfg, pool: pool}

	_ = events.Subscribe(events.TopicContactCreated, m.onContactCreated)
	_ = events.Subscribe(events.TopicMessageCreated, m.onMessageCreated)
	_ = events.Subscribe(events.TopicOrderCreated, m.onOrderCreated)
	return m, nil
}

func (m *Mailer) onContactCreated(ct domain.Contact) {
	m.send("New contact: "+ct.Subject,
		fmt.Sprintf("From %s <%s>\n\n%s", ct.Name, ct.Email, ct.Message))
}

func (m *Mailer) onMessageCreated(msg domain.Message) {
	m.send("New service inquiry: "+msg.Service,
		fmt.Sprintf("From %s <%s> %s\n\n%s", msg.Name, msg.Email, msg.Phone, msg.Message))
}

func (m *Mailer) onOrderCreated(o domain.Order) {
	m.send("New order: "+o.Details.PlanName,
		fmt.Sprintf("Customer %s <%s>\nCameras: %d\nTotal: %.2f %s",
			o.Customer.Name, o.Customer.Email, o.Details.CameraCount,
			o.Details.FinalPrice, o.Payment.Currency))
}

func (m *Mailer) send(subject, body string) {
	if !m.cfg.Enabled || m.cfg.Host == "" || m.cfg.NotifyTo == "" {
		zap.S().Debugf("smtp disabled, skipping notification: %s", subject)
		return
	}
	err := m.pool.Submit(func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", m.cfg.NotifyTo)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", body)

		d := gomail.NewPlainDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
		if err := d.DialAndSend(msg); err != nil {
			zap.L().Error("send notification failed",
				zap.String("subject", subject), zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Warn("mail pool rejected task", zap.Error(err))
	}
}

// Close drains the worker pool.
func (m *Mailer) Close() {
	m.pool.Release()
}
