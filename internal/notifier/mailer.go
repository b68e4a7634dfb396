package notifier

import (
	"context"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spec-kit/user-lifecycle/internal/config"
)

const (
	createdSubject = "Создание аккаунта"
	createdBody    = "Здравствуйте! Ваш аккаунт на сайте ваш сайт был успешно создан."
	deletedSubject = "Удаление аккаунта"
	deletedBody    = "Здравствуйте! Ваш аккаунт был удалён."
)

// Sender delivers a single prepared email over the mail transport.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailer renders a fixed template per operation and hands the message to the
// transport synchronously. Transport failures are propagated unchanged; the
// caller decides whether redelivery happens.
type Mailer struct {
	sender Sender
	logger *zap.Logger
}

// NewMailer builds a Mailer on top of the given transport.
func NewMailer(sender Sender, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, logger: logger}
}

// SendCreated emails the account-created notice.
func (m *Mailer) SendCreated(ctx context.Context, email string) error {
	m.logger.Info("sending user created email", zap.String("to", email))
	if err := m.sender.Send(ctx, email, createdSubject, createdBody); err != nil {
		m.logger.Error("failed to send user created email", zap.String("to", email), zap.Error(err))
		return err
	}
	return nil
}

// SendDeleted emails the account-deleted notice.
func (m *Mailer) SendDeleted(ctx context.Context, email string) error {
	m.logger.Info("sending user deleted email", zap.String("to", email))
	if err := m.sender.Send(ctx, email, deletedSubject, deletedBody); err != nil {
		m.logger.Error("failed to send user deleted email", zap.String("to", email), zap.Error(err))
		return err
	}
	return nil
}

// SMTPSender sends mail through an SMTP server using go-mail.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds the SMTP transport from mail configuration.
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send delivers one message. One connection per message keeps the sender
// stateless; the consumer's sequential processing bounds the rate anyway.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return s.client.DialAndSendWithContext(ctx, msg)
}
