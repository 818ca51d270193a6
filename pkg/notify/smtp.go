package notify

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// New returns an SMTP notifier, or a Log notifier if no host is configured.
func New(opts *Options, log logrus.FieldLogger) (Notifier, error) {
	opts.SetDefaults()
	if opts.Host == "" {
		return NewLog(log), nil
	}
	return NewSMTP(opts, log)
}

// SMTP sends html mail via an SMTP relay.
type SMTP struct {
	opts   *Options
	log    logrus.FieldLogger
	client *mail.Client
}

func NewSMTP(opts *Options, log logrus.FieldLogger) (*SMTP, error) {
	opts.SetDefaults()
	mopts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(opts.Port), // after the port policy, which sets its own port
	}
	if opts.Insecure {
		mopts = append(mopts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if opts.Username != "" {
		mopts = append(mopts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}
	client, err := mail.NewClient(opts.Host, mopts...)
	if err != nil {
		return nil, err
	}
	return &SMTP{opts: opts, log: log, client: client}, nil
}

func (s *SMTP) Send(ctx context.Context, to, subject, html string) bool {
	if to == "" {
		return false
	}
	l := s.log.WithFields(logrus.Fields{"to": to, "subject": subject})

	msg, err := s.message(to, subject, html)
	if err != nil {
		l.WithError(err).Warn("invalid mail")
		return false
	}

	err = s.client.DialAndSendWithContext(ctx, msg)
	if err != nil {
		l.WithError(err).Warn("failed to send mail")
		return false
	}
	l.Debug("mail sent")
	return true
}

func (s *SMTP) message(to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.opts.From); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}
