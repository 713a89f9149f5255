package notify

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"

	"chantierplus/internal/logs"
)

// SMTPConfig — параметры релея; передаётся явно в NewSMTPMailer.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// SMTPMailer отправляет через релей с обязательным STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("smtp: from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm, err := buildMsg(m.cfg.FromName, m.cfg.FromEmail, msg)
	if err != nil {
		return err
	}
	c, err := m.client()
	if err != nil {
		return errors.Wrap(err, "smtp client")
	}
	logs.Logger.Debugf("smtp send to=%s via %s:%d", msg.To, m.cfg.Host, m.cfg.Port)
	if err := c.DialAndSendWithContext(ctx, mm); err != nil {
		return errors.Wrapf(err, "smtp send to %s", msg.To)
	}
	return nil
}

func buildMsg(fromName, fromEmail string, msg Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.FromFormat(fromName, fromEmail); err != nil {
		return nil, errors.Wrap(err, "from address")
	}
	if err := mm.To(msg.To); err != nil {
		return nil, errors.Wrap(err, "to address")
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)
	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if err := mm.AttachReader(a.Filename, bytes.NewReader(a.Data), mail.WithFileContentType(mail.ContentType(ct))); err != nil {
			return nil, errors.Wrapf(err, "attach %s", a.Filename)
		}
	}
	return mm, nil
}

// LogMailer пишет письма в лог вместо отправки (когда релей не настроен).
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	logs.Logger.Infof("email (not sent, smtp disabled) to=%s subject=%q attachments=%v", msg.To, msg.Subject, names)
	return nil
}
