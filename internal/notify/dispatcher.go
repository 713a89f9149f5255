// Package notify — получатели, HTML-письмо и рассылка PDF avenant по почте.
package notify

import (
	"context"

	"chantierplus/internal/apperr"
	"chantierplus/internal/logs"
)

type Attachment struct {
	Filename    string
	Data        []byte
	ContentType string
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer — транспорт; одна попытка на вызов, ошибка при сбое.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Delivery — итог отправки одному получателю.
type Delivery struct {
	Recipient string `json:"recipient"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type Dispatcher struct {
	mailer Mailer
}

func NewDispatcher(m Mailer) *Dispatcher { return &Dispatcher{mailer: m} }

// Send — одна попытка для одного адреса. Паника транспорта тоже становится ошибкой.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.Transport(nil, "mail transport panicked")
			logs.Logger.Errorf("mail transport panic to=%s: %v", msg.To, rec)
		}
	}()
	if err := d.mailer.Send(ctx, msg); err != nil {
		return apperr.Transport(err, "send email to "+msg.To)
	}
	return nil
}

// Dispatch отправляет письмо каждому адресу по очереди; сбой одного не прерывает остальных.
// После истечения ctx оставшиеся адреса помечаются неуспешными без обращения к транспорту.
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []string, subject, html string, atts []Attachment) []Delivery {
	out := make([]Delivery, 0, len(recipients))
	for _, to := range recipients {
		if ctx.Err() != nil {
			err := apperr.Transport(ctx.Err(), "notification deadline passed before sending")
			logs.Logger.Warnf("email to=%s skipped: %v", to, err)
			out = append(out, Delivery{Recipient: to, Error: err.Error()})
			continue
		}
		err := d.Send(ctx, Message{To: to, Subject: subject, HTML: html, Attachments: atts})
		if err != nil {
			logs.Logger.Errorf("email to=%s failed: %v", to, err)
			out = append(out, Delivery{Recipient: to, Error: err.Error()})
			continue
		}
		logs.Logger.Infof("email to=%s sent", to)
		out = append(out, Delivery{Recipient: to, OK: true})
	}
	return out
}

func Failed(ds []Delivery) int {
	n := 0
	for _, d := range ds {
		if !d.OK {
			n++
		}
	}
	return n
}
