package mailer

import (
	"context"
	"errors"

	"vet-vaccination-tracker/internal/ports/notify"
)

// Notifier implementa notify.Notifier despachando el aviso por email.
// Sin reintentos: un fallo se reporta y el recordatorio queda pendiente para
// el próximo ciclo de despacho.
type Notifier struct {
	client *Client
}

func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Send(ctx context.Context, msg notify.Message) error {
	if n == nil || n.client == nil {
		return ErrMailerNotConfigured
	}
	if msg.ToEmail == "" {
		return errors.New("mailer notifier: message without email")
	}
	return n.client.SendEmail(ctx, msg.ToEmail, msg.ToName, msg.Subject, msg.Body)
}
