package notify

import (
	"context"
	"time"
)

// Message es el aviso que el motor entrega al notificador externo.
// El port define su propio shape para no acoplar el transporte al dominio:
// el service de reminders mapea ReminderEvent -> Message.
type Message struct {
	ReminderID string
	PatientID  string

	ToName  string
	ToEmail string
	ToPhone string

	Subject string
	Body    string

	DueDate time.Time
}

// Notifier despacha un aviso. La política de reintentos/idempotencia es del
// adapter; el motor solo decide qué y cuándo.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
