package reminders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoContact: el destinatario no tiene email ni teléfono. Es el único
	// fallo del motor que se reporta explícito al caller; un recordatorio sin
	// contacto no sirve para nada.
	ErrNoContact = errors.New("recipient has no usable contact")

	// ErrInvalidSchedule: fechas vacías o notifyOn no anterior a dueDate.
	ErrInvalidSchedule = errors.New("invalid schedule dates")
)

// Contact son los datos del paciente/dueño que necesita el recordatorio.
type Contact struct {
	PatientID  string
	PetName    string
	OwnerName  string
	OwnerEmail string
	OwnerPhone string
}

func (c Contact) hasAddress() bool {
	return strings.TrimSpace(c.OwnerEmail) != "" || strings.TrimSpace(c.OwnerPhone) != ""
}

// BuildEvent materializa un Plan como ReminderEvent con Sent=false.
// Se niega a producir un registro parcial: fechas inválidas o falta de
// contacto devuelven error en vez de un evento a medias.
func BuildEvent(plan Plan, contact Contact, now time.Time) (ReminderEvent, error) {
	if plan.DueDate.IsZero() || plan.NotifyOn.IsZero() {
		return ReminderEvent{}, ErrInvalidSchedule
	}
	if !plan.NotifyOn.Before(plan.DueDate) {
		return ReminderEvent{}, ErrInvalidSchedule
	}
	if !contact.hasAddress() {
		return ReminderEvent{}, ErrNoContact
	}

	title := fmt.Sprintf("Refuerzo de %s", plan.Target.DisplayName)
	message := fmt.Sprintf("%s necesita su refuerzo anual de %s el %s",
		contact.PetName, plan.Target.DisplayName, plan.DueDate.Format("02/01/2006"))
	if !plan.Annual {
		title = fmt.Sprintf("Próxima dosis: %s", plan.Target.DisplayName)
		message = fmt.Sprintf("%s tiene programada su dosis de %s para el %s",
			contact.PetName, plan.Target.DisplayName, plan.DueDate.Format("02/01/2006"))
	}

	return ReminderEvent{
		ID:               uuid.NewString(),
		PatientID:        contact.PatientID,
		DoseDefinitionID: plan.Target.ID,
		DueDate:          plan.DueDate,
		NotifyOn:         plan.NotifyOn,
		Sent:             false,
		Title:            title,
		Message:          message,
		PetName:          strings.TrimSpace(contact.PetName),
		OwnerName:        strings.TrimSpace(contact.OwnerName),
		OwnerEmail:       strings.TrimSpace(contact.OwnerEmail),
		OwnerPhone:       strings.TrimSpace(contact.OwnerPhone),
		CreatedAt:        now,
	}, nil
}
