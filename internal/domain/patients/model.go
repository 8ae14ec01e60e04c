package patients

import (
	"time"

	"vet-vaccination-tracker/internal/domain/protocol"
)

// Sex define el sexo del paciente.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Patient es la ficha del paciente junto con el contacto del dueño.
// El contacto vive acá porque los recordatorios lo necesitan al armarse.
type Patient struct {
	ID          string
	OwnerUserID string

	Name    string
	Species protocol.Species
	Breed   string
	Sex     Sex

	BirthDate *time.Time
	Microchip string

	OwnerName  string
	OwnerEmail string
	OwnerPhone string

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgeInMonths deriva la edad en meses a la fecha dada.
// Sin fecha de nacimiento (o nacimiento futuro) => 0: el age gate tratará
// al paciente como de edad desconocida y el esquema sugiere desde el inicio.
func (p Patient) AgeInMonths(now time.Time) int {
	if p.BirthDate == nil || p.BirthDate.IsZero() {
		return 0
	}
	b := *p.BirthDate
	months := (now.Year()-b.Year())*12 + int(now.Month()) - int(b.Month())
	if months < 0 {
		return 0
	}
	return months
}
