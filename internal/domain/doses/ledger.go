package doses

import "vet-vaccination-tracker/internal/domain/compliance"

// Entries proyecta el historial completo a la forma mínima que consume el
// motor de compliance/scheduling: id de definición + fecha de aplicación.
func Entries(items []AppliedDose) []compliance.Entry {
	out := make([]compliance.Entry, 0, len(items))
	for _, d := range items {
		out = append(out, compliance.Entry{
			DoseDefinitionID: d.DoseDefinitionID,
			AppliedOn:        d.AppliedOn,
		})
	}
	return out
}
