package compliance

import (
	"math"
	"time"

	"vet-vaccination-tracker/internal/domain/protocol"
)

// Entry es la proyección mínima de una dosis aplicada que necesita el motor:
// qué definición referencia y cuándo se aplicó. La capa de registros la produce
// a partir de su historial completo.
type Entry struct {
	DoseDefinitionID string
	AppliedOn        time.Time
}

// Snapshot es el estado de avance del esquema, derivado on-demand.
// Nunca se persiste: se recalcula desde el historial completo.
type Snapshot struct {
	CompletedSlots int
	TotalSlots     int
	Percentage     int
	IsComplete     bool
}

// Evaluator evalúa el historial de dosis contra el catálogo inyectado.
// Todas sus operaciones son funciones puras de sus entradas.
type Evaluator struct {
	catalog *protocol.Catalog
}

func NewEvaluator(catalog *protocol.Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// IsSatisfied indica si la dosis objetivo quedó cubierta por el historial:
// aplicada directamente, o cubierta por una combinada vía Replaces.
// IDs aplicados que ya no existen en el catálogo no cubren nada (no es error).
func (e *Evaluator) IsSatisfied(doseDefinitionID string, entries []Entry) bool {
	for _, entry := range entries {
		if entry.DoseDefinitionID == doseDefinitionID {
			return true
		}
		applied, ok := e.catalog.Resolve(entry.DoseDefinitionID)
		if !ok {
			continue
		}
		for _, replaced := range applied.Replaces {
			if replaced == doseDefinitionID {
				return true
			}
		}
	}
	return false
}

// Snapshot calcula el avance del esquema sobre slots distintos:
// un slot cuenta como cumplido si alguna de sus alternativas está satisfecha.
// Especies sin esquema devuelven {0,0,0,false} por convención.
func (e *Evaluator) Snapshot(species protocol.Species, entries []Entry) Snapshot {
	slots := e.catalog.Slots(species)
	if len(slots) == 0 {
		return Snapshot{}
	}

	completed := 0
	for _, slot := range slots {
		if e.slotFulfilled(species, slot, entries) {
			completed++
		}
	}

	total := len(slots)
	return Snapshot{
		CompletedSlots: completed,
		TotalSlots:     total,
		Percentage:     int(math.Round(100 * float64(completed) / float64(total))),
		IsComplete:     completed == total,
	}
}

// NextSuggested devuelve la siguiente dosis sugerida del esquema: la primera
// alternativa del primer slot incompleto cuya edad mínima permite la edad del
// paciente. Si ninguna alternativa califica por edad, devuelve la primera de
// todas formas (el caller muestra la advertencia del age gate). Esquema
// completo o vacío => sin sugerencia.
func (e *Evaluator) NextSuggested(species protocol.Species, entries []Entry, patientAgeMonths int) (protocol.DoseDefinition, bool) {
	for _, slot := range e.catalog.Slots(species) {
		if e.slotFulfilled(species, slot, entries) {
			continue
		}

		alternatives := e.catalog.InSlot(species, slot)
		for _, d := range alternatives {
			if !d.HasMinAge() || patientAgeMonths >= *d.MinAgeMonths {
				return d, true
			}
		}
		return alternatives[0], true
	}
	return protocol.DoseDefinition{}, false
}

// MissingPriorSlots lista, en orden ascendente de slot, una dosis representante
// (la primera del slot) por cada slot anterior al objetivo que siga incompleto.
// Sirve para advertir antes de registrar una dosis fuera de orden; no bloquea.
func (e *Evaluator) MissingPriorSlots(species protocol.Species, targetDoseDefinitionID string, entries []Entry) []protocol.DoseDefinition {
	target, ok := e.catalog.Resolve(targetDoseDefinitionID)
	if !ok {
		return nil
	}

	missing := make([]protocol.DoseDefinition, 0)
	for _, slot := range e.catalog.Slots(species) {
		if slot >= target.Slot {
			break
		}
		if e.slotFulfilled(species, slot, entries) {
			continue
		}
		if alternatives := e.catalog.InSlot(species, slot); len(alternatives) > 0 {
			missing = append(missing, alternatives[0])
		}
	}
	return missing
}

func (e *Evaluator) slotFulfilled(species protocol.Species, slot int, entries []Entry) bool {
	for _, d := range e.catalog.InSlot(species, slot) {
		if e.IsSatisfied(d.ID, entries) {
			return true
		}
	}
	return false
}
