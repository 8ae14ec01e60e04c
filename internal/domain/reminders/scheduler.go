package reminders

import (
	"sort"
	"time"

	"vet-vaccination-tracker/internal/domain/compliance"
	"vet-vaccination-tracker/internal/domain/protocol"
	"vet-vaccination-tracker/internal/platform/logger"
)

const (
	// Esquema inicial: próxima dosis a los 14 días.
	initialSequenceGapDays = 14
	// El aviso se despacha 5 días antes de la fecha recomendada.
	notifyLeadDays = 5
)

// Plan es una fecha de seguimiento calculada por el scheduler para una dosis
// objetivo. Todavía no es un ReminderEvent: el builder lo materializa con los
// datos de contacto del paciente.
type Plan struct {
	Target   protocol.DoseDefinition
	DueDate  time.Time
	NotifyOn time.Time

	// Annual distingue refuerzo anual de próxima dosis del esquema inicial.
	Annual bool
}

// Scheduler deriva los seguimientos a partir de una dosis recién aplicada y el
// historial actualizado. Sin estado: puro cálculo sobre catálogo + entradas.
type Scheduler struct {
	catalog *protocol.Catalog
	eval    *compliance.Evaluator
	log     logger.Logger
}

func NewScheduler(catalog *protocol.Catalog, eval *compliance.Evaluator, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{catalog: catalog, eval: eval, log: log}
}

// PlanFor calcula los seguimientos tras aplicar `applied` (ya incluida en
// `entries`). Fechas inválidas o anchors ausentes suprimen la rama con un
// warning en el log; nunca devuelven error ni un plan malformado.
//
// Reglas:
//   - Esquema incompleto: un único plan hacia la siguiente dosis sugerida,
//     a 14 días de la aplicación.
//   - Esquema completo, perro: refuerzo anual de la dosis aplicada, solo si
//     esta lo requiere. Cada vacuna cumple su propio aniversario.
//   - Esquema completo, gato: todos los refuerzos anuales se sincronizan a la
//     segunda aplicación de la dosis que inicia el esquema (fan-out: un plan
//     por vacuna con refuerzo anual, misma fecha).
func (s *Scheduler) PlanFor(species protocol.Species, entries []compliance.Entry, applied compliance.Entry, patientAgeMonths int) []Plan {
	if applied.AppliedOn.IsZero() {
		s.log.Warn("reminder suppressed: applied dose has no valid date", map[string]any{
			"dose_definition_id": applied.DoseDefinitionID,
		})
		return nil
	}

	snap := s.eval.Snapshot(species, entries)
	if !snap.IsComplete {
		return s.initialSequencePlan(species, entries, applied, patientAgeMonths)
	}

	switch species {
	case protocol.SpeciesDog:
		return s.dogMaintenancePlans(applied)
	case protocol.SpeciesCat:
		return s.catMaintenancePlans(entries)
	default:
		// Sin esquema => Snapshot nunca es completo; no debería llegar acá.
		return nil
	}
}

func (s *Scheduler) initialSequencePlan(species protocol.Species, entries []compliance.Entry, applied compliance.Entry, patientAgeMonths int) []Plan {
	next, ok := s.eval.NextSuggested(species, entries, patientAgeMonths)
	if !ok {
		return nil
	}

	due := applied.AppliedOn.AddDate(0, 0, initialSequenceGapDays)
	return []Plan{{
		Target:   next,
		DueDate:  due,
		NotifyOn: due.AddDate(0, 0, -notifyLeadDays),
	}}
}

func (s *Scheduler) dogMaintenancePlans(applied compliance.Entry) []Plan {
	def, ok := s.catalog.Resolve(applied.DoseDefinitionID)
	if !ok || !def.RequiresAnnualBooster {
		return nil
	}

	// Aniversario calendario de la aplicación (no 365 días planos).
	due := applied.AppliedOn.AddDate(1, 0, 0)
	return []Plan{{
		Target:   def,
		DueDate:  due,
		NotifyOn: due.AddDate(0, 0, -notifyLeadDays),
		Annual:   true,
	}}
}

func (s *Scheduler) catMaintenancePlans(entries []compliance.Entry) []Plan {
	anchor, ok := s.catAnchor(entries)
	if !ok {
		s.log.Warn("cat booster suppressed: anchor date not available yet", nil)
		return nil
	}

	due := anchor.AddDate(1, 0, 0)
	notifyOn := due.AddDate(0, 0, -notifyLeadDays)

	plans := make([]Plan, 0)
	for _, def := range s.catalog.DosesFor(protocol.SpeciesCat) {
		if !def.RequiresAnnualBooster {
			continue
		}
		plans = append(plans, Plan{
			Target:   def,
			DueDate:  due,
			NotifyOn: notifyOn,
			Annual:   true,
		})
	}
	return plans
}

// catAnchor busca la fecha de la segunda aplicación (por orden de fecha) de la
// dosis que inicia el esquema felino. Cuentan la dosis del slot 1 y cualquier
// definición marcada como BoosterOf de ella (la primera y su refuerzo inmediato
// son la misma vacuna a estos efectos).
func (s *Scheduler) catAnchor(entries []compliance.Entry) (time.Time, bool) {
	catDoses := s.catalog.DosesFor(protocol.SpeciesCat)

	var starter protocol.DoseDefinition
	found := false
	for _, d := range catDoses {
		if d.Slot == 1 {
			starter = d
			found = true
			break
		}
	}
	if !found {
		return time.Time{}, false
	}

	dates := make([]time.Time, 0, 2)
	for _, entry := range entries {
		if entry.AppliedOn.IsZero() {
			continue
		}
		if entry.DoseDefinitionID == starter.ID {
			dates = append(dates, entry.AppliedOn)
			continue
		}
		if def, ok := s.catalog.Resolve(entry.DoseDefinitionID); ok && def.BoosterOf == starter.ID {
			dates = append(dates, entry.AppliedOn)
		}
	}

	if len(dates) < 2 {
		return time.Time{}, false
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates[1], true
}
