package doses

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-vaccination-tracker/internal/domain/compliance"
	"vet-vaccination-tracker/internal/domain/patients"
	"vet-vaccination-tracker/internal/domain/protocol"
	"vet-vaccination-tracker/internal/domain/reminders"
	"vet-vaccination-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(
	r chi.Router,
	svc *Service,
	patientsSvc *patients.Service,
	eval *compliance.Evaluator,
	remindersSvc *reminders.Service,
	catalog *protocol.Catalog,
) {
	r.Route("/patients/{patientID}/doses", func(dr chi.Router) {
		dr.Post("/", applyDoseHandler(svc, patientsSvc, eval, remindersSvc))
		dr.Get("/", listDosesHandler(svc, patientsSvc))
		dr.Get("/precheck", precheckDoseHandler(svc, patientsSvc, eval, catalog))
		dr.Delete("/{doseID}", deleteDoseHandler(svc, patientsSvc))
	})

	r.Get("/patients/{patientID}/compliance", complianceHandler(svc, patientsSvc, eval))
}

// applyDoseRequest es el cuerpo para registrar una dosis aplicada.
type applyDoseRequest struct {
	DoseDefinitionID string `json:"dose_definition_id"`
	AppliedOn        string `json:"applied_on"` // YYYY-MM-DD
	Notes            string `json:"notes"`
}

type appliedDoseResponse struct {
	ID               string    `json:"id"`
	PatientID        string    `json:"patient_id"`
	DoseDefinitionID string    `json:"dose_definition_id"`
	AppliedOn        string    `json:"applied_on"`
	RecordedAt       time.Time `json:"recorded_at"`
	RecordedBy       string    `json:"recorded_by"`
	Notes            string    `json:"notes,omitempty"`
}

type snapshotResponse struct {
	CompletedSlots int  `json:"completed_slots"`
	TotalSlots     int  `json:"total_slots"`
	Percentage     int  `json:"percentage"`
	IsComplete     bool `json:"is_complete"`
}

type ageCheckResponse struct {
	Allowed  bool   `json:"allowed"`
	EdgeCase bool   `json:"edge_case"`
	Warning  string `json:"warning,omitempty"`
}

type missingDoseResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Slot        int    `json:"slot"`
}

// applyDoseResponse devuelve la dosis registrada junto con el resultado del
// pipeline: snapshot actualizado, age gate y recordatorios creados.
type applyDoseResponse struct {
	Dose      appliedDoseResponse `json:"dose"`
	Snapshot  snapshotResponse    `json:"snapshot"`
	AgeGate   ageCheckResponse    `json:"age_gate"`
	Reminders []string            `json:"reminder_ids"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// applyDoseHandler godoc
// @Summary Registrar dosis aplicada
// @Description Registra una dosis en el historial del paciente y corre el pipeline completo: recalcula el avance del esquema, evalúa el age gate y crea los recordatorios que correspondan. Nunca bloquea por edad o por dosis previas faltantes; esas condiciones llegan como advertencias. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags doses
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param payload body applyDoseRequest true "Dosis aplicada; applied_on en formato YYYY-MM-DD"
// @Success 201 {object} applyDoseResponse
// @Failure 400 {string} string "invalid json / applied_on inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/doses [post]
func applyDoseHandler(svc *Service, patientsSvc *patients.Service, eval *compliance.Evaluator, remindersSvc *reminders.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := patientsSvc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req applyDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		appliedOn, err := time.Parse("2006-01-02", req.AppliedOn)
		if err != nil {
			http.Error(w, "applied_on must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		ageMonths := p.AgeInMonths(time.Now())
		gate := eval.CheckAge(req.DoseDefinitionID, ageMonths, p.Species)

		d, err := svc.Apply(r.Context(), p.ID, claims.UserID, ApplyInput{
			DoseDefinitionID: req.DoseDefinitionID,
			AppliedOn:        appliedOn,
			Notes:            req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// Historial completo actualizado: el motor siempre recalcula desde el
		// snapshot total, nunca aplica deltas.
		history, err := svc.ListByPatient(r.Context(), p.ID, ListFilter{})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		entries := Entries(history)
		snap := eval.Snapshot(p.Species, entries)

		warnings := make([]string, 0)
		created, err := remindersSvc.PlanAndRecord(
			r.Context(),
			p.Species,
			entries,
			compliance.Entry{DoseDefinitionID: d.DoseDefinitionID, AppliedOn: d.AppliedOn},
			ageMonths,
			reminders.Contact{
				PatientID:  p.ID,
				PetName:    p.Name,
				OwnerName:  p.OwnerName,
				OwnerEmail: p.OwnerEmail,
				OwnerPhone: p.OwnerPhone,
			},
		)
		if err != nil {
			// Sin contacto: la dosis ya quedó registrada, se degrada a advertencia.
			if errors.Is(err, reminders.ErrNoContact) {
				warnings = append(warnings, "no se crearon recordatorios: el cliente no tiene email ni teléfono")
			} else {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		reminderIDs := make([]string, 0, len(created))
		for _, ev := range created {
			reminderIDs = append(reminderIDs, ev.ID)
		}

		writeJSON(w, http.StatusCreated, applyDoseResponse{
			Dose:      toAppliedDoseResponse(d),
			Snapshot:  toSnapshotResponse(snap),
			AgeGate:   toAgeCheckResponse(gate),
			Reminders: reminderIDs,
			Warnings:  warnings,
		})
	}
}

// listDosesHandler godoc
// @Summary Historial de dosis del paciente
// @Tags doses
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param from query string false "Fecha mínima applied_on (YYYY-MM-DD)"
// @Param to query string false "Fecha máxima applied_on (YYYY-MM-DD)"
// @Param limit query int false "Máximo de registros (por defecto todos)"
// @Success 200 {array} appliedDoseResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/doses [get]
func listDosesHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := patientsSvc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByPatient(r.Context(), p.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]appliedDoseResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toAppliedDoseResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type precheckResponse struct {
	AgeGate      ageCheckResponse      `json:"age_gate"`
	MissingPrior []missingDoseResponse `json:"missing_prior"`
}

// precheckDoseHandler godoc
// @Summary Precheck antes de registrar una dosis
// @Description Dry-run para el diálogo de confirmación: evalúa el age gate y lista las dosis de slots anteriores que faltan. No modifica nada y nunca bloquea; el operador decide si continúa.
// @Tags doses
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param dose_definition_id query string true "ID de la definición de dosis a aplicar"
// @Success 200 {object} precheckResponse
// @Failure 400 {string} string "dose_definition_id required"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/doses/precheck [get]
func precheckDoseHandler(svc *Service, patientsSvc *patients.Service, eval *compliance.Evaluator, catalog *protocol.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := patientsSvc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		doseDefID := strings.TrimSpace(r.URL.Query().Get("dose_definition_id"))
		if doseDefID == "" {
			http.Error(w, "dose_definition_id required", http.StatusBadRequest)
			return
		}

		history, err := svc.ListByPatient(r.Context(), p.ID, ListFilter{})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		entries := Entries(history)

		gate := eval.CheckAge(doseDefID, p.AgeInMonths(time.Now()), p.Species)
		missing := eval.MissingPriorSlots(p.Species, doseDefID, entries)

		out := precheckResponse{
			AgeGate:      toAgeCheckResponse(gate),
			MissingPrior: make([]missingDoseResponse, 0, len(missing)),
		}
		for _, d := range missing {
			out.MissingPrior = append(out.MissingPrior, missingDoseResponse{
				ID:          d.ID,
				DisplayName: d.DisplayName,
				Slot:        d.Slot,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteDoseHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := patientsSvc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		doseID := chi.URLParam(r, "doseID")
		d, err := svc.GetByID(r.Context(), doseID)
		if err != nil || d.PatientID != p.ID {
			http.Error(w, "dose not found", http.StatusNotFound)
			return
		}

		if err := svc.Delete(r.Context(), doseID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type complianceResponse struct {
	Snapshot      snapshotResponse     `json:"snapshot"`
	NextSuggested *missingDoseResponse `json:"next_suggested,omitempty"`
	NextAgeGate   *ageCheckResponse    `json:"next_age_gate,omitempty"`
}

// complianceHandler godoc
// @Summary Avance del esquema de vacunación
// @Description Devuelve el snapshot de cumplimiento (slots completados, porcentaje) y la siguiente dosis sugerida con su age gate. Se recalcula siempre desde el historial; no se persiste.
// @Tags compliance
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} complianceResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/compliance [get]
func complianceHandler(svc *Service, patientsSvc *patients.Service, eval *compliance.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := patientsSvc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		history, err := svc.ListByPatient(r.Context(), p.ID, ListFilter{})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		entries := Entries(history)
		ageMonths := p.AgeInMonths(time.Now())

		out := complianceResponse{
			Snapshot: toSnapshotResponse(eval.Snapshot(p.Species, entries)),
		}
		if next, ok := eval.NextSuggested(p.Species, entries, ageMonths); ok {
			out.NextSuggested = &missingDoseResponse{
				ID:          next.ID,
				DisplayName: next.DisplayName,
				Slot:        next.Slot,
			}
			gate := eval.CheckAge(next.ID, ageMonths, p.Species)
			gateResp := toAgeCheckResponse(gate)
			out.NextAgeGate = &gateResp
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	filter := ListFilter{}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, errors.New("from must be YYYY-MM-DD")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, errors.New("to must be YYYY-MM-DD")
		}
		filter.To = &t
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	return filter, nil
}

func toAppliedDoseResponse(d AppliedDose) appliedDoseResponse {
	return appliedDoseResponse{
		ID:               d.ID,
		PatientID:        d.PatientID,
		DoseDefinitionID: d.DoseDefinitionID,
		AppliedOn:        d.AppliedOn.Format("2006-01-02"),
		RecordedAt:       d.RecordedAt,
		RecordedBy:       d.RecordedBy,
		Notes:            d.Notes,
	}
}

func toSnapshotResponse(s compliance.Snapshot) snapshotResponse {
	return snapshotResponse{
		CompletedSlots: s.CompletedSlots,
		TotalSlots:     s.TotalSlots,
		Percentage:     s.Percentage,
		IsComplete:     s.IsComplete,
	}
}

func toAgeCheckResponse(a compliance.AgeCheck) ageCheckResponse {
	return ageCheckResponse{
		Allowed:  a.Allowed,
		EdgeCase: a.EdgeCase,
		Warning:  a.Warning,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
