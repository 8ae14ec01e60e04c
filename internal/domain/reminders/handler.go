package reminders

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-vaccination-tracker/internal/domain/patients"
	"vet-vaccination-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Get("/patients/{patientID}/reminders", listRemindersHandler(svc, patientsSvc))

	r.Route("/reminders", func(rr chi.Router) {
		rr.Delete("/{reminderID}", deleteReminderHandler(svc, patientsSvc))
		// El notificador externo reporta el envío acá.
		rr.Post("/{reminderID}/sent", markSentHandler(svc, patientsSvc))
		// Disparo manual del despacho de pendientes (uso interno).
		rr.Post("/dispatch-pending", dispatchPendingHandler(svc))
	})
}

type reminderResponse struct {
	ID               string     `json:"id"`
	PatientID        string     `json:"patient_id"`
	DoseDefinitionID string     `json:"dose_definition_id"`
	DueDate          string     `json:"due_date"`
	NotifyOn         string     `json:"notify_on"`
	Sent             bool       `json:"sent"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	PetName          string     `json:"pet_name"`
	OwnerName        string     `json:"owner_name"`
	OwnerEmail       string     `json:"owner_email"`
	OwnerPhone       string     `json:"owner_phone"`
	CreatedAt        time.Time  `json:"created_at"`
}

// listRemindersHandler godoc
// @Summary Recordatorios del paciente
// @Tags reminders
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/reminders [get]
func listRemindersHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
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

		items, err := svc.ListByPatient(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]reminderResponse, 0, len(items))
		for _, ev := range items {
			out = append(out, toReminderResponse(ev))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteReminderHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, status := authorizeReminder(r, svc, patientsSvc)
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}

		if err := svc.Delete(r.Context(), ev.ID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// markSentHandler godoc
// @Summary Marcar recordatorio como enviado
// @Description Lo invoca el notificador externo una vez despachado el aviso. El motor nunca marca enviados por su cuenta.
// @Tags reminders
// @Produce json
// @Param reminderID path string true "ID del recordatorio"
// @Success 200 {object} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID}/sent [post]
func markSentHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, status := authorizeReminder(r, svc, patientsSvc)
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}

		updated, err := svc.MarkSent(r.Context(), ev.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(updated))
	}
}

type dispatchResponse struct {
	Sent int `json:"sent"`
}

func dispatchPendingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sent, err := svc.DispatchPending(r.Context(), time.Now())
		if err != nil {
			if err == ErrNotifierNotConfigured {
				http.Error(w, "notifier not configured", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, dispatchResponse{Sent: sent})
	}
}

// authorizeReminder resuelve el recordatorio y valida que el caller sea dueño
// del paciente. status 0 = autorizado.
func authorizeReminder(r *http.Request, svc *Service, patientsSvc *patients.Service) (ReminderEvent, int) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return ReminderEvent{}, http.StatusUnauthorized
	}

	ev, err := svc.GetByID(r.Context(), chi.URLParam(r, "reminderID"))
	if err != nil {
		return ReminderEvent{}, http.StatusNotFound
	}

	p, err := patientsSvc.GetByID(r.Context(), ev.PatientID)
	if err != nil {
		return ReminderEvent{}, http.StatusNotFound
	}
	if p.OwnerUserID != claims.UserID {
		return ReminderEvent{}, http.StatusForbidden
	}
	return ev, 0
}

func toReminderResponse(ev ReminderEvent) reminderResponse {
	return reminderResponse{
		ID:               ev.ID,
		PatientID:        ev.PatientID,
		DoseDefinitionID: ev.DoseDefinitionID,
		DueDate:          ev.DueDate.Format("2006-01-02"),
		NotifyOn:         ev.NotifyOn.Format("2006-01-02"),
		Sent:             ev.Sent,
		SentAt:           ev.SentAt,
		Title:            ev.Title,
		Message:          ev.Message,
		PetName:          ev.PetName,
		OwnerName:        ev.OwnerName,
		OwnerEmail:       ev.OwnerEmail,
		OwnerPhone:       ev.OwnerPhone,
		CreatedAt:        ev.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
