package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vet-vaccination-tracker/internal/platform/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(Options{Log: logger.Nop()}))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON arma la request con el header de auth de dev y decodifica la
// respuesta en out (si out != nil).
func doJSON(t *testing.T, srv *httptest.Server, method, path, userID string, body any, out any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp
}

func createTestPatient(t *testing.T, srv *httptest.Server, userID, species string) string {
	t.Helper()

	birth := time.Now().AddDate(0, -2, 0).Format("2006-01-02")
	var created struct {
		ID string `json:"id"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/patients", userID, map[string]any{
		"name":        "Rocky",
		"species":     species,
		"breed":       "mestizo",
		"sex":         "male",
		"birth_date":  birth,
		"owner_name":  "Ana",
		"owner_email": "ana@example.com",
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("crear paciente: status %d", resp.StatusCode)
	}
	if created.ID == "" {
		t.Fatal("paciente sin id")
	}
	return created.ID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/patients", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("sin auth esperaba 401, fue %d", resp.StatusCode)
	}
}

func TestProtocolEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var defs []map[string]any
	resp := doJSON(t, srv, http.MethodGet, "/protocol/dog", "u1", nil, &defs)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(defs) != 7 {
		t.Fatalf("esquema canino: esperaba 7 definiciones, hubo %d", len(defs))
	}

	var empty []map[string]any
	doJSON(t, srv, http.MethodGet, "/protocol/rabbit", "u1", nil, &empty)
	if len(empty) != 0 {
		t.Fatalf("especie sin esquema debe devolver lista vacía, hubo %d", len(empty))
	}
}

func TestOwnershipEnforced(t *testing.T) {
	srv := newTestServer(t)
	patientID := createTestPatient(t, srv, "u1", "dog")

	resp := doJSON(t, srv, http.MethodGet, "/patients/"+patientID, "u2", nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("otro usuario esperaba 403, fue %d", resp.StatusCode)
	}
}

func TestPrecheckEndpoint(t *testing.T) {
	srv := newTestServer(t)
	patientID := createTestPatient(t, srv, "u1", "dog")

	var out struct {
		AgeGate struct {
			Allowed  bool   `json:"allowed"`
			EdgeCase bool   `json:"edge_case"`
			Warning  string `json:"warning"`
		} `json:"age_gate"`
		MissingPrior []struct {
			ID   string `json:"id"`
			Slot int    `json:"slot"`
		} `json:"missing_prior"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/patients/"+patientID+"/doses/precheck?dose_definition_id=rabia", "u1", nil, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// Cachorro de 2 meses contra una vacuna de 5+: advierte pero permite.
	if !out.AgeGate.Allowed {
		t.Error("el age gate nunca bloquea")
	}
	if !out.AgeGate.EdgeCase || out.AgeGate.Warning == "" {
		t.Errorf("esperaba edge case con advertencia: %+v", out.AgeGate)
	}
	if len(out.MissingPrior) == 0 || out.MissingPrior[0].ID != "puppy" {
		t.Fatalf("missing_prior incorrecto: %+v", out.MissingPrior)
	}
	for i := 1; i < len(out.MissingPrior); i++ {
		if out.MissingPrior[i].Slot < out.MissingPrior[i-1].Slot {
			t.Fatal("missing_prior fuera de orden")
		}
	}
}

func TestApplyDosePipeline(t *testing.T) {
	srv := newTestServer(t)
	patientID := createTestPatient(t, srv, "u1", "dog")

	var out struct {
		Dose struct {
			ID        string `json:"id"`
			AppliedOn string `json:"applied_on"`
		} `json:"dose"`
		Snapshot struct {
			CompletedSlots int  `json:"completed_slots"`
			TotalSlots     int  `json:"total_slots"`
			Percentage     int  `json:"percentage"`
			IsComplete     bool `json:"is_complete"`
		} `json:"snapshot"`
		ReminderIDs []string `json:"reminder_ids"`
	}
	resp := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/patients/%s/doses", patientID), "u1", map[string]any{
		"dose_definition_id": "puppy",
		"applied_on":         "2026-01-10",
	}, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if out.Dose.ID == "" || out.Dose.AppliedOn != "2026-01-10" {
		t.Fatalf("dosis incorrecta: %+v", out.Dose)
	}
	if out.Snapshot.CompletedSlots != 1 || out.Snapshot.TotalSlots != 6 {
		t.Fatalf("snapshot = %+v", out.Snapshot)
	}
	if out.Snapshot.Percentage != 17 {
		t.Errorf("percentage = %d, esperaba 17", out.Snapshot.Percentage)
	}
	if out.Snapshot.IsComplete {
		t.Error("un slot de seis no completa el esquema")
	}
	if len(out.ReminderIDs) != 1 {
		t.Fatalf("esperaba 1 recordatorio, hubo %d", len(out.ReminderIDs))
	}

	// El recordatorio creado apunta a la siguiente dosis, a 14 días.
	var reminders []struct {
		ID               string `json:"id"`
		DoseDefinitionID string `json:"dose_definition_id"`
		DueDate          string `json:"due_date"`
		NotifyOn         string `json:"notify_on"`
		Sent             bool   `json:"sent"`
	}
	doJSON(t, srv, http.MethodGet, "/patients/"+patientID+"/reminders", "u1", nil, &reminders)
	if len(reminders) != 1 {
		t.Fatalf("esperaba 1 recordatorio listado, hubo %d", len(reminders))
	}
	rem := reminders[0]
	if rem.DoseDefinitionID != "puppy-extra" {
		t.Errorf("target = %s, esperaba puppy-extra", rem.DoseDefinitionID)
	}
	if rem.DueDate != "2026-01-24" || rem.NotifyOn != "2026-01-19" {
		t.Errorf("fechas = %s / %s", rem.DueDate, rem.NotifyOn)
	}
	if rem.Sent {
		t.Error("recién creado no puede estar enviado")
	}

	// Compliance coincide con lo devuelto por el pipeline.
	var comp struct {
		Snapshot struct {
			Percentage int `json:"percentage"`
		} `json:"snapshot"`
		NextSuggested *struct {
			ID string `json:"id"`
		} `json:"next_suggested"`
	}
	doJSON(t, srv, http.MethodGet, "/patients/"+patientID+"/compliance", "u1", nil, &comp)
	if comp.Snapshot.Percentage != 17 {
		t.Errorf("compliance percentage = %d", comp.Snapshot.Percentage)
	}
	if comp.NextSuggested == nil || comp.NextSuggested.ID != "puppy-extra" {
		t.Fatalf("next_suggested = %+v", comp.NextSuggested)
	}

	// Borrado explícito del recordatorio.
	resp = doJSON(t, srv, http.MethodDelete, "/reminders/"+rem.ID, "u1", nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	doJSON(t, srv, http.MethodGet, "/patients/"+patientID+"/reminders", "u1", nil, &reminders)
	if len(reminders) != 0 {
		t.Fatalf("el recordatorio debía desaparecer, quedan %d", len(reminders))
	}
}

func TestComplianceUnknownSpecies(t *testing.T) {
	srv := newTestServer(t)
	patientID := createTestPatient(t, srv, "u1", "rabbit")

	var comp struct {
		Snapshot struct {
			TotalSlots int  `json:"total_slots"`
			Percentage int  `json:"percentage"`
			IsComplete bool `json:"is_complete"`
		} `json:"snapshot"`
		NextSuggested *struct {
			ID string `json:"id"`
		} `json:"next_suggested"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/patients/"+patientID+"/compliance", "u1", nil, &comp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if comp.Snapshot.TotalSlots != 0 || comp.Snapshot.Percentage != 0 || comp.Snapshot.IsComplete {
		t.Fatalf("especie sin esquema: snapshot = %+v", comp.Snapshot)
	}
	if comp.NextSuggested != nil {
		t.Fatalf("no debería sugerir dosis: %+v", comp.NextSuggested)
	}
}

func TestDispatchPendingWithoutNotifier(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/reminders/dispatch-pending", "u1", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("sin notificador esperaba 503, fue %d", resp.StatusCode)
	}
}
