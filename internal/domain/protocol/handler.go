package protocol

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, c *Catalog) {
	r.Get("/protocol/{species}", listProtocolHandler(c))
}

// doseDefinitionResponse representa una definición del esquema devuelta por la API.
type doseDefinitionResponse struct {
	ID                    string   `json:"id"`
	DisplayName           string   `json:"display_name"`
	Species               Species  `json:"species"`
	Slot                  int      `json:"slot"`
	RequiresAnnualBooster bool     `json:"requires_annual_booster"`
	MinAgeMonths          *int     `json:"min_age_months,omitempty"`
	Replaces              []string `json:"replaces,omitempty"`
	BoosterOf             string   `json:"booster_of,omitempty"`
}

// listProtocolHandler godoc
// @Summary Esquema de vacunación por especie
// @Description Devuelve las definiciones de dosis del esquema de la especie, en orden. Especies sin esquema devuelven lista vacía.
// @Tags protocol
// @Produce json
// @Param species path string true "Especie (dog, cat)"
// @Success 200 {array} doseDefinitionResponse
// @Router /protocol/{species} [get]
func listProtocolHandler(c *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		species := Species(chi.URLParam(r, "species"))

		defs := c.DosesFor(species)
		out := make([]doseDefinitionResponse, 0, len(defs))
		for _, d := range defs {
			out = append(out, toDoseDefinitionResponse(d))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	}
}

func toDoseDefinitionResponse(d DoseDefinition) doseDefinitionResponse {
	return doseDefinitionResponse{
		ID:                    d.ID,
		DisplayName:           d.DisplayName,
		Species:               d.Species,
		Slot:                  d.Slot,
		RequiresAnnualBooster: d.RequiresAnnualBooster,
		MinAgeMonths:          d.MinAgeMonths,
		Replaces:              d.Replaces,
		BoosterOf:             d.BoosterOf,
	}
}
