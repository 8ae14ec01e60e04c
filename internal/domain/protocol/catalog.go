package protocol

import "sort"

// Catalog es el catálogo de esquemas de vacunación por especie.
// Se construye una vez (configuración) y se inyecta en evaluator/scheduler;
// no hay estado global ni recarga en caliente.
type Catalog struct {
	bySpecies map[Species][]DoseDefinition
	byID      map[string]DoseDefinition
}

// NewCatalog indexa las definiciones recibidas.
// El orden de entrada por especie se preserva (es el orden del esquema).
func NewCatalog(defs []DoseDefinition) *Catalog {
	c := &Catalog{
		bySpecies: make(map[Species][]DoseDefinition),
		byID:      make(map[string]DoseDefinition),
	}
	for _, d := range defs {
		c.bySpecies[d.Species] = append(c.bySpecies[d.Species], d)
		c.byID[d.ID] = d
	}
	return c
}

// DosesFor devuelve las definiciones de la especie en orden de esquema.
// Especies fuera del catálogo devuelven lista vacía (no es error).
func (c *Catalog) DosesFor(species Species) []DoseDefinition {
	return c.bySpecies[species]
}

// Resolve busca una definición por ID.
func (c *Catalog) Resolve(id string) (DoseDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Slots devuelve los números de slot distintos de la especie, ascendente.
func (c *Catalog) Slots(species Species) []int {
	seen := make(map[int]bool)
	out := make([]int, 0)
	for _, d := range c.bySpecies[species] {
		if !seen[d.Slot] {
			seen[d.Slot] = true
			out = append(out, d.Slot)
		}
	}
	sort.Ints(out)
	return out
}

// InSlot devuelve las definiciones que ocupan un slot, en orden de catálogo.
func (c *Catalog) InSlot(species Species, slot int) []DoseDefinition {
	out := make([]DoseDefinition, 0, 2)
	for _, d := range c.bySpecies[species] {
		if d.Slot == slot {
			out = append(out, d)
		}
	}
	return out
}

func minAge(months int) *int {
	return &months
}

// Default arma el catálogo estándar de la clínica (perros y gatos).
func Default() *Catalog {
	return NewCatalog([]DoseDefinition{
		// Perros: orden estricto del esquema inicial.
		{ID: "puppy", DisplayName: "Puppy", Species: SpeciesDog, Slot: 1},
		{ID: "puppy-extra", DisplayName: "Puppy Extra", Species: SpeciesDog, Slot: 2},
		{ID: "polivalente", DisplayName: "Polivalente", Species: SpeciesDog, Slot: 3, RequiresAnnualBooster: true},
		// Alternativa del slot 3: cubre también el slot de rabia.
		{ID: "polivalente-rabia", DisplayName: "Polivalente con Rabia", Species: SpeciesDog, Slot: 3, RequiresAnnualBooster: true, MinAgeMonths: minAge(5), Replaces: []string{"rabia"}},
		{ID: "bordetella", DisplayName: "Bordetella", Species: SpeciesDog, Slot: 4, RequiresAnnualBooster: true},
		{ID: "gardia", DisplayName: "Gardia", Species: SpeciesDog, Slot: 5, RequiresAnnualBooster: true},
		{ID: "rabia", DisplayName: "Rabia", Species: SpeciesDog, Slot: 6, MinAgeMonths: minAge(5)},

		// Gatos: el refuerzo de triple felina es parte del esquema inicial,
		// no se repite anualmente.
		{ID: "triple-felina", DisplayName: "Triple Felina", Species: SpeciesCat, Slot: 1, RequiresAnnualBooster: true},
		{ID: "refuerzo-triple-felina", DisplayName: "Refuerzo Triple Felina", Species: SpeciesCat, Slot: 2, BoosterOf: "triple-felina"},
		{ID: "rabia-gato", DisplayName: "Rabia", Species: SpeciesCat, Slot: 3, RequiresAnnualBooster: true, MinAgeMonths: minAge(5)},
		{ID: "leucemia", DisplayName: "Leucemia", Species: SpeciesCat, Slot: 4, RequiresAnnualBooster: true},
	})
}
