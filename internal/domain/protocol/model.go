package protocol

// Species define las especies con esquema de vacunación predefinido.
// @Enum dog, cat
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// DoseDefinition describe una dosis dentro del esquema de vacunación de una especie.
// Es configuración estática: se carga una vez al armar el Catalog y no cambia en runtime.
type DoseDefinition struct {
	ID          string
	DisplayName string
	Species     Species

	// Slot es el checkpoint ordenado del esquema (1..N, contiguo por especie).
	// Varias definiciones pueden compartir slot como alternativas excluyentes
	// (ej: polivalente vs polivalente-rabia).
	Slot int

	RequiresAnnualBooster bool

	// MinAgeMonths es la edad mínima sugerida en meses. nil = sin restricción.
	MinAgeMonths *int

	// Replaces lista IDs de dosis que esta dosis satisface al aplicarse
	// (vacunas combinadas: polivalente-rabia cubre el slot de rabia).
	Replaces []string

	// BoosterOf marca esta dosis como refuerzo inmediato de otra dentro del
	// esquema inicial. Distinto del refuerzo anual.
	BoosterOf string
}

// HasMinAge indica si la definición tiene umbral de edad configurado.
func (d DoseDefinition) HasMinAge() bool {
	return d.MinAgeMonths != nil
}
