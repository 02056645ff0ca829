// Package mapper projects raw apparatus records onto display values: property
// lookups by type code, status label mapping and timestamp parsing.
package mapper

// Property type codes for the detail record's property list. The codes moved
// between API generations, so each lookup carries an ordered candidate list,
// newest generation first.
var (
	EngineHoursCodes     = []int{71, 70} // v5, then v2
	ProtectionHoursCodes = []int{32, 31}
	BatteryVoltageCodes  = []int{70, 69}
	ExerciseMinutesCodes = []int{95} // v5 only
	FuelTypeCodes        = []int{88} // v5 only
)

// Prometheus label names shared by the collector.
const (
	LabelGeneratorID = "generator_id"
	LabelName        = "name"
	LabelModel       = "model"
	LabelStatus      = "status"
	LabelFuel        = "fuel"
)

// StatusOptions are the portal's apparatus status names, indexed by
// apparatusStatus - 1. The last entry is the fallback for unknown codes.
var StatusOptions = []string{
	"Ready",
	"Running",
	"Exercising",
	"Warning",
	"Stopped",
	"Communication Issue",
	"Unknown",
}

const (
	FuelNaturalGas = "Natural Gas"
	FuelPropane    = "Propane"
	FuelUnknown    = "Unknown"
)
