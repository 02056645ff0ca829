package mapper

import (
	"strings"

	"github.com/pyro2927/ha-generac/internal/types"
)

// StatusLabel maps the numeric apparatusStatus onto its display name. A nil
// or out-of-range status maps to the trailing "Unknown" entry.
func StatusLabel(status *int) string {
	if status == nil {
		return StatusOptions[len(StatusOptions)-1]
	}
	idx := *status - 1
	if idx < 0 || idx > len(StatusOptions)-1 {
		idx = len(StatusOptions) - 1
	}
	return StatusOptions[idx]
}

// NetworkTypeLabel maps the detail record's deviceType onto a display name.
func NetworkTypeLabel(deviceType string) string {
	switch strings.ToLower(deviceType) {
	case "wifi":
		return "Wifi"
	case "eth":
		return "Ethernet"
	case "lte", "cdma":
		return "MobileData"
	default:
		return "Unknown"
	}
}

// FuelTypeLabel resolves the fuel type property (code 88) onto a display name.
func FuelTypeLabel(props []types.Property) string {
	switch int(PropertyValueOrDefault(props, FuelTypeCodes, 0)) {
	case 1:
		return FuelNaturalGas
	case 2:
		return FuelPropane
	default:
		return FuelUnknown
	}
}

// OutdoorTemperatureCelsius extracts the optional weather temperature,
// normalized to Celsius.
func OutdoorTemperatureCelsius(w *types.Weather) (float64, bool) {
	if w == nil || w.Temperature == nil || w.Temperature.Value == nil {
		return 0, false
	}
	v := *w.Temperature.Value
	if strings.Contains(strings.ToLower(w.Temperature.Unit), "f") {
		v = (v - 32) * 5 / 9
	}
	return v, true
}
