package mapper

import (
	"strconv"

	"github.com/pyro2927/ha-generac/internal/types"
)

// PropertyValue scans the flat property list for the first candidate type
// code that has an entry, in candidate order, and returns its numeric value.
// Values arrive as JSON numbers on newer endpoints and as strings on older
// ones. The second return is false when no candidate matched or the matched
// value was not numeric.
func PropertyValue(props []types.Property, codes []int) (float64, bool) {
	for _, code := range codes {
		for _, p := range props {
			if p.Type != code {
				continue
			}
			switch v := p.Value.(type) {
			case float64:
				return v, true
			case string:
				parsed, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return 0, false
				}
				return parsed, true
			default:
				return 0, false
			}
		}
	}
	return 0, false
}

// PropertyValueOrDefault is PropertyValue with an explicit default for the
// no-match case.
func PropertyValueOrDefault(props []types.Property, codes []int, def float64) float64 {
	if v, ok := PropertyValue(props, codes); ok {
		return v
	}
	return def
}
