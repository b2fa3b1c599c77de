package constants

import "strings"

// Placeholders the model is instructed to use and the normalizer enforces.
const (
	ConfirmationPlaceholder = "To be confirmed"
	BedTypePlaceholder      = "Bed type assigned at check-in"
)

// Breakfast is the tri-state value of RoomEntry.BreakfastIncluded.
type Breakfast string

const (
	BreakfastYes          Breakfast = "Yes"
	BreakfastNo           Breakfast = "No"
	BreakfastNotSpecified Breakfast = "Not specified"
)

var allBreakfast = []Breakfast{BreakfastYes, BreakfastNo, BreakfastNotSpecified}

// BreakfastValues returns the allowed breakfast strings in schema order.
func BreakfastValues() []string {
	out := make([]string, len(allBreakfast))
	for i, b := range allBreakfast {
		out[i] = string(b)
	}
	return out
}

// CanonicalBreakfast maps loose model output onto the tri-state.
// Unknown values resolve to BreakfastNotSpecified.
func CanonicalBreakfast(input string) Breakfast {
	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Breakfast{
		"yes":           BreakfastYes,
		"y":             BreakfastYes,
		"true":          BreakfastYes,
		"included":      BreakfastYes,
		"no":            BreakfastNo,
		"n":             BreakfastNo,
		"false":         BreakfastNo,
		"not included":  BreakfastNo,
		"room only":     BreakfastNo,
		"not specified": BreakfastNotSpecified,
	}
	if b, ok := synonyms[normalized]; ok {
		return b
	}
	return BreakfastNotSpecified
}
