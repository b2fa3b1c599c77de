package llm

import "github.com/crholidays/voucher-standardizer/constants"

// voucherStringFields are the top-level string keys of a voucher record.
var voucherStringFields = []string{
	"hotel_name", "hotel_address", "hotel_contact", "confirmation_number",
	"city", "country", "lead_guest_name", "guest_nationality", "num_guests",
	"check_in_date", "check_out_date", "num_nights", "special_requests",
}

var roomStringFields = []string{"room_category", "bed_type", "breakfast_included"}

// BuildVoucherJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is applied to the model output after NormalizeVoucherJSON, so every key is required.
func BuildVoucherJSONSchema() map[string]any {
	props := map[string]any{}
	for _, k := range voucherStringFields {
		props[k] = map[string]any{"type": "string"}
	}
	props["confirmation_number"] = map[string]any{"type": "string", "minLength": 1}
	props["rooms"] = map[string]any{
		"type":  "array",
		"items": roomSchema(),
	}
	props["additional_information"] = map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	}

	required := append([]string{}, voucherStringFields...)
	required = append(required, "rooms", "additional_information")

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func roomSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"room_category":      map[string]any{"type": "string"},
			"bed_type":           map[string]any{"type": "string", "minLength": 1},
			"breakfast_included": map[string]any{"type": "string", "enum": constants.BreakfastValues()},
			"guest_names":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"adults":             countProp(),
			"children":           countProp(),
		},
		"required": []string{"room_category", "bed_type", "breakfast_included", "guest_names", "adults", "children"},
	}
}

func countProp() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}
