package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/entity"
)

// StripCodeFence removes a leading ```json (or bare ```) fence and a trailing ``` fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeVoucherJSON shapes a decoded model answer into a document that
// satisfies BuildVoucherJSONSchema:
// - Fills missing keys with empty values and placeholders
// - Coerces numbers to strings for string fields and numeric strings to counts
// - Flattens objects and arrays given for string fields into their scalar values
// - Sanitizes additional_information, dropping non-string notes
// - Removes unknown keys (strict additionalProperties = false friendliness)
//
// It returns the re-encoded document and a list of the adjustments made.
func NormalizeVoucherJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("normalize: decode: %w", err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("normalize: document is null")
	}

	changed := make([]string, 0, 8)
	out := make(map[string]any, len(voucherStringFields)+2)

	for _, k := range voucherStringFields {
		s, note := coerceString(m[k])
		if note != "" {
			changed = append(changed, k+"("+note+")")
		}
		out[k] = s
	}
	if out["confirmation_number"] == "" {
		out["confirmation_number"] = constants.ConfirmationPlaceholder
	}
	if out["num_nights"] == "" {
		if n, ok := ComputeNights(out["check_in_date"].(string), out["check_out_date"].(string)); ok {
			out["num_nights"] = strconv.Itoa(n)
			changed = append(changed, "num_nights(computed)")
		}
	}

	rooms := make([]any, 0)
	switch t := m["rooms"].(type) {
	case []any:
		for i, r := range t {
			room, ok := r.(map[string]any)
			if !ok {
				changed = append(changed, fmt.Sprintf("rooms[%d](type)", i))
				continue
			}
			rooms = append(rooms, normalizeRoom(room))
		}
	case map[string]any:
		rooms = append(rooms, normalizeRoom(t))
		changed = append(changed, "rooms(object)")
	case nil:
	default:
		changed = append(changed, "rooms(type)")
	}
	out["rooms"] = rooms

	var notes []any
	switch t := m["additional_information"].(type) {
	case []any:
		notes = t
	case string:
		notes = []any{t}
		changed = append(changed, "additional_information(string)")
	}
	clean := entity.SanitizeNotes(notes)
	if len(clean) != len(notes) {
		changed = append(changed, fmt.Sprintf("additional_information(dropped %d)", len(notes)-len(clean)))
	}
	out["additional_information"] = clean

	for k := range m {
		if _, ok := out[k]; !ok {
			changed = append(changed, k+"(unknown)")
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, changed, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Debug("llm.extract.normalize", "changed", changed)
	}
	return b, changed, nil
}

func normalizeRoom(m map[string]any) map[string]any {
	out := make(map[string]any, 6)
	for _, k := range roomStringFields {
		s, _ := coerceString(m[k])
		out[k] = s
	}
	if out["bed_type"] == "" {
		out["bed_type"] = constants.BedTypePlaceholder
	}
	out["breakfast_included"] = string(constants.CanonicalBreakfast(out["breakfast_included"].(string)))

	names := make([]string, 0)
	switch t := m["guest_names"].(type) {
	case []any:
		for _, n := range t {
			if s, ok := n.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					names = append(names, s)
				}
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			names = append(names, s)
		}
	}
	out["guest_names"] = names
	out["adults"] = coerceCount(m["adults"])
	out["children"] = coerceCount(m["children"])
	return out
}

// coerceString returns the string form of a scalar and a short note when the
// value was not already a string.
func coerceString(v any) (string, string) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), ""
	case nil:
		return "", ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), "number"
	case bool:
		return strconv.FormatBool(t), "bool"
	case map[string]any, []any:
		return strings.Join(scalarLeaves(t), ", "), "flattened"
	default:
		return "", "type"
	}
}

// scalarLeaves collects the non-blank scalar values under v in document
// order; object keys are visited sorted.
func scalarLeaves(v any) []string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, scalarLeaves(t[k])...)
		}
		return out
	case []any:
		var out []string
		for _, e := range t {
			out = append(out, scalarLeaves(e)...)
		}
		return out
	default:
		if s, _ := coerceString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

// coerceCount maps a count to a non-negative integer; anything unparseable is 0.
func coerceCount(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
