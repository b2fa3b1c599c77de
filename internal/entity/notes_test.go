package entity

import (
	"reflect"
	"testing"
)

func TestSanitizeNotes(t *testing.T) {
	tests := []struct {
		name  string
		input []any
		want  []string
	}{
		{name: "nil input", input: nil, want: []string{}},
		{name: "empty input", input: []any{}, want: []string{}},
		{
			name:  "drops non-strings and bullet-only entries",
			input: []any{"- ", "", "• Valid note", 42},
			want:  []string{"Valid note"},
		},
		{
			name:  "keeps order",
			input: []any{"b", "  a  ", "c"},
			want:  []string{"b", "a", "c"},
		},
		{
			name:  "strips mixed glyph runs",
			input: []any{"- • Resort fee USD 35 per night •", "— Pets not allowed –"},
			want:  []string{"Resort fee USD 35 per night", "Pets not allowed"},
		},
		{
			name:  "drops nil, maps and numbers",
			input: []any{nil, map[string]any{"a": 1}, 3.5, true, "ok"},
			want:  []string{"ok"},
		},
		{
			name:  "keeps inner dashes",
			input: []any{"Check-in from 15:00 - check-out by 12:00"},
			want:  []string{"Check-in from 15:00 - check-out by 12:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNotes(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeNotes(%#v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNotes_Idempotent(t *testing.T) {
	inputs := [][]any{
		{"- • x", "•-•", " ", " • note ", "— dash — ", 7},
		{"• Deposit of EUR 100 required", "-", "* starred *"},
		{},
	}
	for _, in := range inputs {
		once := SanitizeNotes(in)
		again := make([]any, len(once))
		for i, s := range once {
			again[i] = s
		}
		twice := SanitizeNotes(again)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("not idempotent for %#v: %#v then %#v", in, once, twice)
		}
	}
}

func TestSanitizeStrings_NeverNil(t *testing.T) {
	if got := SanitizeStrings(nil); got == nil || len(got) != 0 {
		t.Fatalf("SanitizeStrings(nil) = %#v, want empty non-nil slice", got)
	}
}
