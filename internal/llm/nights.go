package llm

import (
	"strings"
	"time"
)

// date layouts that are unambiguous about day/month order
var stayDateLayouts = []string{
	"2006-01-02",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Mon, 02 Jan 2006",
	"Monday, 02 January 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

// ComputeNights returns the number of nights between two stay dates. It
// reports false when either date does not parse or check-out is not after check-in.
func ComputeNights(checkIn, checkOut string) (int, bool) {
	in, ok := parseStayDate(checkIn)
	if !ok {
		return 0, false
	}
	out, ok := parseStayDate(checkOut)
	if !ok {
		return 0, false
	}
	nights := int(out.Sub(in).Hours() / 24)
	if nights <= 0 {
		return 0, false
	}
	return nights, true
}

func parseStayDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range stayDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
