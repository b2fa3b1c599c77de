package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate     = regexp.MustCompile(`\b\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}\b|\b\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
	reStayWord = regexp.MustCompile(`\bcheck[\s-]?(in|out)\b|\bnights?\b|\barrival\b|\bdeparture\b`)
	reHotel    = regexp.MustCompile(`\bhotel\b|\bresort\b|\broom\b|\bguest\b|\bvoucher\b`)
)

// naive heuristic confidence that the text is a usable hotel voucher
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reStayWord.MatchString(txtL) {
		score += 0.2
	}
	if reHotel.MatchString(txtL) {
		score += 0.2
	}
	if len(txt) > 200 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
