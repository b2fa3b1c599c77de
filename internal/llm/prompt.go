package llm

import (
	"strings"

	"github.com/crholidays/voucher-standardizer/constants"
)

// voucherSkeleton is the exact JSON shape the model must fill in.
const voucherSkeleton = `{
    "hotel_name": "",
    "hotel_address": "",
    "hotel_contact": "",
    "confirmation_number": "",
    "city": "",
    "country": "",
    "lead_guest_name": "",
    "guest_nationality": "",
    "num_guests": "",
    "check_in_date": "",
    "check_out_date": "",
    "num_nights": "",
    "rooms": [
        {
            "room_category": "",
            "bed_type": "",
            "breakfast_included": "",
            "guest_names": [],
            "adults": 0,
            "children": 0
        }
    ],
    "special_requests": "",
    "additional_information": []
}`

// explicit labels that make a value a hotel confirmation number
var confirmationLabels = []string{
	"Hotel Confirmation Number",
	"Hotel Conf Number",
	"HCN",
	"Hotel Confirmation",
	"Confirmation Code",
	"Hotel Reference Number",
}

// noteTopics lists what belongs in additional_information.
var noteTopics = []string{
	"Check-in/Check-out policies and specific timings",
	"Mandatory fees (deposits, destination fees, resort fees, etc.)",
	"Optional services and their costs (parking, breakfast, etc.)",
	"Age requirements and restrictions",
	"Pet policies and fees",
	"Special booking conditions and policies",
	"Important notes about the property or booking",
	"Any other relevant information guests should know",
}

// BuildVoucherPrompt composes the single user message sent to the model:
// the JSON skeleton, the extraction rules, then the raw voucher text.
func BuildVoucherPrompt(text string) string {
	labels := quoteAll(confirmationLabels)
	labelList := strings.Join(labels[:len(labels)-1], ", ") + ", or " + labels[len(labels)-1]

	var b strings.Builder
	b.WriteString("Extract hotel voucher information from the following text and return it as JSON with these exact fields:\n\n")
	b.WriteString(voucherSkeleton)
	b.WriteString("\n\nInstructions:\n")

	rules := []string{
		"For confirmation_number: ONLY extract if you find explicit terms like " + labelList +
			". If you only find booking IDs, reference numbers, or other generic IDs (like \"REZ68272DD2\"), use \"" +
			constants.ConfirmationPlaceholder + "\" instead",
		"Use \"" + constants.BedTypePlaceholder + "\" for bed_type if not specified",
		"For breakfast_included, use " + breakfastList(),
		"Leave hotel_address and hotel_contact blank if not in document",
		"Extract all guest names if multiple are present",
		"Calculate num_nights from check-in and check-out dates if not explicitly stated",
		"For additional_information, extract important details as an array of strings including:",
	}
	for _, r := range rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	for _, t := range noteTopics {
		b.WriteString("  * ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString("- Exclude generic boilerplate text and agent disclaimers\n")
	b.WriteString("- Format each item as a clear, concise bullet point\n")
	b.WriteString("- Return only valid JSON, no additional text\n")
	b.WriteString("\nText to extract from:\n")
	b.WriteString(text)
	return b.String()
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = `"` + s + `"`
	}
	return out
}

// breakfastList renders `"Yes", "No", or "Not specified"`.
func breakfastList() string {
	q := quoteAll(constants.BreakfastValues())
	return strings.Join(q[:len(q)-1], ", ") + ", or " + q[len(q)-1]
}
