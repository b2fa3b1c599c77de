package entity

import (
	"strings"

	"github.com/crholidays/voucher-standardizer/constants"
)

// VoucherRecord is the canonical structured representation of one booking.
// JSON keys are the ones the model is asked to produce.
type VoucherRecord struct {
	HotelName             string      `json:"hotel_name"`
	HotelAddress          string      `json:"hotel_address"`
	HotelContact          string      `json:"hotel_contact"`
	ConfirmationNumber    string      `json:"confirmation_number"`
	City                  string      `json:"city"`
	Country               string      `json:"country"`
	LeadGuestName         string      `json:"lead_guest_name"`
	GuestNationality      string      `json:"guest_nationality"`
	NumGuests             string      `json:"num_guests"`
	CheckInDate           string      `json:"check_in_date"`
	CheckOutDate          string      `json:"check_out_date"`
	NumNights             string      `json:"num_nights"`
	Rooms                 []RoomEntry `json:"rooms"`
	SpecialRequests       string      `json:"special_requests"`
	AdditionalInformation []string    `json:"additional_information"`
}

// RoomEntry is one booked room.
type RoomEntry struct {
	RoomCategory      string   `json:"room_category"`
	BedType           string   `json:"bed_type"`
	BreakfastIncluded string   `json:"breakfast_included"` // Yes | No | Not specified
	GuestNames        []string `json:"guest_names"`
	Adults            int      `json:"adults"`
	Children          int      `json:"children"`
}

// Normalized returns a fully shaped copy: placeholders applied, slices non-nil,
// counts clamped to >= 0 and notes sanitized. Applying it twice is a no-op.
func (v VoucherRecord) Normalized() VoucherRecord {
	out := v
	out.HotelName = strings.TrimSpace(v.HotelName)
	out.HotelAddress = strings.TrimSpace(v.HotelAddress)
	out.HotelContact = strings.TrimSpace(v.HotelContact)
	out.City = strings.TrimSpace(v.City)
	out.Country = strings.TrimSpace(v.Country)
	out.LeadGuestName = strings.TrimSpace(v.LeadGuestName)
	out.GuestNationality = strings.TrimSpace(v.GuestNationality)
	out.NumGuests = strings.TrimSpace(v.NumGuests)
	out.CheckInDate = strings.TrimSpace(v.CheckInDate)
	out.CheckOutDate = strings.TrimSpace(v.CheckOutDate)
	out.NumNights = strings.TrimSpace(v.NumNights)
	out.SpecialRequests = strings.TrimSpace(v.SpecialRequests)

	out.ConfirmationNumber = strings.TrimSpace(v.ConfirmationNumber)
	if out.ConfirmationNumber == "" {
		out.ConfirmationNumber = constants.ConfirmationPlaceholder
	}

	out.Rooms = make([]RoomEntry, 0, len(v.Rooms))
	for _, r := range v.Rooms {
		out.Rooms = append(out.Rooms, r.Normalized())
	}
	out.AdditionalInformation = SanitizeStrings(v.AdditionalInformation)
	return out
}

// Normalized returns a fully shaped copy of the room.
func (r RoomEntry) Normalized() RoomEntry {
	out := r
	out.RoomCategory = strings.TrimSpace(r.RoomCategory)
	out.BedType = strings.TrimSpace(r.BedType)
	if out.BedType == "" {
		out.BedType = constants.BedTypePlaceholder
	}
	out.BreakfastIncluded = string(constants.CanonicalBreakfast(r.BreakfastIncluded))

	out.GuestNames = make([]string, 0, len(r.GuestNames))
	for _, g := range r.GuestNames {
		if g = strings.TrimSpace(g); g != "" {
			out.GuestNames = append(out.GuestNames, g)
		}
	}
	if out.Adults < 0 {
		out.Adults = 0
	}
	if out.Children < 0 {
		out.Children = 0
	}
	return out
}

// HasConfirmation reports whether a real confirmation number was found.
func (v VoucherRecord) HasConfirmation() bool {
	c := strings.TrimSpace(v.ConfirmationNumber)
	return c != "" && c != constants.ConfirmationPlaceholder
}
