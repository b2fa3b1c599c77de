package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/common"
)

// fakeModel serves chat/completions and answers with content, recording the last request.
type fakeModel struct {
	content string
	status  int
	calls   atomic.Int32
	lastReq chatRequest
	auth    string
}

func (f *fakeModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	f.auth = r.Header.Get("Authorization")
	_ = json.NewDecoder(r.Body).Decode(&f.lastReq)
	if f.status != 0 {
		http.Error(w, `{"error":{"message":"boom"}}`, f.status)
		return
	}
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": f.content}},
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, model *fakeModel, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(model)
	t.Cleanup(srv.Close)
	c := NewClient(Config{APIKey: apiKey, BaseURL: srv.URL + "/v1"}, nil)
	c.getenv = func(string) string { return "" }
	return c
}

func answer(confirmation string) string {
	return `{
		"hotel_name": "Hotel Alpha",
		"hotel_address": "",
		"hotel_contact": "",
		"confirmation_number": "` + confirmation + `",
		"city": "Lisbon",
		"country": "Portugal",
		"lead_guest_name": "Jane Doe",
		"guest_nationality": "British",
		"num_guests": "2",
		"check_in_date": "2024-05-01",
		"check_out_date": "2024-05-04",
		"num_nights": "3",
		"rooms": [{"room_category": "Deluxe Double", "bed_type": "", "breakfast_included": "Yes", "guest_names": ["Jane Doe", "John Doe"], "adults": 2, "children": 0}],
		"special_requests": "",
		"additional_information": ["• Check-in from 15:00", "- ", "City tax payable at hotel"]
	}`
}

func TestExtractVoucher_ConfirmationFixtures(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		modelSays string
		want      string
		confirmed bool
	}{
		{"explicit label", "Hotel Alpha\nHotel Confirmation Number: ABC123", "ABC123", "ABC123", true},
		{"generic booking id", "Hotel Alpha\nBooking ID: REZ68272DD2", constants.ConfirmationPlaceholder, constants.ConfirmationPlaceholder, false},
		{"blank answer", "Hotel Alpha", "", constants.ConfirmationPlaceholder, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{content: answer(tt.modelSays)}
			c := newTestClient(t, model, "sk-test")

			rec, raw, err := c.ExtractVoucher(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("ExtractVoucher: %v", err)
			}
			if rec.ConfirmationNumber != tt.want {
				t.Errorf("confirmation_number = %q, want %q", rec.ConfirmationNumber, tt.want)
			}
			if rec.HasConfirmation() != tt.confirmed {
				t.Errorf("HasConfirmation = %v, want %v", rec.HasConfirmation(), tt.confirmed)
			}
			if len(raw) == 0 {
				t.Error("raw JSON not returned")
			}

			// request shape
			if model.lastReq.Model != "gpt-4o-mini" || model.lastReq.Temperature != 0 {
				t.Errorf("model=%q temperature=%v", model.lastReq.Model, model.lastReq.Temperature)
			}
			if model.lastReq.ResponseFormat["type"] != "json_object" {
				t.Errorf("response_format = %v", model.lastReq.ResponseFormat)
			}
			if len(model.lastReq.Messages) != 1 || !strings.HasSuffix(model.lastReq.Messages[0].Content, tt.text) {
				t.Errorf("prompt must be a single user message ending with the raw text")
			}
			if model.auth != "Bearer sk-test" {
				t.Errorf("Authorization = %q", model.auth)
			}
		})
	}
}

func TestExtractVoucher_ShapesRecord(t *testing.T) {
	model := &fakeModel{content: "```json\n" + answer("ABC123") + "\n```"}
	c := newTestClient(t, model, "sk-test")

	rec, _, err := c.ExtractVoucher(context.Background(), "text")
	if err != nil {
		t.Fatalf("ExtractVoucher: %v", err)
	}
	if rec.HotelName != "Hotel Alpha" || rec.NumNights != "3" {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Rooms) != 1 {
		t.Fatalf("rooms = %d", len(rec.Rooms))
	}
	room := rec.Rooms[0]
	if room.BedType != constants.BedTypePlaceholder {
		t.Errorf("bed_type = %q", room.BedType)
	}
	if len(room.GuestNames) != 2 || room.Adults != 2 {
		t.Errorf("room = %+v", room)
	}
	want := []string{"Check-in from 15:00", "City tax payable at hotel"}
	if strings.Join(rec.AdditionalInformation, "|") != strings.Join(want, "|") {
		t.Errorf("notes = %q, want %q", rec.AdditionalInformation, want)
	}
}

func TestExtractVoucher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		model   *fakeModel
		apiKey  string
		want    error
		wantRaw bool
		calls   int32
	}{
		{"missing api key", &fakeModel{content: answer("X")}, "", common.ErrMissingConfig, false, 0},
		{"malformed json", &fakeModel{content: "Sure! Here is the JSON: {hotel"}, "sk", common.ErrMalformedOutput, true, 1},
		{"json array", &fakeModel{content: `["hotel"]`}, "sk", common.ErrMalformedOutput, true, 1},
		{"server error", &fakeModel{status: http.StatusInternalServerError}, "sk", common.ErrModelCall, false, 1},
		{"unauthorized", &fakeModel{status: http.StatusUnauthorized}, "sk", common.ErrModelCall, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.model, tt.apiKey)

			rec, raw, err := c.ExtractVoucher(context.Background(), "Hotel Alpha")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var appErr *common.AppError
			if !errors.As(err, &appErr) {
				t.Errorf("err %T is not an AppError", err)
			}
			if rec.HotelName != "" || rec.Rooms != nil {
				t.Errorf("no record expected on failure, got %+v", rec)
			}
			if (len(raw) > 0) != tt.wantRaw {
				t.Errorf("raw = %q, wantRaw %v", raw, tt.wantRaw)
			}
			if got := tt.model.calls.Load(); got != tt.calls {
				t.Errorf("model calls = %d, want %d (no retries)", got, tt.calls)
			}
		})
	}
}

func TestExtractVoucher_APIKeyFromEnvironment(t *testing.T) {
	model := &fakeModel{content: answer("ABC123")}
	c := newTestClient(t, model, "")
	c.getenv = func(k string) string {
		if k == "OPENAI_API_KEY" {
			return "sk-env"
		}
		return ""
	}

	if !c.APIKeyConfigured() {
		t.Fatal("APIKeyConfigured = false with env key")
	}
	if _, _, err := c.ExtractVoucher(context.Background(), "text"); err != nil {
		t.Fatalf("ExtractVoucher: %v", err)
	}
	if model.auth != "Bearer sk-env" {
		t.Errorf("Authorization = %q", model.auth)
	}
}
