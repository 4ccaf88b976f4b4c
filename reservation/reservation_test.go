package reservation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func validReservation() *Reservation {
	return &Reservation{
		ID:         7,
		BookingRef: FormatBookingRef(7),
		Status:     StatusConfirmed,
		Rooms: []RoomStay{{
			RoomNumber: "101",
			Status:     StatusConfirmed,
			Checkin:    day("2024-01-10"),
			Checkout:   day("2024-01-12"),
		}},
	}
}

func TestValidate_AcceptsWellFormedReservation(t *testing.T) {
	if err := Validate(validReservation()); err != nil {
		t.Fatalf("expected valid reservation, got %v", err)
	}
}

func TestValidate_ReportsStructuralProblems(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *Reservation)
		want   string
	}{
		{"missing id", func(r *Reservation) { r.ID = 0 }, "id is required"},
		{"missing booking ref", func(r *Reservation) { r.BookingRef = "" }, "bookingRef is required"},
		{"no rooms", func(r *Reservation) { r.Rooms = []RoomStay{} }, "rooms needs at least 1"},
		{"nil rooms", func(r *Reservation) { r.Rooms = nil }, "rooms is required"},
		{"inverted dates", func(r *Reservation) { r.Rooms[0].Checkout = day("2024-01-09") }, "rooms[0].checkout must be after checkin"},
		{"same day", func(r *Reservation) { r.Rooms[0].Checkout = r.Rooms[0].Checkin }, "rooms[0].checkout must be after checkin"},
		{"same day, later hour", func(r *Reservation) {
			r.Rooms[0].Checkin = day("2024-01-10").Add(10 * time.Hour)
			r.Rooms[0].Checkout = day("2024-01-10").Add(15 * time.Hour)
		}, "rooms[0].checkout must be after checkin"},
		{"missing checkin", func(r *Reservation) { r.Rooms[0].Checkin = time.Time{} }, "rooms[0].checkin is required"},
		{"unknown status", func(r *Reservation) { r.Rooms[0].Status = "tentative" }, "unknown status"},
	}
	for _, tc := range cases {
		r := validReservation()
		tc.mutate(r)
		err := Validate(r)
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %T", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in %q", tc.name, tc.want, err.Error())
		}
	}
}

func TestNormalize_FillsEmptyLists(t *testing.T) {
	r := validReservation()
	r.Normalize()
	if r.Extras == nil || r.Payments == nil || r.Invoices == nil || r.ActivityLog == nil || r.Reminders == nil {
		t.Fatalf("expected every list to be non-nil after Normalize: %+v", r)
	}
	if r.Rooms[0].Guests == nil {
		t.Fatalf("expected guests list to be non-nil")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	expiry := day("2024-01-01")
	invoice := "INV-1"
	r := validReservation()
	r.OptionExpiry = &expiry
	r.Rooms[0].NightPrices = []NightPrice{{Date: day("2024-01-10"), Amount: decimal.NewFromInt(90)}}
	r.Payments = []Payment{{ID: 1, Amount: decimal.NewFromInt(10), LinkedInvoice: &invoice}}

	c := r.Clone()
	c.Rooms[0].RoomNumber = "202"
	c.Rooms[0].NightPrices[0].Amount = decimal.NewFromInt(1)
	*c.OptionExpiry = day("2030-01-01")
	*c.Payments[0].LinkedInvoice = "INV-2"
	c.Log(day("2024-01-01"), "test", "changed")

	if r.Rooms[0].RoomNumber != "101" {
		t.Fatalf("clone leaked room number change")
	}
	if !r.Rooms[0].NightPrices[0].Amount.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("clone leaked night price change")
	}
	if !r.OptionExpiry.Equal(expiry) {
		t.Fatalf("clone leaked option expiry change")
	}
	if *r.Payments[0].LinkedInvoice != "INV-1" {
		t.Fatalf("clone leaked linked invoice change")
	}
	if len(r.ActivityLog) != 0 {
		t.Fatalf("clone leaked activity entry")
	}
}

func TestRoomStay_OverlapIsHalfOpen(t *testing.T) {
	stay := RoomStay{Checkin: day("2024-01-10"), Checkout: day("2024-01-12")}
	cases := []struct {
		from, to string
		want     bool
	}{
		{"2024-01-12", "2024-01-14", false},
		{"2024-01-08", "2024-01-10", false},
		{"2024-01-11", "2024-01-13", true},
		{"2024-01-09", "2024-01-11", true},
		{"2024-01-10", "2024-01-12", true},
	}
	for _, tc := range cases {
		if got := stay.Overlaps(day(tc.from), day(tc.to)); got != tc.want {
			t.Fatalf("Overlaps(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	if stay.Nights() != 2 {
		t.Fatalf("expected 2 nights, got %d", stay.Nights())
	}
	noonCheckout := RoomStay{Checkin: day("2024-01-08"), Checkout: day("2024-01-10").Add(12 * time.Hour)}
	if noonCheckout.Overlaps(day("2024-01-10").Add(12*time.Hour), day("2024-01-11")) {
		t.Fatalf("same-day turnover at noon must not conflict")
	}
}

func TestRecipient_RoundTripKeepsVariant(t *testing.T) {
	r := validReservation()
	r.BillingRecipient = Recipient{CompanyRecipient{CompanyName: "Acme GmbH", VATNumber: "DE123"}}

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Reservation
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	company, ok := back.BillingRecipient.BillingRecipient.(CompanyRecipient)
	if !ok {
		t.Fatalf("expected company recipient, got %T", back.BillingRecipient.BillingRecipient)
	}
	if company.VATNumber != "DE123" || back.BillingRecipient.Kind() != RecipientCompany {
		t.Fatalf("unexpected recipient after round trip: %+v", company)
	}

	var none Reservation
	if err := json.Unmarshal([]byte(`{"billingRecipient":null}`), &none); err != nil {
		t.Fatalf("unmarshal null recipient: %v", err)
	}
	if !none.BillingRecipient.IsZero() {
		t.Fatalf("expected empty recipient")
	}
}

func TestSyncRoomMirror(t *testing.T) {
	r := validReservation()
	r.SyncRoomMirror()
	if r.RoomNumber != "101" {
		t.Fatalf("expected mirror 101, got %q", r.RoomNumber)
	}
	r.Rooms = append(r.Rooms, RoomStay{RoomNumber: "102"})
	r.SyncRoomMirror()
	if r.RoomNumber != "" {
		t.Fatalf("expected empty mirror for multi-room booking, got %q", r.RoomNumber)
	}
}

func TestDateOnly_KeepsTheWrittenCalendarDate(t *testing.T) {
	plusTwo := time.FixedZone("+02", 2*60*60)
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 1, 12, 0, 0, 0, 0, plusTwo), "2024-01-12"},
		{time.Date(2024, 1, 12, 23, 59, 0, 0, time.UTC), "2024-01-12"},
		{time.Date(2024, 1, 11, 23, 30, 0, 0, time.FixedZone("-05", -5*60*60)), "2024-01-11"},
	}
	for _, tc := range cases {
		if got := DateOnly(tc.in); !got.Equal(day(tc.want)) || got.Location() != time.UTC {
			t.Fatalf("DateOnly(%s) = %s, want %s UTC", tc.in, got, tc.want)
		}
	}

	stay := RoomStay{Checkin: day("2024-01-10"), Checkout: day("2024-01-12")}
	if stay.Overlaps(time.Date(2024, 1, 12, 0, 0, 0, 0, plusTwo), time.Date(2024, 1, 14, 0, 0, 0, 0, plusTwo)) {
		t.Fatalf("a same-day turnover in another zone must not overlap")
	}
}
