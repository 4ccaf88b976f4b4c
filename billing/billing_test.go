package billing

import (
	"reflect"
	"testing"
	"time"

	"github.com/hidenkeys/frontdesk/customer"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strptr(s string) *string { return &s }

func scenarioC() *reservation.Reservation {
	return &reservation.Reservation{
		ID:         2,
		BookingRef: "BK-000002",
		Status:     reservation.StatusCheckedIn,
		Booker:     reservation.Booker{ProfileID: "p-1", Name: "Ada Lovelace"},
		Rooms: []reservation.RoomStay{{
			RoomNumber: "101",
			Status:     reservation.StatusCheckedIn,
			PriceType:  reservation.PriceFixed,
			FixedPrice: dec("500"),
		}},
		Extras: []reservation.Extra{{Name: "breakfast", Quantity: 2, UnitPrice: dec("25")}},
		Payments: []reservation.Payment{
			{ID: 1, Amount: dec("200"), Status: reservation.PaymentCompleted, LinkedInvoice: strptr("INV-1")},
			{ID: 2, Amount: dec("100"), Status: reservation.PaymentCompleted, LinkedInvoice: strptr("INV-1")},
		},
		Invoices: []reservation.Invoice{{Number: "INV-1", Amount: dec("550"), Type: reservation.InvoiceStandard, Status: reservation.InvoiceSent}},
	}
}

func TestCalculateTotals_ScenarioC(t *testing.T) {
	got := CalculateTotals(scenarioC())
	want := map[string]decimal.Decimal{
		"room":        dec("500"),
		"extras":      dec("50"),
		"total":       dec("550"),
		"paid":        dec("300"),
		"outstanding": dec("250"),
		"invoiced":    dec("550"),
		"uninvoiced":  dec("0"),
	}
	have := map[string]decimal.Decimal{
		"room":        got.RoomTotal,
		"extras":      got.ExtrasTotal,
		"total":       got.TotalAmount,
		"paid":        got.PaidAmount,
		"outstanding": got.OutstandingAmount,
		"invoiced":    got.InvoicedAmount,
		"uninvoiced":  got.UninvoicedAmount,
	}
	for k, v := range want {
		if !have[k].Equal(v) {
			t.Fatalf("%s: got %s, want %s", k, have[k], v)
		}
	}
}

func TestValidateCheckout_ScenarioC(t *testing.T) {
	issues := ValidateCheckout(scenarioC(), "EUR")
	if !reflect.DeepEqual(issues, []string{"EUR 250.00 still unpaid"}) {
		t.Fatalf("unexpected issues %v", issues)
	}
}

func TestValidateCheckout(t *testing.T) {
	free := scenarioC()
	free.Rooms[0].FixedPrice = decimal.Zero
	free.Extras = nil
	if issues := ValidateCheckout(free, "EUR"); issues != nil {
		t.Fatalf("free stay must not produce issues, got %v", issues)
	}

	settled := scenarioC()
	settled.Payments = append(settled.Payments, reservation.Payment{ID: 3, Amount: dec("249.995"), Status: reservation.PaymentCompleted, LinkedInvoice: strptr("INV-1")})
	if issues := ValidateCheckout(settled, "EUR"); issues != nil {
		t.Fatalf("balance under one cent must pass, got %v", issues)
	}

	messy := scenarioC()
	messy.Invoices[0].Status = reservation.InvoiceCredited
	messy.Invoices = append(messy.Invoices, reservation.Invoice{Number: "PF-1", Amount: dec("550"), Type: reservation.InvoiceProforma})
	messy.Payments[0].LinkedInvoice = nil
	messy.Payments = append(messy.Payments, reservation.Payment{ID: 3, Amount: dec("999"), Status: reservation.PaymentFailed})
	want := []string{
		"USD 250.00 still unpaid",
		"USD 550.00 not yet invoiced",
		"1 completed payment(s) not linked to an invoice",
	}
	if issues := ValidateCheckout(messy, "USD"); !reflect.DeepEqual(issues, want) {
		t.Fatalf("unexpected issues %v", issues)
	}
}

func TestBillingConservation(t *testing.T) {
	cases := [][]string{
		{},
		{"550"},
		{"600", "-50"},
		{"1000"},
		{"-100"},
		{"300", "300", "-25.50"},
	}
	for _, amounts := range cases {
		r := scenarioC()
		r.Payments = nil
		for i, a := range amounts {
			r.Payments = append(r.Payments, reservation.Payment{ID: i + 1, Amount: dec(a), Status: reservation.PaymentCompleted})
		}
		tot := CalculateTotals(r)
		if tot.OutstandingAmount.IsNegative() {
			t.Fatalf("%v: negative outstanding %s", amounts, tot.OutstandingAmount)
		}
		if tot.PaidAmount.LessThanOrEqual(tot.TotalAmount) && !tot.PaidAmount.Add(tot.OutstandingAmount).Equal(tot.TotalAmount) {
			t.Fatalf("%v: paid %s and outstanding %s do not add up to %s", amounts, tot.PaidAmount, tot.OutstandingAmount, tot.TotalAmount)
		}
		if tot.PaidAmount.GreaterThan(tot.TotalAmount) && !tot.OutstandingAmount.IsZero() {
			t.Fatalf("%v: overpaid reservation still owes %s", amounts, tot.OutstandingAmount)
		}
	}
}

func TestStayTotal_PerNight(t *testing.T) {
	s := reservation.RoomStay{
		PriceType: reservation.PricePerNight,
		NightPrices: []reservation.NightPrice{
			{Amount: dec("90")},
			{Amount: dec("110.50")},
		},
	}
	if got := StayTotal(s); !got.Equal(dec("200.50")) {
		t.Fatalf("expected 200.50, got %s", got)
	}
}

func TestCreateAutoChargePayment(t *testing.T) {
	now := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)
	card := customer.Card{ID: "c-1", ProfileID: "p-1", Holder: "Ada Lovelace", Last4: "4242", ExpMonth: 12, ExpYear: 2030, AutoCharge: true}

	r := scenarioC()
	r.Payments[1].ID = 7
	p := CreateAutoChargePayment(r, []customer.Card{card}, now)
	if p == nil {
		t.Fatalf("expected an auto-charge payment")
	}
	if p.ID != 8 || !p.Amount.Equal(dec("250")) || p.Status != reservation.PaymentCompleted {
		t.Fatalf("unexpected payment %+v", p)
	}

	manual := card
	manual.AutoCharge = false
	if CreateAutoChargePayment(r, []customer.Card{manual}, now) != nil {
		t.Fatalf("card without auto-charge must not be charged")
	}
	foreign := card
	foreign.ProfileID = "p-2"
	foreign.Holder = "Someone Else"
	if CreateAutoChargePayment(r, []customer.Card{foreign}, now) != nil {
		t.Fatalf("card of another profile must not be charged")
	}
	namesake := card
	namesake.ProfileID = "p-2"
	namesake.Last4 = "9999"
	if CreateAutoChargePayment(r, []customer.Card{namesake}, now) != nil {
		t.Fatalf("card of another profile with the same holder name must not be charged")
	}
	if p := CreateAutoChargePayment(r, []customer.Card{namesake, card}, now); p == nil || p.Method != MethodStoredCard+" 4242" {
		t.Fatalf("expected the booker's own card, got %+v", p)
	}
	expired := card
	expired.ExpYear = 2023
	if CreateAutoChargePayment(r, []customer.Card{expired}, now) != nil {
		t.Fatalf("expired card must not be charged")
	}

	paid := scenarioC()
	paid.Payments = append(paid.Payments, reservation.Payment{ID: 3, Amount: dec("250"), Status: reservation.PaymentCompleted})
	if CreateAutoChargePayment(paid, []customer.Card{card}, now) != nil {
		t.Fatalf("nothing owed, nothing charged")
	}

	next, applied := ApplyAutoCharge(r, []customer.Card{card}, now)
	if applied == nil || len(next.Payments) != 3 || len(r.Payments) != 2 {
		t.Fatalf("ApplyAutoCharge must append to a new value")
	}
}

func TestAddPaymentAndInvoice(t *testing.T) {
	now := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)
	r := scenarioC()
	r.Invoices = nil

	withInvoice, inv, err := AddInvoice(r, InvoiceRequest{}, now)
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if inv.Number != "BK-000002-1" || !inv.Amount.Equal(dec("550")) || inv.Type != reservation.InvoiceStandard {
		t.Fatalf("unexpected invoice %+v", inv)
	}
	if _, _, err := AddInvoice(withInvoice, InvoiceRequest{Number: "BK-000002-1"}, now); !reservation.IsValidation(err) {
		t.Fatalf("duplicate invoice number must fail, got %v", err)
	}

	paid, p, err := AddPayment(withInvoice, PaymentRequest{Amount: dec("250"), Method: "cash", LinkedInvoice: strptr(inv.Number)}, now)
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if p.ID != 3 || p.Status != reservation.PaymentCompleted {
		t.Fatalf("unexpected payment %+v", p)
	}
	if issues := ValidateCheckout(paid, "EUR"); issues != nil {
		t.Fatalf("expected settled reservation, got %v", issues)
	}
	if _, _, err := AddPayment(paid, PaymentRequest{Amount: dec("1"), Method: "cash", LinkedInvoice: strptr("nope")}, now); !reservation.IsValidation(err) {
		t.Fatalf("unknown invoice link must fail, got %v", err)
	}

	withExtra, err := AddExtra(paid, ExtraRequest{Name: "minibar", Quantity: 3, UnitPrice: dec("4.50")}, now)
	if err != nil {
		t.Fatalf("add extra: %v", err)
	}
	if got := CalculateTotals(withExtra).ExtrasTotal; !got.Equal(dec("63.50")) {
		t.Fatalf("expected extras 63.50, got %s", got)
	}
	if _, err := AddExtra(paid, ExtraRequest{Name: "minibar", Quantity: 1, Room: strptr("999")}, now); !reservation.IsValidation(err) {
		t.Fatalf("extra for a foreign room must fail, got %v", err)
	}
}
