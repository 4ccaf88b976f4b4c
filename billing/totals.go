package billing

import (
	"fmt"

	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/shopspring/decimal"
)

// Totals is the monetary picture of one reservation.
type Totals struct {
	RoomTotal         decimal.Decimal `json:"roomTotal"`
	ExtrasTotal       decimal.Decimal `json:"extrasTotal"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	InvoicedAmount    decimal.Decimal `json:"invoicedAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	UninvoicedAmount  decimal.Decimal `json:"uninvoicedAmount"`
}

var threshold = decimal.New(1, -2)

// StayTotal is the fixed price of a fixed-price stay, otherwise the sum of its
// nightly prices.
func StayTotal(s reservation.RoomStay) decimal.Decimal {
	if s.PriceType == reservation.PriceFixed {
		return s.FixedPrice
	}
	total := decimal.Zero
	for _, n := range s.NightPrices {
		total = total.Add(n.Amount)
	}
	return total
}

func countsAsInvoiced(inv reservation.Invoice) bool {
	if inv.Status == reservation.InvoiceCredited {
		return false
	}
	return inv.Type != reservation.InvoiceProforma && inv.Type != reservation.InvoiceCredit
}

func CalculateTotals(r *reservation.Reservation) Totals {
	var t Totals
	for _, s := range r.Rooms {
		t.RoomTotal = t.RoomTotal.Add(StayTotal(s))
	}
	for _, e := range r.Extras {
		t.ExtrasTotal = t.ExtrasTotal.Add(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	t.TotalAmount = t.RoomTotal.Add(t.ExtrasTotal)

	for _, inv := range r.Invoices {
		if countsAsInvoiced(inv) {
			t.InvoicedAmount = t.InvoicedAmount.Add(inv.Amount)
		}
	}
	for _, p := range r.Payments {
		if p.Status == reservation.PaymentCompleted {
			t.PaidAmount = t.PaidAmount.Add(p.Amount)
		}
	}

	t.OutstandingAmount = decimal.Max(decimal.Zero, t.TotalAmount.Sub(t.PaidAmount))
	t.UninvoicedAmount = decimal.Max(decimal.Zero, t.TotalAmount.Sub(t.InvoicedAmount))
	return t
}

// ValidateCheckout returns advisory warnings for checkout, or nil when the
// reservation is settled or there is nothing to settle.
func ValidateCheckout(r *reservation.Reservation, currency string) []string {
	t := CalculateTotals(r)
	if !t.TotalAmount.IsPositive() {
		return nil
	}

	var issues []string
	if unpaid := t.TotalAmount.Sub(t.PaidAmount); unpaid.GreaterThan(threshold) {
		issues = append(issues, fmt.Sprintf("%s still unpaid", FormatMoney(currency, unpaid)))
	}
	if t.UninvoicedAmount.GreaterThan(threshold) {
		issues = append(issues, fmt.Sprintf("%s not yet invoiced", FormatMoney(currency, t.UninvoicedAmount)))
	}
	unlinked := 0
	for _, p := range r.Payments {
		if p.Status == reservation.PaymentCompleted && (p.LinkedInvoice == nil || *p.LinkedInvoice == "") {
			unlinked++
		}
	}
	if unlinked > 0 {
		issues = append(issues, fmt.Sprintf("%d completed payment(s) not linked to an invoice", unlinked))
	}

	if len(issues) == 0 {
		return nil
	}
	return issues
}

func FormatMoney(currency string, amount decimal.Decimal) string {
	return currency + " " + amount.StringFixed(2)
}
