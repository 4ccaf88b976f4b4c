package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/hidenkeys/frontdesk/customer"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/shopspring/decimal"
)

const (
	ActionPaymentAdded = "payment.added"
	ActionAutoCharged  = "payment.autocharged"
	ActionExtraAdded   = "extra.added"
	ActionInvoiceAdded = "invoice.added"

	MethodStoredCard = "stored-card"
)

// NextPaymentID is one past the largest existing payment id.
func NextPaymentID(payments []reservation.Payment) int {
	max := 0
	for _, p := range payments {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// CreateAutoChargePayment charges the outstanding amount to a stored card of
// the booker that is flagged for automatic charging. It returns nil when no
// such card exists or nothing is owed.
func CreateAutoChargePayment(r *reservation.Reservation, cards []customer.Card, now time.Time) *reservation.Payment {
	outstanding := CalculateTotals(r).OutstandingAmount
	if !outstanding.IsPositive() {
		return nil
	}
	card, ok := autoChargeCard(r.Booker, cards, now)
	if !ok {
		return nil
	}
	return &reservation.Payment{
		ID:     NextPaymentID(r.Payments),
		Date:   now,
		Amount: outstanding,
		Method: fmt.Sprintf("%s %s", MethodStoredCard, card.Last4),
		Status: reservation.PaymentCompleted,
	}
}

func autoChargeCard(booker reservation.Booker, cards []customer.Card, now time.Time) (customer.Card, bool) {
	for _, c := range cards {
		if c.AutoCharge && c.OwnedBy(booker.ProfileID, booker.Name) && !c.Expired(now) {
			return c, true
		}
	}
	return customer.Card{}, false
}

// ApplyAutoCharge records the auto-charge payment on a new reservation value.
func ApplyAutoCharge(r *reservation.Reservation, cards []customer.Card, now time.Time) (*reservation.Reservation, *reservation.Payment) {
	p := CreateAutoChargePayment(r, cards, now)
	if p == nil {
		return r, nil
	}
	next := r.Clone()
	next.Payments = append(next.Payments, *p)
	next.Log(now, ActionAutoCharged, fmt.Sprintf("charged %s to %s", p.Amount.StringFixed(2), p.Method))
	return next, p
}

type PaymentRequest struct {
	Amount        decimal.Decimal           `json:"amount"`
	Method        string                    `json:"method" validate:"required"`
	Status        reservation.PaymentStatus `json:"status"`
	Date          *time.Time                `json:"date"`
	LinkedInvoice *string                   `json:"linkedInvoice"`
}

// AddPayment appends a payment with the next id. Refunds are negative
// completed payments.
func AddPayment(r *reservation.Reservation, req PaymentRequest, now time.Time) (*reservation.Reservation, reservation.Payment, error) {
	if strings.TrimSpace(req.Method) == "" {
		return nil, reservation.Payment{}, reservation.NewValidationError("method is required")
	}
	if req.Amount.IsZero() {
		return nil, reservation.Payment{}, reservation.NewValidationError("amount must not be zero")
	}
	status := req.Status
	if status == "" {
		status = reservation.PaymentCompleted
	}
	switch status {
	case reservation.PaymentCompleted, reservation.PaymentPending, reservation.PaymentRequestSent, reservation.PaymentFailed:
	default:
		return nil, reservation.Payment{}, reservation.NewValidationError(fmt.Sprintf("unknown payment status %q", status))
	}
	if req.LinkedInvoice != nil && !hasInvoice(r, *req.LinkedInvoice) {
		return nil, reservation.Payment{}, reservation.NewValidationError(fmt.Sprintf("unknown invoice %q", *req.LinkedInvoice))
	}

	p := reservation.Payment{
		ID:            NextPaymentID(r.Payments),
		Date:          now,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        status,
		LinkedInvoice: req.LinkedInvoice,
	}
	if req.Date != nil {
		p.Date = *req.Date
	}
	next := r.Clone()
	next.Payments = append(next.Payments, p)
	next.Log(now, ActionPaymentAdded, fmt.Sprintf("payment %d: %s via %s (%s)", p.ID, p.Amount.StringFixed(2), p.Method, p.Status))
	return next, p, nil
}

type ExtraRequest struct {
	Name      string          `json:"name" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	VATRate   decimal.Decimal `json:"vatRate"`
	Room      *string         `json:"room"`
}

func AddExtra(r *reservation.Reservation, req ExtraRequest, now time.Time) (*reservation.Reservation, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, reservation.NewValidationError("name is required")
	}
	if req.Quantity < 1 {
		return nil, reservation.NewValidationError("quantity must be at least 1")
	}
	if req.Room != nil && !hasRoom(r, *req.Room) {
		return nil, reservation.NewValidationError(fmt.Sprintf("room %s is not part of %s", *req.Room, r.BookingRef))
	}
	next := r.Clone()
	next.Extras = append(next.Extras, reservation.Extra{
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		VATRate:   req.VATRate,
		Room:      req.Room,
	})
	next.Log(now, ActionExtraAdded, fmt.Sprintf("%d x %s at %s", req.Quantity, req.Name, req.UnitPrice.StringFixed(2)))
	return next, nil
}

type InvoiceRequest struct {
	Number string                    `json:"number"`
	Amount *decimal.Decimal          `json:"amount"`
	Type   reservation.InvoiceType   `json:"type"`
	Status reservation.InvoiceStatus `json:"status"`
}

// AddInvoice appends an invoice. Without an amount it bills whatever is not
// yet invoiced; without a number it gets "<bookingRef>-<n>".
func AddInvoice(r *reservation.Reservation, req InvoiceRequest, now time.Time) (*reservation.Reservation, reservation.Invoice, error) {
	inv := reservation.Invoice{
		Number: strings.TrimSpace(req.Number),
		Type:   req.Type,
		Status: req.Status,
	}
	if inv.Type == "" {
		inv.Type = reservation.InvoiceStandard
	}
	if inv.Status == "" {
		inv.Status = reservation.InvoiceDraft
	}
	switch inv.Type {
	case reservation.InvoiceStandard, reservation.InvoiceProforma, reservation.InvoiceCredit:
	default:
		return nil, inv, reservation.NewValidationError(fmt.Sprintf("unknown invoice type %q", inv.Type))
	}
	switch inv.Status {
	case reservation.InvoiceDraft, reservation.InvoiceSent, reservation.InvoicePaid, reservation.InvoiceCredited:
	default:
		return nil, inv, reservation.NewValidationError(fmt.Sprintf("unknown invoice status %q", inv.Status))
	}
	if inv.Number == "" {
		inv.Number = fmt.Sprintf("%s-%d", r.BookingRef, len(r.Invoices)+1)
	}
	if hasInvoice(r, inv.Number) {
		return nil, inv, reservation.NewValidationError(fmt.Sprintf("invoice %s already exists", inv.Number))
	}
	if req.Amount != nil {
		inv.Amount = *req.Amount
	} else {
		inv.Amount = CalculateTotals(r).UninvoicedAmount
	}

	next := r.Clone()
	next.Invoices = append(next.Invoices, inv)
	next.Log(now, ActionInvoiceAdded, fmt.Sprintf("%s %s over %s", inv.Type, inv.Number, inv.Amount.StringFixed(2)))
	return next, inv, nil
}

func hasInvoice(r *reservation.Reservation, number string) bool {
	for _, inv := range r.Invoices {
		if inv.Number == number {
			return true
		}
	}
	return false
}

func hasRoom(r *reservation.Reservation, number string) bool {
	for _, s := range r.Rooms {
		if s.RoomNumber == number {
			return true
		}
	}
	return false
}
