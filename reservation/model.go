package reservation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusOption     Status = "option"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no-show"
	StatusBlocked    Status = "blocked"
)

var Statuses = []Status{
	StatusConfirmed,
	StatusOption,
	StatusCheckedIn,
	StatusCheckedOut,
	StatusCancelled,
	StatusNoShow,
	StatusBlocked,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ReleasesCapacity reports whether a stay in this status gives its room back.
func (s Status) ReleasesCapacity() bool {
	return s == StatusCancelled || s == StatusNoShow
}

type PriceType string

const (
	PriceFixed    PriceType = "fixed"
	PricePerNight PriceType = "per-night"
)

type Housekeeping string

const (
	HousekeepingClean Housekeeping = "clean"
	HousekeepingDirty Housekeeping = "dirty"
)

type PaymentStatus string

const (
	PaymentCompleted   PaymentStatus = "completed"
	PaymentPending     PaymentStatus = "pending"
	PaymentRequestSent PaymentStatus = "request-sent"
	PaymentFailed      PaymentStatus = "failed"
)

type InvoiceType string

const (
	InvoiceStandard InvoiceType = "invoice"
	InvoiceProforma InvoiceType = "proforma"
	InvoiceCredit   InvoiceType = "credit"
)

type InvoiceStatus string

const (
	InvoiceDraft    InvoiceStatus = "draft"
	InvoiceSent     InvoiceStatus = "sent"
	InvoicePaid     InvoiceStatus = "paid"
	InvoiceCredited InvoiceStatus = "credited"
)

type Booker struct {
	ProfileID string `json:"profileId,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type NightPrice struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// RoomStay is one room's slice of a reservation. Checkin/Checkout form a
// half-open date interval.
type RoomStay struct {
	RoomNumber   string          `json:"roomNumber" validate:"required"`
	RoomType     string          `json:"roomType,omitempty"`
	Status       Status          `json:"status" validate:"required,status"`
	Checkin      time.Time       `json:"checkin" validate:"required"`
	Checkout     time.Time       `json:"checkout" validate:"required,afterday=Checkin"`
	Guests       []Guest         `json:"guests" validate:"-"`
	PriceType    PriceType       `json:"priceType,omitempty"`
	FixedPrice   decimal.Decimal `json:"fixedPrice" validate:"-"`
	NightPrices  []NightPrice    `json:"nightPrices,omitempty" validate:"-"`
	OptionExpiry *time.Time      `json:"optionExpiry,omitempty"`
	Housekeeping Housekeeping    `json:"housekeeping,omitempty"`
}

func (s RoomStay) Nights() int {
	return DaysBetween(s.Checkin, s.Checkout)
}

// Overlaps applies the half-open test existing.from < to && existing.to > from
// at day granularity, so a checkout and a checkin on the same day coexist.
func (s RoomStay) Overlaps(from, to time.Time) bool {
	return DateOnly(s.Checkin).Before(DateOnly(to)) && DateOnly(s.Checkout).After(DateOnly(from))
}

// Contains reports whether day falls inside [Checkin, Checkout).
func (s RoomStay) Contains(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(s.Checkin)) && d.Before(DateOnly(s.Checkout))
}

type Extra struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	VATRate   decimal.Decimal `json:"vatRate"`
	Room      *string         `json:"room,omitempty"`
}

type Payment struct {
	ID            int             `json:"id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        PaymentStatus   `json:"status"`
	LinkedInvoice *string         `json:"linkedInvoice,omitempty"`
}

type Invoice struct {
	Number string          `json:"number"`
	Amount decimal.Decimal `json:"amount"`
	Type   InvoiceType     `json:"type"`
	Status InvoiceStatus   `json:"status"`
}

type Reminder struct {
	ID         string    `json:"id"`
	DueDate    time.Time `json:"dueDate"`
	Message    string    `json:"message"`
	Fired      bool      `json:"fired"`
	ToastShown bool      `json:"toastShown"`
}

type ActivityEntry struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Action  string    `json:"action"`
	Message string    `json:"message"`
}

type Reservation struct {
	ID               int64           `json:"id" validate:"required"`
	BookingRef       string          `json:"bookingRef" validate:"required"`
	Status           Status          `json:"reservationStatus" validate:"required,status"`
	Booker           Booker          `json:"booker" validate:"-"`
	BillingRecipient Recipient       `json:"billingRecipient" validate:"-"`
	GuestName        string          `json:"guestName,omitempty"`
	RoomNumber       string          `json:"roomNumber,omitempty"`
	Rooms            []RoomStay      `json:"rooms" validate:"required,min=1,dive"`
	Extras           []Extra         `json:"extras" validate:"-"`
	Payments         []Payment       `json:"payments" validate:"-"`
	Invoices         []Invoice       `json:"invoices" validate:"-"`
	ActivityLog      []ActivityEntry `json:"activityLog" validate:"-"`
	Reminders        []Reminder      `json:"reminders" validate:"-"`
	OptionExpiry     *time.Time      `json:"optionExpiry,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func FormatBookingRef(id int64) string {
	return fmt.Sprintf("BK-%06d", id)
}

func (r *Reservation) IsMultiRoom() bool {
	return len(r.Rooms) > 1
}

// Normalize fills absent lists with empty ones. It never touches identity fields.
func (r *Reservation) Normalize() {
	if r.Extras == nil {
		r.Extras = []Extra{}
	}
	if r.Payments == nil {
		r.Payments = []Payment{}
	}
	if r.Invoices == nil {
		r.Invoices = []Invoice{}
	}
	if r.ActivityLog == nil {
		r.ActivityLog = []ActivityEntry{}
	}
	if r.Reminders == nil {
		r.Reminders = []Reminder{}
	}
	for i := range r.Rooms {
		if r.Rooms[i].Guests == nil {
			r.Rooms[i].Guests = []Guest{}
		}
	}
}

// Log appends an activity entry. Call it on a clone, never on a stored value.
func (r *Reservation) Log(now time.Time, action, message string) {
	r.ActivityLog = append(r.ActivityLog, ActivityEntry{
		ID:      uuid.NewString(),
		At:      now,
		Action:  action,
		Message: message,
	})
}

// SyncRoomMirror keeps the reservation-level room number in step with a
// single-room booking and clears it for multi-room ones.
func (r *Reservation) SyncRoomMirror() {
	if len(r.Rooms) == 1 {
		r.RoomNumber = r.Rooms[0].RoomNumber
		return
	}
	r.RoomNumber = ""
}

// DaysBetween counts calendar days from a to b, ignoring time of day and DST.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// DateOnly returns t's calendar date, in t's own location, as midnight UTC.
// Stays compare and store dates in this form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
