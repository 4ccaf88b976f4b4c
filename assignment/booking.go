package assignment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/lifecycle"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/hidenkeys/frontdesk/room"
	"github.com/shopspring/decimal"
)

type ReminderRequest struct {
	DueDate time.Time `json:"dueDate" validate:"required"`
	Message string    `json:"message" validate:"required"`
}

type BookingRequest struct {
	Rooms            []string              `json:"rooms" validate:"required,min=1,dive,required"`
	Checkin          time.Time             `json:"checkin" validate:"required"`
	Checkout         time.Time             `json:"checkout" validate:"required,afterday=Checkin"`
	Booker           reservation.Booker    `json:"booker"`
	BillingRecipient reservation.Recipient `json:"billingRecipient" validate:"-"`
	GuestName        string                `json:"guestName"`
	Guests           []reservation.Guest   `json:"guests"`
	Status           reservation.Status    `json:"status" validate:"omitempty,status"`
	OptionExpiry     *time.Time            `json:"optionExpiry"`
	FixedPrice       *decimal.Decimal      `json:"fixedPrice"`
	Notes            string                `json:"notes"`
	Reminders        []ReminderRequest     `json:"reminders" validate:"dive"`
}

func (req *BookingRequest) check() error {
	req.Checkin, req.Checkout = calendarDates(req.Checkin, req.Checkout)
	if err := reservation.Validator().Struct(req); err != nil {
		return reservation.NewValidationError(reservation.Problems(err)...)
	}
	switch req.Status {
	case "":
		req.Status = reservation.StatusConfirmed
	case reservation.StatusConfirmed, reservation.StatusBlocked:
	case reservation.StatusOption:
		if req.OptionExpiry == nil {
			return reservation.NewValidationError("optionExpiry is required for option bookings")
		}
	default:
		return reservation.NewValidationError(fmt.Sprintf("cannot create a booking as %s", req.Status))
	}
	seen := map[string]bool{}
	for i, number := range req.Rooms {
		number = strings.TrimSpace(number)
		if seen[number] {
			return reservation.NewValidationError(fmt.Sprintf("room %s requested twice", number))
		}
		seen[number] = true
		req.Rooms[i] = number
	}
	return nil
}

// newStay prices a stay from the inventory base rate, one night price per
// night, unless a fixed price is given.
func newStay(rm room.Room, checkin, checkout time.Time, status reservation.Status, fixed *decimal.Decimal) reservation.RoomStay {
	stay := reservation.RoomStay{
		RoomNumber:   rm.Number,
		RoomType:     rm.Type,
		Status:       status,
		Checkin:      checkin,
		Checkout:     checkout,
		Guests:       []reservation.Guest{},
		Housekeeping: reservation.HousekeepingClean,
	}
	if fixed != nil {
		stay.PriceType = reservation.PriceFixed
		stay.FixedPrice = *fixed
		return stay
	}
	stay.PriceType = reservation.PricePerNight
	for d := 0; d < stay.Nights(); d++ {
		stay.NightPrices = append(stay.NightPrices, reservation.NightPrice{
			Date:   reservation.DateOnly(checkin).AddDate(0, 0, d),
			Amount: rm.BaseRate,
		})
	}
	return stay
}

// CreateBooking creates one reservation with a stay per requested room. Every
// room is checked before anything is written; the first occupied room fails
// the whole request with a ConflictError.
func (s *Service) CreateBooking(req BookingRequest) (*reservation.Reservation, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	rooms := make([]room.Room, 0, len(req.Rooms))
	for _, number := range req.Rooms {
		rm, err := s.knownRoom(number)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}

	var id int64
	err := s.store.Update(func(tx *ledger.Tx) error {
		ix := tx.Index()
		for _, rm := range rooms {
			if hits := ix.Conflicts(rm.Number, req.Checkin, req.Checkout); len(hits) > 0 {
				return conflictWith(rm.Number, hits[0])
			}
		}

		id = tx.NextID()
		r := &reservation.Reservation{
			ID:               id,
			BookingRef:       reservation.FormatBookingRef(id),
			Status:           req.Status,
			Booker:           req.Booker,
			BillingRecipient: req.BillingRecipient,
			GuestName:        strings.TrimSpace(req.GuestName),
			Notes:            req.Notes,
		}
		if r.GuestName == "" {
			r.GuestName = req.Booker.Name
		}
		for _, rm := range rooms {
			stay := newStay(rm, req.Checkin, req.Checkout, req.Status, req.FixedPrice)
			stay.Guests = append(stay.Guests, req.Guests...)
			if req.Status == reservation.StatusOption {
				expiry := *req.OptionExpiry
				stay.OptionExpiry = &expiry
			}
			r.Rooms = append(r.Rooms, stay)
		}
		if req.Status == reservation.StatusOption {
			expiry := *req.OptionExpiry
			r.OptionExpiry = &expiry
		}
		for _, rem := range req.Reminders {
			r.Reminders = append(r.Reminders, reservation.Reminder{
				ID:      uuid.NewString(),
				DueDate: rem.DueDate,
				Message: rem.Message,
			})
		}
		r.Log(tx.Now(), ActionCreated, fmt.Sprintf("booked room %s from %s to %s",
			strings.Join(req.Rooms, ", "), req.Checkin.Format(time.DateOnly), req.Checkout.Format(time.DateOnly)))
		tx.Put(r)
		return nil
	})
	if err != nil {
		s.logRejected("CreateBooking", req.Rooms, err)
		return nil, err
	}

	created, _ := s.store.Get(id)
	return created, nil
}

// calendarDates drops the time of day; stays are whole nights. Zero values
// stay zero so required checks still report them.
func calendarDates(checkin, checkout time.Time) (time.Time, time.Time) {
	if !checkin.IsZero() {
		checkin = reservation.DateOnly(checkin)
	}
	if !checkout.IsZero() {
		checkout = reservation.DateOnly(checkout)
	}
	return checkin, checkout
}

type StayRequest struct {
	Room       string           `json:"room" validate:"required"`
	Checkin    time.Time        `json:"checkin" validate:"required"`
	Checkout   time.Time        `json:"checkout" validate:"required,afterday=Checkin"`
	FixedPrice *decimal.Decimal `json:"fixedPrice"`
}

// AddStay extends a reservation with another room.
func (s *Service) AddStay(reservationID int64, req StayRequest) (*reservation.Reservation, error) {
	req.Checkin, req.Checkout = calendarDates(req.Checkin, req.Checkout)
	if err := reservation.Validator().Struct(req); err != nil {
		return nil, reservation.NewValidationError(reservation.Problems(err)...)
	}
	rm, err := s.knownRoom(req.Room)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(func(tx *ledger.Tx) error {
		r, ok := tx.Get(reservationID)
		if !ok {
			return fmt.Errorf("reservation %d: %w", reservationID, reservation.ErrNotFound)
		}
		switch r.Status {
		case reservation.StatusCancelled, reservation.StatusNoShow, reservation.StatusCheckedOut:
			return reservation.NewValidationError(fmt.Sprintf("cannot add a room to a %s reservation", r.Status))
		}
		if hits := tx.Index().Conflicts(rm.Number, req.Checkin, req.Checkout); len(hits) > 0 {
			return conflictWith(rm.Number, hits[0])
		}

		status := r.Status
		if status == reservation.StatusCheckedIn {
			status = reservation.StatusConfirmed
		}
		stay := newStay(rm, req.Checkin, req.Checkout, status, req.FixedPrice)
		if status == reservation.StatusOption && r.OptionExpiry != nil {
			expiry := *r.OptionExpiry
			stay.OptionExpiry = &expiry
		}

		next := r.Clone()
		next.Rooms = append(next.Rooms, stay)
		next.Status = lifecycle.DeriveStatus(r.Status, next.Rooms)
		next.Log(tx.Now(), ActionRoomAdded, fmt.Sprintf("added room %s from %s to %s",
			rm.Number, req.Checkin.Format(time.DateOnly), req.Checkout.Format(time.DateOnly)))
		tx.Put(next)
		return nil
	})
	if err != nil {
		s.logRejected("AddStay", req, err)
		return nil, err
	}

	updated, _ := s.store.Get(reservationID)
	return updated, nil
}
