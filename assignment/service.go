package assignment

import (
	"fmt"
	"strings"

	"github.com/hidenkeys/frontdesk/config"
	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/occupancy"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/hidenkeys/frontdesk/room"
	"github.com/sirupsen/logrus"
)

const (
	ActionCreated   = "reservation.created"
	ActionRoomAdded = "room.added"
	ActionMoved     = "room.moved"
	ActionSwapped   = "room.swapped"
	ActionMerged    = "reservation.merged"
)

// Service applies room assignments to the ledger. Every operation runs in a
// single ledger transaction: on any error nothing is written.
type Service struct {
	store     *ledger.Store
	inventory room.Inventory
	log       *logrus.Logger
}

func NewService(store *ledger.Store, inventory room.Inventory) *Service {
	return &Service{store: store, inventory: inventory, log: config.GetLogger()}
}

func (s *Service) Store() *ledger.Store {
	return s.store
}

func (s *Service) Inventory() room.Inventory {
	return s.inventory
}

func conflictWith(room string, e occupancy.Entry) *reservation.ConflictError {
	return &reservation.ConflictError{
		Room:          room,
		ReservationID: e.ReservationID,
		BookingRef:    e.BookingRef,
		From:          e.Stay.Checkin,
		To:            e.Stay.Checkout,
	}
}

func lookupStay(tx *ledger.Tx, id int64, index int) (*reservation.Reservation, reservation.RoomStay, error) {
	r, ok := tx.Get(id)
	if !ok {
		return nil, reservation.RoomStay{}, fmt.Errorf("reservation %d: %w", id, reservation.ErrNotFound)
	}
	if index < 0 || index >= len(r.Rooms) {
		return nil, reservation.RoomStay{}, fmt.Errorf("%s stay %d: %w", r.BookingRef, index, reservation.ErrStayIndex)
	}
	return r, r.Rooms[index], nil
}

func (s *Service) knownRoom(number string) (room.Room, error) {
	rm, ok := s.inventory.Lookup(strings.TrimSpace(number))
	if !ok {
		return room.Room{}, reservation.NewValidationError(fmt.Sprintf("room %s is not in the inventory", number))
	}
	return rm, nil
}

func (s *Service) logRejected(funcName string, data any, err error) {
	if reservation.IsConflict(err) || reservation.IsValidation(err) {
		s.log.WithFields(logrus.Fields{
			"module":   "assignment",
			"funcName": funcName,
			"data":     data,
		}).Info(err.Error())
		return
	}
	config.LogError(s.log, "assignment", funcName, "update ledger", data, err)
}
