package assignment

import (
	"fmt"

	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/occupancy"
	"github.com/hidenkeys/frontdesk/reservation"
)

// StaySelector points at one stay of one reservation.
type StaySelector struct {
	ReservationID int64 `json:"reservationId" validate:"required"`
	StayIndex     int   `json:"stayIndex" validate:"min=0"`
}

// MoveStay relocates one stay to target. The stay's own occupancy is ignored
// when checking target, since it vacates its current room. Moving a stay to
// the room it already has is a no-op.
func (s *Service) MoveStay(reservationID int64, stayIndex int, target string) (*reservation.Reservation, error) {
	rm, err := s.knownRoom(target)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(func(tx *ledger.Tx) error {
		r, stay, err := lookupStay(tx, reservationID, stayIndex)
		if err != nil {
			return err
		}
		if stay.RoomNumber == rm.Number {
			return nil
		}
		if !stay.Status.ReleasesCapacity() && !r.Status.ReleasesCapacity() {
			self := occupancy.StayRef{ReservationID: r.ID, RoomNumber: stay.RoomNumber, StayIndex: stayIndex}
			if hits := tx.Index().Conflicts(rm.Number, stay.Checkin, stay.Checkout, self); len(hits) > 0 {
				return conflictWith(rm.Number, hits[0])
			}
		}

		next := r.Clone()
		next.Rooms[stayIndex].RoomNumber = rm.Number
		next.Rooms[stayIndex].RoomType = rm.Type
		next.SyncRoomMirror()
		next.Log(tx.Now(), ActionMoved, fmt.Sprintf("moved from room %s to room %s", stay.RoomNumber, rm.Number))
		tx.Put(next)
		return nil
	})
	if err != nil {
		s.logRejected("MoveStay", fmt.Sprintf("%d/%d -> %s", reservationID, stayIndex, target), err)
		return nil, err
	}

	updated, _ := s.store.Get(reservationID)
	return updated, nil
}

// SwapStays exchanges the rooms of two stays, in the same reservation or in
// two different ones. The two stays never conflict with each other; a third
// stay overlapping either mover in its new room rejects the swap.
func (s *Service) SwapStays(a, b StaySelector) (*reservation.Reservation, *reservation.Reservation, error) {
	if a == b {
		return nil, nil, reservation.NewValidationError("cannot swap a stay with itself")
	}

	err := s.store.Update(func(tx *ledger.Tx) error {
		ra, stayA, err := lookupStay(tx, a.ReservationID, a.StayIndex)
		if err != nil {
			return err
		}
		rb, stayB, err := lookupStay(tx, b.ReservationID, b.StayIndex)
		if err != nil {
			return err
		}
		if stayA.RoomNumber == stayB.RoomNumber {
			return nil
		}

		movers := []occupancy.StayRef{
			{ReservationID: ra.ID, RoomNumber: stayA.RoomNumber, StayIndex: a.StayIndex},
			{ReservationID: rb.ID, RoomNumber: stayB.RoomNumber, StayIndex: b.StayIndex},
		}
		ix := tx.Index()
		if holdsCapacity(ra, stayA) {
			if hits := ix.Conflicts(stayB.RoomNumber, stayA.Checkin, stayA.Checkout, movers...); len(hits) > 0 {
				return conflictWith(stayB.RoomNumber, hits[0])
			}
		}
		if holdsCapacity(rb, stayB) {
			if hits := ix.Conflicts(stayA.RoomNumber, stayB.Checkin, stayB.Checkout, movers...); len(hits) > 0 {
				return conflictWith(stayA.RoomNumber, hits[0])
			}
		}

		now := tx.Now()
		if ra.ID == rb.ID {
			next := ra.Clone()
			swapRooms(&next.Rooms[a.StayIndex], &next.Rooms[b.StayIndex])
			next.SyncRoomMirror()
			next.Log(now, ActionSwapped, fmt.Sprintf("swapped room %s with room %s", stayA.RoomNumber, stayB.RoomNumber))
			tx.Put(next)
			return nil
		}

		nextA, nextB := ra.Clone(), rb.Clone()
		swapRooms(&nextA.Rooms[a.StayIndex], &nextB.Rooms[b.StayIndex])
		nextA.SyncRoomMirror()
		nextB.SyncRoomMirror()
		nextA.Log(now, ActionSwapped, fmt.Sprintf("moved from room %s to room %s, swapped with %s", stayA.RoomNumber, stayB.RoomNumber, rb.BookingRef))
		nextB.Log(now, ActionSwapped, fmt.Sprintf("moved from room %s to room %s, swapped with %s", stayB.RoomNumber, stayA.RoomNumber, ra.BookingRef))
		tx.Put(nextA)
		tx.Put(nextB)
		return nil
	})
	if err != nil {
		s.logRejected("SwapStays", []StaySelector{a, b}, err)
		return nil, nil, err
	}

	first, _ := s.store.Get(a.ReservationID)
	second, _ := s.store.Get(b.ReservationID)
	return first, second, nil
}

func holdsCapacity(r *reservation.Reservation, stay reservation.RoomStay) bool {
	return !r.Status.ReleasesCapacity() && !stay.Status.ReleasesCapacity()
}

func swapRooms(x, y *reservation.RoomStay) {
	x.RoomNumber, y.RoomNumber = y.RoomNumber, x.RoomNumber
	x.RoomType, y.RoomType = y.RoomType, x.RoomType
}
