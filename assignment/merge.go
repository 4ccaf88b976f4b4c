package assignment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/lifecycle"
	"github.com/hidenkeys/frontdesk/reservation"
)

// MergePolicy decides whether two single-room reservations belong to one
// party. a never checks in after b.
type MergePolicy func(a, b *reservation.Reservation) bool

// DefaultMergePolicy pairs different rooms whose check-ins are at most one day
// apart and whose floors are at most one apart. Rooms without a known floor
// never pair.
func DefaultMergePolicy(floorOf func(room string) (int, bool)) MergePolicy {
	return func(a, b *reservation.Reservation) bool {
		sa, sb := a.Rooms[0], b.Rooms[0]
		if sa.RoomNumber == sb.RoomNumber {
			return false
		}
		if days := reservation.DaysBetween(sa.Checkin, sb.Checkin); days < -1 || days > 1 {
			return false
		}
		fa, okA := floorOf(sa.RoomNumber)
		fb, okB := floorOf(sb.RoomNumber)
		if !okA || !okB {
			return false
		}
		diff := fa - fb
		return diff >= -1 && diff <= 1
	}
}

// SameBooker narrows a policy to reservations of the same booker.
func SameBooker(policy MergePolicy) MergePolicy {
	return func(a, b *reservation.Reservation) bool {
		if a.Booker.ProfileID != "" || b.Booker.ProfileID != "" {
			if a.Booker.ProfileID != b.Booker.ProfileID {
				return false
			}
		} else if !strings.EqualFold(strings.TrimSpace(a.Booker.Name), strings.TrimSpace(b.Booker.Name)) {
			return false
		}
		return policy(a, b)
	}
}

type MergedPair struct {
	Into     string   `json:"into"`
	Absorbed string   `json:"absorbed"`
	Rooms    []string `json:"rooms"`
}

type MergeReport struct {
	Merged []MergedPair `json:"merged"`
}

func mergeCandidate(r *reservation.Reservation) bool {
	if len(r.Rooms) != 1 || r.Status.ReleasesCapacity() {
		return false
	}
	switch r.Status {
	case reservation.StatusCheckedOut, reservation.StatusBlocked:
		return false
	}
	return !r.Rooms[0].Status.ReleasesCapacity()
}

// Merge folds pairs of single-room reservations accepted by policy into
// multi-room reservations in one pass. A reservation takes part in at most
// one merge per pass, and merged reservations are multi-room, so running it
// again does not touch them.
func (s *Service) Merge(policy MergePolicy) (MergeReport, error) {
	report := MergeReport{Merged: []MergedPair{}}

	err := s.store.Update(func(tx *ledger.Tx) error {
		var candidates []*reservation.Reservation
		for _, r := range tx.Reservations() {
			if mergeCandidate(r) {
				candidates = append(candidates, r)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			ci, cj := candidates[i].Rooms[0].Checkin, candidates[j].Rooms[0].Checkin
			if !ci.Equal(cj) {
				return ci.Before(cj)
			}
			return candidates[i].ID < candidates[j].ID
		})

		used := map[int64]bool{}
		now := tx.Now()
		for i, a := range candidates {
			if used[a.ID] {
				continue
			}
			for _, b := range candidates[i+1:] {
				if used[b.ID] || !policy(a, b) {
					continue
				}
				tx.Put(absorb(a, b, now))
				tx.Remove(b.ID)
				used[a.ID], used[b.ID] = true, true
				report.Merged = append(report.Merged, MergedPair{
					Into:     a.BookingRef,
					Absorbed: b.BookingRef,
					Rooms:    []string{a.Rooms[0].RoomNumber, b.Rooms[0].RoomNumber},
				})
				break
			}
		}
		return nil
	})
	if err != nil {
		s.logRejected("Merge", nil, err)
		return MergeReport{Merged: []MergedPair{}}, err
	}

	s.log.WithField("module", "assignment").WithField("merged", len(report.Merged)).Info("merge pass finished")
	return report, nil
}

// absorb appends b's stay and billing records to a copy of a. b's payments are
// renumbered after a's so payment ids stay unique.
func absorb(a, b *reservation.Reservation, now time.Time) *reservation.Reservation {
	next := a.Clone()
	donor := b.Clone()

	next.Rooms = append(next.Rooms, donor.Rooms...)
	next.Extras = append(next.Extras, donor.Extras...)
	next.Invoices = append(next.Invoices, donor.Invoices...)
	next.Reminders = append(next.Reminders, donor.Reminders...)

	base := 0
	for _, p := range next.Payments {
		if p.ID > base {
			base = p.ID
		}
	}
	for _, p := range donor.Payments {
		base++
		p.ID = base
		next.Payments = append(next.Payments, p)
	}

	if name := strings.TrimSpace(next.Booker.Name); name != "" {
		next.GuestName = name
	}
	if next.Notes == "" {
		next.Notes = donor.Notes
	} else if donor.Notes != "" {
		next.Notes = next.Notes + "\n" + donor.Notes
	}
	next.Status = lifecycle.DeriveStatus(a.Status, next.Rooms)
	next.Log(now, ActionMerged, fmt.Sprintf("merged %s (room %s) into this reservation", b.BookingRef, b.Rooms[0].RoomNumber))
	return next
}
