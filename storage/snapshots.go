package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hidenkeys/frontdesk/config"
	"github.com/hidenkeys/frontdesk/customer"
	"github.com/hidenkeys/frontdesk/reservation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationSnapshot is the last known whole-record state of a reservation.
type ReservationSnapshot struct {
	BookingRef    string `gorm:"primaryKey;size:32"`
	ReservationID int64  `gorm:"index"`
	Status        string `gorm:"size:32"`
	Payload       string `gorm:"type:longtext"`
	UpdatedAt     time.Time
}

func (ReservationSnapshot) TableName() string {
	return "reservation_snapshots"
}

type ProfileSnapshot struct {
	ProfileID string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:255;index"`
	Payload   string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

func (ProfileSnapshot) TableName() string {
	return "profile_snapshots"
}

// Snapshots persists reservations and profiles as JSON documents with
// last-write-wins upserts.
type Snapshots struct {
	db *gorm.DB
}

func NewSnapshots(db *gorm.DB) *Snapshots {
	return &Snapshots{db: db}
}

func (s *Snapshots) UpsertReservation(ctx context.Context, r *reservation.Reservation) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.BookingRef, err)
	}
	row := ReservationSnapshot{
		BookingRef:    r.BookingRef,
		ReservationID: r.ID,
		Status:        string(r.Status),
		Payload:       string(payload),
		UpdatedAt:     r.UpdatedAt,
	}
	if result := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row); result.Error != nil {
		return fmt.Errorf("upsert %s: %w", r.BookingRef, result.Error)
	}
	return nil
}

func (s *Snapshots) DeleteReservation(ctx context.Context, bookingRef string) error {
	if result := s.db.WithContext(ctx).Where("booking_ref = ?", bookingRef).Delete(&ReservationSnapshot{}); result.Error != nil {
		return fmt.Errorf("delete %s: %w", bookingRef, result.Error)
	}
	return nil
}

// LoadReservations returns the stored payloads ordered by reservation id,
// undecoded; the ledger decides which ones are usable.
func (s *Snapshots) LoadReservations(ctx context.Context) ([]json.RawMessage, error) {
	var rows []ReservationSnapshot
	if result := s.db.WithContext(ctx).Order("reservation_id").Find(&rows); result.Error != nil {
		return nil, result.Error
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, json.RawMessage(row.Payload))
	}
	return out, nil
}

func (s *Snapshots) UpsertProfile(ctx context.Context, p *customer.Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.ID, err)
	}
	row := ProfileSnapshot{
		ProfileID: p.ID,
		Name:      p.DisplayName(),
		Payload:   string(payload),
		UpdatedAt: p.UpdatedAt,
	}
	if result := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row); result.Error != nil {
		return fmt.Errorf("upsert profile %s: %w", p.ID, result.Error)
	}
	return nil
}

// LoadProfiles skips payloads that no longer decode.
func (s *Snapshots) LoadProfiles(ctx context.Context) ([]*customer.Profile, error) {
	var rows []ProfileSnapshot
	if result := s.db.WithContext(ctx).Order("profile_id").Find(&rows); result.Error != nil {
		return nil, result.Error
	}
	out := make([]*customer.Profile, 0, len(rows))
	for _, row := range rows {
		p := new(customer.Profile)
		if err := json.Unmarshal([]byte(row.Payload), p); err != nil {
			config.GetLogger().WithField("module", "storage").WithField("profile", row.ProfileID).
				Warn("skipping undecodable profile: " + err.Error())
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
