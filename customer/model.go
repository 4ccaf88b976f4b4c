package customer

import (
	"strings"
	"time"
)

// Profile is a booker or guest record shared across reservations.
type Profile struct {
	ID        string    `json:"id" validate:"required"`
	FirstName string    `json:"firstName" validate:"required"`
	LastName  string    `json:"lastName" validate:"required"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	Company   string    `json:"company,omitempty"`
	VATNumber string    `json:"vatNumber,omitempty"`
	Cards     []Card    `json:"cards" validate:"dive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Card is a stored payment card. Only the last four digits are kept.
type Card struct {
	ID         string `json:"id" validate:"required"`
	ProfileID  string `json:"profileId"`
	Holder     string `json:"holder" validate:"required"`
	Brand      string `json:"brand,omitempty"`
	Last4      string `json:"last4" validate:"required,len=4,numeric"`
	ExpMonth   int    `json:"expMonth" validate:"min=1,max=12"`
	ExpYear    int    `json:"expYear" validate:"min=2000"`
	Virtual    bool   `json:"virtual"`
	AutoCharge bool   `json:"autoCharge"`
}

func (p Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// OwnedBy reports whether the card belongs to the booker. A booker with a
// profile owns exactly that profile's cards; the case-insensitive holder name
// only decides for bookers and cards that both lack a profile.
func (c Card) OwnedBy(profileID, name string) bool {
	if profileID != "" || c.ProfileID != "" {
		return profileID != "" && c.ProfileID == profileID
	}
	name = strings.TrimSpace(name)
	return name != "" && strings.EqualFold(strings.TrimSpace(c.Holder), name)
}

// Expired reports whether the card is past its expiry month at now.
func (c Card) Expired(now time.Time) bool {
	y, m, _ := now.Date()
	return c.ExpYear < y || (c.ExpYear == y && c.ExpMonth < int(m))
}

func (p Profile) clone() *Profile {
	out := p
	out.Cards = append([]Card(nil), p.Cards...)
	return &out
}
