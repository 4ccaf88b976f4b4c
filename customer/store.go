package customer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hidenkeys/frontdesk/config"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("profile not found")

// Sink receives whole-profile upserts.
type Sink interface {
	UpsertProfile(ctx context.Context, p *Profile) error
}

// Store keeps profiles in memory. Stored profiles are replaced, never edited.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	region   string
	sink     Sink
	clock    func() time.Time
	log      *logrus.Logger
}

func NewStore(region string, sink Sink) *Store {
	return &Store{
		profiles: map[string]*Profile{},
		region:   region,
		sink:     sink,
		clock:    time.Now,
		log:      config.GetLogger(),
	}
}

// Load replaces the profile set without touching the sink.
func (s *Store) Load(profiles []*Profile) {
	next := make(map[string]*Profile, len(profiles))
	for _, p := range profiles {
		if p == nil || p.ID == "" {
			continue
		}
		next[p.ID] = p.clone()
	}
	s.mu.Lock()
	s.profiles = next
	s.mu.Unlock()
}

func (s *Store) Get(id string) (*Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	return p, ok
}

func (s *Store) All() []*Profile {
	s.mu.RLock()
	out := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search matches name, email or phone by substring, case-insensitively.
func (s *Store) Search(term string) []*Profile {
	term = strings.ToLower(strings.TrimSpace(term))
	out := []*Profile{}
	for _, p := range s.All() {
		if term == "" ||
			strings.Contains(strings.ToLower(p.DisplayName()), term) ||
			strings.Contains(strings.ToLower(p.Email), term) ||
			strings.Contains(p.Phone, term) {
			out = append(out, p)
		}
	}
	return out
}

// Put validates p, normalises its phone number and card ownership, stores
// it and upserts the whole profile to the sink.
func (s *Store) Put(ctx context.Context, p Profile) (*Profile, error) {
	next := p.clone()
	if next.Phone != "" {
		phone, err := NormalizePhone(next.Phone, s.region)
		if err != nil {
			return nil, reservation.NewValidationError(err.Error())
		}
		next.Phone = phone
	}
	if next.Cards == nil {
		next.Cards = []Card{}
	}
	for i := range next.Cards {
		next.Cards[i].ProfileID = next.ID
	}
	if err := reservation.Validator().Struct(next); err != nil {
		return nil, reservation.NewValidationError(reservation.Problems(err)...)
	}
	next.UpdatedAt = s.clock()

	s.mu.Lock()
	s.profiles[next.ID] = next
	s.mu.Unlock()

	if s.sink != nil {
		if err := s.sink.UpsertProfile(ctx, next); err != nil {
			config.LogError(s.log, "customer", "Put", "upsert profile", next.ID, err)
			return next, err
		}
	}
	return next, nil
}

// CardsFor returns the cards owned by the booker, across all profiles.
func (s *Store) CardsFor(profileID, name string) []Card {
	var cards []Card
	for _, p := range s.All() {
		for _, c := range p.Cards {
			if c.OwnedBy(profileID, name) {
				cards = append(cards, c)
			}
		}
	}
	return cards
}
