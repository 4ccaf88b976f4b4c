package reservation

import "time"

// Clone returns a deep copy. Mutations always happen on a clone which then
// replaces the stored value, so holders of the old pointer never see a
// half-written record.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	out := *r
	out.OptionExpiry = cloneTime(r.OptionExpiry)
	out.Rooms = cloneStays(r.Rooms)
	if r.Extras != nil {
		out.Extras = make([]Extra, len(r.Extras))
		for i, e := range r.Extras {
			e.Room = cloneString(e.Room)
			out.Extras[i] = e
		}
	}
	if r.Payments != nil {
		out.Payments = make([]Payment, len(r.Payments))
		for i, p := range r.Payments {
			p.LinkedInvoice = cloneString(p.LinkedInvoice)
			out.Payments[i] = p
		}
	}
	if r.Invoices != nil {
		out.Invoices = append([]Invoice{}, r.Invoices...)
	}
	if r.ActivityLog != nil {
		out.ActivityLog = append([]ActivityEntry{}, r.ActivityLog...)
	}
	if r.Reminders != nil {
		out.Reminders = append([]Reminder{}, r.Reminders...)
	}
	return &out
}

func (s RoomStay) Clone() RoomStay {
	out := s
	out.OptionExpiry = cloneTime(s.OptionExpiry)
	if s.Guests != nil {
		out.Guests = append([]Guest{}, s.Guests...)
	}
	if s.NightPrices != nil {
		out.NightPrices = append([]NightPrice{}, s.NightPrices...)
	}
	return out
}

func cloneStays(stays []RoomStay) []RoomStay {
	if stays == nil {
		return nil
	}
	out := make([]RoomStay, len(stays))
	for i, s := range stays {
		out[i] = s.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
