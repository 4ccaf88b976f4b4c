package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/hidenkeys/frontdesk/reservation"
	"google.golang.org/api/option"
)

const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// SyncEvent is what other devices receive for each persisted change.
type SyncEvent struct {
	Action      string          `json:"action"`
	BookingRef  string          `json:"booking_ref"`
	Status      string          `json:"status,omitempty"`
	At          time.Time       `json:"at"`
	Reservation json.RawMessage `json:"reservation,omitempty"`
}

// PubSubSink fans ledger changes out to a topic, ordered per booking ref.
type PubSubSink struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubSink uses Application Default Credentials unless credJSON is set.
func NewPubSubSink(ctx context.Context, projectID, topic, credJSON string) (*PubSubSink, error) {
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}
	if topic == "" {
		return nil, errors.New("PUBSUB_TOPIC is required")
	}

	var opts []option.ClientOption
	if credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	t := client.Topic(topic)
	t.EnableMessageOrdering = true
	return &PubSubSink{client: client, topic: t}, nil
}

func (p *PubSubSink) UpsertReservation(ctx context.Context, r *reservation.Reservation) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.publish(ctx, SyncEvent{
		Action:      ActionUpsert,
		BookingRef:  r.BookingRef,
		Status:      string(r.Status),
		At:          r.UpdatedAt,
		Reservation: payload,
	}, r.ID)
}

func (p *PubSubSink) DeleteReservation(ctx context.Context, bookingRef string) error {
	return p.publish(ctx, SyncEvent{Action: ActionDelete, BookingRef: bookingRef, At: time.Now()}, 0)
}

func (p *PubSubSink) publish(ctx context.Context, ev SyncEvent, id int64) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	attrs := map[string]string{"action": ev.Action}
	if id > 0 {
		attrs["reservation_id"] = strconv.FormatInt(id, 10)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:        data,
		OrderingKey: ev.BookingRef,
		Attributes:  attrs,
	})
	if _, err := result.Get(ctx); err != nil {
		// a failed ordered publish pauses the key until resumed
		p.topic.ResumePublish(ev.BookingRef)
		return fmt.Errorf("publish %s %s: %w", ev.Action, ev.BookingRef, err)
	}
	return nil
}

func (p *PubSubSink) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
