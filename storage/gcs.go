package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/hidenkeys/frontdesk/reservation"
	"google.golang.org/api/option"
)

// GCSSink keeps one JSON object per reservation under reservations/.
type GCSSink struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// NewGCSSink prefers ADC; credJSON overrides it when set.
func NewGCSSink(ctx context.Context, bucket, credJSON string) (*GCSSink, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	handle := client.Bucket(bucket)
	if _, err := handle.Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", bucket, err)
	}
	return &GCSSink{client: client, bucket: handle}, nil
}

func ObjectName(bookingRef string) string {
	return "reservations/" + bookingRef + ".json"
}

func (g *GCSSink) UpsertReservation(ctx context.Context, r *reservation.Reservation) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	wc := g.bucket.Object(ObjectName(r.BookingRef)).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to upload %s: %w", r.BookingRef, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (g *GCSSink) DeleteReservation(ctx context.Context, bookingRef string) error {
	err := g.bucket.Object(ObjectName(bookingRef)).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (g *GCSSink) Close() error {
	return g.client.Close()
}
