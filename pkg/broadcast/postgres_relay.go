package broadcast

import (
	"Go-Shopping-Sync/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	RelayChannel = "shopping_list_events"

	// Postgres rejects NOTIFY payloads of 8000 bytes or more.
	maxNotifyPayload = 7999

	relayRetryDelay = 2 * time.Second
)

var ErrPayloadTooLarge = errors.New("event payload exceeds notify limit")

type (
	// Envelope is an event as it travels between instances.
	Envelope struct {
		Origin        string          `json:"origin"`
		StoreID       string          `json:"storeId"`
		ExcludeViewer string          `json:"excludeViewer,omitempty"`
		Type          string          `json:"type"`
		Payload       json.RawMessage `json:"payload,omitempty"`
		// Reference replaces Payload when the event is too large to notify.
		// Receivers rebuild the event from their own copy of the list.
		Reference *ListReference `json:"reference,omitempty"`
	}

	ListReference struct {
		UpdatedBy string `json:"updatedBy"`
		Timestamp int64  `json:"timestamp"`
	}

	// Relay carries envelopes to the other instances serving the same stores.
	Relay interface {
		Publish(ctx context.Context, env Envelope) error
		// Listen blocks, handing envelopes from other instances to deliver,
		// until ctx is done.
		Listen(ctx context.Context, deliver func(Envelope)) error
	}

	PostgresRelay struct {
		pool       *pgxpool.Pool
		channel    string
		instanceID string
	}
)

func NewPostgresRelay(pool *pgxpool.Pool) *PostgresRelay {
	return &PostgresRelay{
		pool:       pool,
		channel:    RelayChannel,
		instanceID: uuid.NewString(),
	}
}

func (r *PostgresRelay) InstanceID() string {
	return r.instanceID
}

func (r *PostgresRelay) Publish(ctx context.Context, env Envelope) error {
	payload, err := encodeEnvelope(env, r.instanceID)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, "SELECT pg_notify($1, $2)", r.channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", r.channel, err)
	}
	return nil
}

func (r *PostgresRelay) Listen(ctx context.Context, deliver func(Envelope)) error {
	for {
		err := r.listen(ctx, deliver)
		if ctx.Err() != nil {
			return nil
		}
		log.Warnw("relay listen interrupted, retrying", "channel", r.channel, "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(relayRetryDelay):
		}
	}
}

func (r *PostgresRelay) listen(ctx context.Context, deliver func(Envelope)) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{r.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", r.channel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		env, ok := decodeEnvelope(notification.Payload, r.instanceID)
		if !ok {
			continue
		}
		deliver(env)
	}
}

func encodeEnvelope(env Envelope, origin string) (string, error) {
	env.Origin = origin
	payload, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	if len(payload) <= maxNotifyPayload {
		return string(payload), nil
	}
	if env.Type != domain.EventListUpdated {
		return "", fmt.Errorf("%w: %s event for store %s is %d bytes", ErrPayloadTooLarge, env.Type, env.StoreID, len(payload))
	}

	ref, err := referenceEnvelope(env)
	if err != nil {
		return "", err
	}
	payload, err = json.Marshal(ref)
	if err != nil {
		return "", err
	}
	if len(payload) > maxNotifyPayload {
		return "", fmt.Errorf("%w: reference for store %s is %d bytes", ErrPayloadTooLarge, env.StoreID, len(payload))
	}
	return string(payload), nil
}

// referenceEnvelope drops the item list from a list_updated envelope.
func referenceEnvelope(env Envelope) (Envelope, error) {
	var event domain.ListUpdatedEvent
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		return Envelope{}, fmt.Errorf("decode list_updated payload: %w", err)
	}
	env.Payload = nil
	env.Reference = &ListReference{UpdatedBy: event.UpdatedBy, Timestamp: event.Timestamp}
	return env, nil
}

// decodeEnvelope drops malformed payloads and envelopes this instance sent.
func decodeEnvelope(payload, self string) (Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.Warnw("discarding malformed relay payload", "error", err)
		return Envelope{}, false
	}
	if env.Origin == self || env.StoreID == "" {
		return Envelope{}, false
	}
	return env, true
}
