package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisFeed fans events out over Redis pub/sub so dashboards connected to any
// API instance observe mutations made on another.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}

	if err := f.client.Publish(ctx, Topic(ev.Table, ev.Doctor), data).Err(); err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	// Unfiltered listeners get every event for the table.
	if ev.Doctor != "" {
		if err := f.client.Publish(ctx, Topic(ev.Table, ""), data).Err(); err != nil {
			return fmt.Errorf("publish feed event: %w", err)
		}
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, table, doctor string) (<-chan Event, func(), error) {
	sub := f.client.Subscribe(ctx, Topic(table, doctor))

	// Force the subscription onto the wire before we report success.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", Topic(table, doctor), err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("feed: dropping malformed event on %s: %v", msg.Channel, err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return out, stop, nil
}
