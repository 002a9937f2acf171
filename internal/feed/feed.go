// Package feed is the change-notification boundary between the scheduling
// core and dashboard clients. Mutations publish an Event on a topic keyed by
// (table, doctor); subscribers receive the changed row and resynchronize.
//
// The core never depends on a concrete transport: RedisFeed carries events
// across processes, MemoryFeed serves tests and single-node runs.
package feed

import (
	"context"
	"encoding/json"
	"time"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Event describes one changed row. Doctor is the filter key dashboards
// subscribe with; empty means "all doctors" for that table.
type Event struct {
	Table  string          `json:"table"`
	Op     Op              `json:"op"`
	Doctor string          `json:"doctor,omitempty"`
	Row    json.RawMessage `json:"row,omitempty"`
	At     time.Time       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscriber delivers events for one (table, doctor) topic. The returned stop
// function tears the subscription down; the channel is closed afterwards.
type Subscriber interface {
	Subscribe(ctx context.Context, table, doctor string) (<-chan Event, func(), error)
}

// Topic is the channel name for a (table, doctor) pair.
func Topic(table, doctor string) string {
	if doctor == "" {
		return "feed:" + table
	}
	return "feed:" + table + ":" + doctor
}
