package feed

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process fan-out used in tests and single-node runs.
type MemoryFeed struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[chan Event]struct{})}
}

func (f *MemoryFeed) Publish(_ context.Context, ev Event) error {
	topics := []string{Topic(ev.Table, ev.Doctor)}
	if ev.Doctor != "" {
		topics = append(topics, Topic(ev.Table, ""))
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, topic := range topics {
		for ch := range f.subs[topic] {
			select {
			case ch <- ev:
			default:
				// Slow subscribers lose events rather than block mutations.
			}
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(_ context.Context, table, doctor string) (<-chan Event, func(), error) {
	topic := Topic(table, doctor)
	ch := make(chan Event, 16)

	f.mu.Lock()
	if f.subs[topic] == nil {
		f.subs[topic] = make(map[chan Event]struct{})
	}
	f.subs[topic][ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[topic], ch)
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, stop, nil
}
