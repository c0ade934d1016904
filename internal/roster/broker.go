// Package roster fans live roster snapshots out to subscribed viewers.
// Snapshots travel between processes over Redis pub/sub and inside a
// process over cancellable channel subscriptions.
package roster

import (
	"sync"

	"rollcall/internal/metrics"
	"rollcall/internal/session"
)

// Snapshot is the full arrival-ordered roster of one session at a point
// in time. Whole-snapshot delivery keeps subscribers order-correct even
// if a notification is dropped.
type Snapshot struct {
	SessionID string           `json:"session_id"`
	Records   []session.Record `json:"records"`
}

// Broker delivers snapshots to in-process subscribers per session.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Snapshot]struct{}
	mc   metrics.Recorder
}

// NewBroker creates a broker. mc may be nil.
func NewBroker(mc metrics.Recorder) *Broker {
	if mc == nil {
		mc = metrics.Noop{}
	}
	return &Broker{subs: make(map[string]map[chan Snapshot]struct{}), mc: mc}
}

// Subscribe registers a viewer for one session. The returned cancel
// function is safe to call more than once and must be called on every
// exit path; after cancel the channel is closed and never written again.
func (b *Broker) Subscribe(sessionID string) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Snapshot]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	b.mc.AddRosterSubscribers(1)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[sessionID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(b.subs, sessionID)
				}
			}
			b.mu.Unlock()
			close(ch)
			b.mc.AddRosterSubscribers(-1)
		})
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber of its session. Slow
// subscribers drop the update; the next snapshot supersedes it anyway.
func (b *Broker) Publish(snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[snap.SessionID] {
		select {
		case ch <- snap:
		default:
		}
	}
}
