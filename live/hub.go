// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"sync"

	"ballotbox/models"
)

// subscriberBuffer is the per-subscriber queue depth. A subscriber that
// falls further behind misses updates and must re-fetch the tally.
const subscriberBuffer = 8

// Hub fans tally updates out to live subscribers. Channels are scoped per
// election, so updates for one election never reach clients watching
// another. Delivery is best-effort: Publish never blocks on a slow
// subscriber and missed updates are not replayed.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan models.TallyPayload]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan models.TallyPayload]struct{})}
}

// Subscribe registers a listener for one election's tally updates.
// The returned cancel func must be called to release the subscription;
// it closes the channel.
func (h *Hub) Subscribe(electionID string) (<-chan models.TallyPayload, func()) {
	ch := make(chan models.TallyPayload, subscriberBuffer)

	h.mu.Lock()
	if h.subs[electionID] == nil {
		h.subs[electionID] = make(map[chan models.TallyPayload]struct{})
	}
	h.subs[electionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[electionID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, electionID)
			}
		}
	}
	return ch, cancel
}

// Publish pushes a tally payload to every subscriber of the election.
// Non-blocking: subscribers with full buffers drop the update.
func (h *Hub) Publish(electionID string, payload models.TallyPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[electionID] {
		select {
		case ch <- payload:
		default:
			// Slow subscriber: drop. It re-fetches on reconnect.
		}
	}
}

// SubscriberCount reports how many listeners an election currently has.
func (h *Hub) SubscriberCount(electionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[electionID])
}
