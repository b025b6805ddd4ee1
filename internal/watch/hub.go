// Package watch delivers full ticket snapshots to subscribers push-style.
// The hub decouples the synchronous lifecycle logic from asynchronous
// delivery: services publish committed snapshots, subscribers consume them
// over a channel with an idempotent cancellation handle.
package watch

import (
	"sync"

	"github.com/elotech/helpdesk/internal/domain"
)

const subscriberBuffer = 16

// Subscription is a live feed of ticket snapshots. Delivery is
// at-least-once: a snapshot may still arrive after Cancel is called, and
// consumers must tolerate that.
type Subscription struct {
	C <-chan domain.TicketSnapshot

	once   sync.Once
	cancel func()
}

// Cancel detaches the subscription. Safe to call multiple times.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

type subscriber struct {
	ch chan domain.TicketSnapshot
}

// Hub fans snapshots out to per-ticket, per-requester and firehose
// subscribers.
type Hub struct {
	mu          sync.RWMutex
	byTicket    map[string]map[*subscriber]struct{}
	byRequester map[string]map[*subscriber]struct{}
	all         map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		byTicket:    make(map[string]map[*subscriber]struct{}),
		byRequester: make(map[string]map[*subscriber]struct{}),
		all:         make(map[*subscriber]struct{}),
	}
}

// SubscribeTicket observes a single ticket.
func (h *Hub) SubscribeTicket(ticketID string) *Subscription {
	return h.subscribe(h.byTicket, ticketID)
}

// SubscribeRequester observes every ticket filed by a requester.
func (h *Hub) SubscribeRequester(userID string) *Subscription {
	return h.subscribe(h.byRequester, userID)
}

// SubscribeAll observes every ticket (administrator view).
func (h *Hub) SubscribeAll() *Subscription {
	sub := &subscriber{ch: make(chan domain.TicketSnapshot, subscriberBuffer)}

	h.mu.Lock()
	h.all[sub] = struct{}{}
	h.mu.Unlock()

	return &Subscription{
		C: sub.ch,
		cancel: func() {
			h.mu.Lock()
			delete(h.all, sub)
			h.mu.Unlock()
		},
	}
}

func (h *Hub) subscribe(index map[string]map[*subscriber]struct{}, key string) *Subscription {
	sub := &subscriber{ch: make(chan domain.TicketSnapshot, subscriberBuffer)}

	h.mu.Lock()
	if index[key] == nil {
		index[key] = make(map[*subscriber]struct{})
	}
	index[key][sub] = struct{}{}
	h.mu.Unlock()

	return &Subscription{
		C: sub.ch,
		cancel: func() {
			h.mu.Lock()
			delete(index[key], sub)
			if len(index[key]) == 0 {
				delete(index, key)
			}
			h.mu.Unlock()
		},
	}
}

// Publish fans a snapshot out to every matching subscriber. Sends never
// block: when a subscriber's buffer is full the oldest pending snapshot is
// dropped so the latest state always gets through.
func (h *Hub) Publish(snapshot domain.TicketSnapshot) {
	h.mu.RLock()
	targets := make([]*subscriber, 0)
	for sub := range h.byTicket[snapshot.ID] {
		targets = append(targets, sub)
	}
	for sub := range h.byRequester[snapshot.RequesterID] {
		targets = append(targets, sub)
	}
	for sub := range h.all {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		for {
			select {
			case sub.ch <- snapshot:
			default:
				select {
				case <-sub.ch:
				default:
				}
				continue
			}
			break
		}
	}
}
