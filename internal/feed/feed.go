// Package feed fans published values out to any number of subscribers.
package feed

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Feed delivers every sent value to all live subscriptions, in send order.
type Feed[T any] struct {
	mu   sync.Mutex
	subs []*Subscription[T]
}

func New[T any]() *Feed[T] {
	return &Feed[T]{}
}

// Subscribe registers channel as a consumer of subsequent values.
func (f *Feed[T]) Subscribe(channel chan<- T) *Subscription[T] {
	sub := newSubscription(channel)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
	return sub
}

// Send delivers value to every live subscription and returns the number of
// subscriptions reached. Closed subscriptions are pruned.
func (f *Feed[T]) Send(ctx context.Context, value T) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	live := f.subs[:0]
	sent := 0
	for _, sub := range f.subs {
		if sub.IsClosed() {
			continue
		}
		live = append(live, sub)
		if err := sub.send(ctx, value); err != nil {
			if ctx.Err() != nil {
				return sent, errors.WithStack(ctx.Err())
			}
			continue
		}
		sent++
	}
	clear(f.subs[len(live):])
	f.subs = live
	return sent, nil
}

// Close unsubscribes every subscription.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	subs := f.subs
	f.subs = nil
	f.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
