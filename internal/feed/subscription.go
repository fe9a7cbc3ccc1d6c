package feed

import (
	"context"
	"sync"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/cockroachdb/errors"
)

// BufferSize is the buffer size of the hand-off channel of every
// subscription. Values beyond it are queued by the subscription itself, so a
// slow or absent consumer never stalls the publisher.
var BufferSize = 64

// Subscription forwards values from a [Feed] to the channel of one consumer.
type Subscription[T any] struct {
	// The channel which the subscription sends values.
	channel chan<- T

	// The in channel receives values from the feed.
	in chan T

	quitOnce sync.Once

	// Closing is requested by sending on 'quit', true to deliver queued values
	// first. The forwarding loop closes 'quitDone' once it has stopped sending
	// to 'channel'. Closing 'abort' cuts a delivery short.
	quit     chan bool
	abort    chan struct{}
	quitDone chan struct{}
}

func newSubscription[T any](channel chan<- T) *Subscription[T] {
	s := &Subscription[T]{
		channel:  channel,
		in:       make(chan T, BufferSize),
		quit:     make(chan bool),
		abort:    make(chan struct{}),
		quitDone: make(chan struct{}),
	}
	go s.run()
	return s
}

// Unsubscribe stops forwarding. Values still queued are dropped.
func (s *Subscription[T]) Unsubscribe() {
	_ = s.UnsubscribeWithContext(context.Background())
}

func (s *Subscription[T]) UnsubscribeWithContext(ctx context.Context) error {
	return s.stop(ctx, false)
}

// Drain stops the subscription once every value it already received has been
// delivered to the channel. The consumer must keep receiving until Drain
// returns. If ctx is done first the rest is dropped and ctx's error returned.
func (s *Subscription[T]) Drain(ctx context.Context) error {
	return s.stop(ctx, true)
}

func (s *Subscription[T]) stop(ctx context.Context, deliver bool) (err error) {
	s.quitOnce.Do(func() {
		select {
		case s.quit <- deliver:
		case <-s.quitDone:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
		select {
		case <-s.quitDone:
		case <-ctx.Done():
			close(s.abort)
			<-s.quitDone
			err = ctx.Err()
		}
	})
	return errors.WithStack(err)
}

// Done returns the done channel of the subscription
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.quitDone
}

// IsClosed returns status of the subscription
func (s *Subscription[T]) IsClosed() bool {
	select {
	case <-s.quitDone:
		return true
	default:
		return false
	}
}

func (s *Subscription[T]) send(ctx context.Context, value T) error {
	select {
	case s.in <- value:
	case <-s.quitDone:
		return errors.Wrap(errs.InternalError, "subscription is closed")
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
	return nil
}

func (s *Subscription[T]) run() {
	defer close(s.quitDone)

	var queue []T
	for {
		// a nil out channel disables the delivery case while the queue is empty
		var out chan<- T
		var next T
		if len(queue) > 0 {
			out, next = s.channel, queue[0]
		}
		select {
		case deliver := <-s.quit:
			if deliver {
				s.deliver(queue)
			}
			return
		case value := <-s.in:
			queue = append(queue, value)
		case out <- next:
			var zero T
			queue[0] = zero
			queue = queue[1:]
		}
	}
}

// deliver forwards queue and whatever is still buffered in 'in' until both
// are empty or the delivery is aborted.
func (s *Subscription[T]) deliver(queue []T) {
	for {
		select {
		case value := <-s.in:
			queue = append(queue, value)
			continue
		default:
		}
		if len(queue) == 0 {
			return
		}
		select {
		case s.channel <- queue[0]:
			queue = queue[1:]
		case <-s.abort:
			return
		}
	}
}
