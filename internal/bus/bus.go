// Package bus carries chart events between the coordinate broadcaster and
// the state owner without either knowing about the other.
package bus

import "candleview/internal/scale"

// ZoomedEvent is published on every frame of an active gesture.
type ZoomedEvent struct {
	T  scale.Transform
	XZ *scale.Linear // base X rescaled by T
}

// ZoomEndEvent is published once when a gesture settles.
type ZoomEndEvent struct {
	T scale.Transform
}

// SetDomainEvent carries the settled visible time range, rounded to whole ms.
type SetDomainEvent struct {
	Domain [2]int64
}

// Topic delivers events of one type to its subscribers in subscription order.
// It is not safe for concurrent use; all publishing happens on the UI loop.
type Topic[T any] struct {
	subs   []subscriber[T]
	nextID int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every subscriber and returns how many received it.
// Publishing with no subscribers is a silent no-op.
func (t *Topic[T]) Publish(ev T) int {
	subs := t.subs
	for _, s := range subs {
		s.fn(ev)
	}
	return len(subs)
}

// Len returns the number of subscribers.
func (t *Topic[T]) Len() int { return len(t.subs) }

// Bus groups the chart topics.
type Bus struct {
	Zoomed    Topic[ZoomedEvent]
	ZoomEnd   Topic[ZoomEndEvent]
	SetDomain Topic[SetDomainEvent]
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}
