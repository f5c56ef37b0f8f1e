package sim

import (
	"container/heap"
	"fmt"
	"math"
)

// eventHeap is a min-heap ordered by (Time, seq).
// Implements heap.Interface.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EventList is the pending-event schedule of a simulation.
// Events pop in time order; events with equal times pop in the order they
// were scheduled, which keeps a run deterministic.
//
// Thread-safety: NOT thread-safe. Owned by a single Engine.
type EventList struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventList creates an empty EventList.
func NewEventList() *EventList {
	l := &EventList{events: make(eventHeap, 0)}
	heap.Init(&l.events)
	return l
}

// Schedule inserts ev in O(log n).
// Panics if ev.Time is NaN or infinite.
func (l *EventList) Schedule(ev Event) {
	if math.IsNaN(ev.Time) || math.IsInf(ev.Time, 0) {
		panic(fmt.Sprintf("EventList.Schedule: invalid event time %v for %s", ev.Time, ev.Kind))
	}
	ev.seq = l.nextSeq
	l.nextSeq++
	heap.Push(&l.events, ev)
}

// PopNext removes and returns the earliest event.
// Panics if the list is empty.
func (l *EventList) PopNext() Event {
	if len(l.events) == 0 {
		panic("EventList.PopNext: event list is empty")
	}
	return heap.Pop(&l.events).(Event)
}

// PeekTime returns the time of the earliest event without removing it.
// Panics if the list is empty.
func (l *EventList) PeekTime() float64 {
	if len(l.events) == 0 {
		panic("EventList.PeekTime: event list is empty")
	}
	return l.events[0].Time
}

// Len returns the number of pending events.
func (l *EventList) Len() int {
	return len(l.events)
}

// Reset drops every pending event and restarts the insertion sequence.
func (l *EventList) Reset() {
	l.events = l.events[:0]
	l.nextSeq = 0
}
