package sim

import "container/heap"

// queueEntry wraps an event with the sequence number it was scheduled under.
type queueEntry struct {
	event Event
	seqID int64
}

// eventHeap implements heap.Interface with deterministic ordering:
// timestamp, then scheduling order.
type eventHeap []queueEntry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].event.Timestamp(), h[j].event.Timestamp()
	if ti != tj {
		return ti < tj
	}
	return h[i].seqID < h[j].seqID
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queueEntry))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EventQueue is a min-heap of pending events. Events with equal timestamps
// pop in the order they were scheduled.
type EventQueue struct {
	events  eventHeap
	nextSeq int64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make(eventHeap, 0)}
}

// Schedule adds an event.
func (q *EventQueue) Schedule(ev Event) {
	heap.Push(&q.events, queueEntry{event: ev, seqID: q.nextSeq})
	q.nextSeq++
}

// PopNext removes and returns the earliest event, or nil when empty.
func (q *EventQueue) PopNext() Event {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.events).(queueEntry).event
}

// Peek returns the earliest event without removing it, or nil when empty.
func (q *EventQueue) Peek() Event {
	if q.Len() == 0 {
		return nil
	}
	return q.events[0].event
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}
