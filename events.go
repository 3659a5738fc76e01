package main

// ScheduledEvent is a countdown-driven callback. One-shot events fire once
// when the countdown runs out; recurring events fire on every advance and
// call Done when the countdown expires.
type ScheduledEvent struct {
	Remaining float64
	Recurring bool
	Tick      func(dt float64)
	Done      func()
	cancelled bool
}

// Cancel stops the event from firing again
func (e *ScheduledEvent) Cancel() {
	e.cancelled = true
}

// EventQueue holds the scheduled events of a room or a character
type EventQueue struct {
	events  []*ScheduledEvent
	pending []*ScheduledEvent
	running bool
	cleared bool
}

// Schedule runs fn once after delay seconds
func (q *EventQueue) Schedule(delay float64, fn func()) *ScheduledEvent {
	return q.add(&ScheduledEvent{Remaining: delay, Done: fn})
}

// ScheduleRecurring runs tick every advance for duration seconds, then done
func (q *EventQueue) ScheduleRecurring(duration float64, tick func(dt float64), done func()) *ScheduledEvent {
	return q.add(&ScheduledEvent{Remaining: duration, Recurring: true, Tick: tick, Done: done})
}

func (q *EventQueue) add(e *ScheduledEvent) *ScheduledEvent {
	if q.running {
		q.pending = append(q.pending, e)
	} else {
		q.events = append(q.events, e)
	}
	return e
}

// Advance counts every event down by dt and fires what is due. Events
// scheduled by a callback start counting on the next advance.
func (q *EventQueue) Advance(dt float64) {
	q.running = true
	kept := q.events[:0]
	for _, e := range q.events {
		if e.cancelled {
			continue
		}
		e.Remaining -= dt
		if e.Recurring && e.Tick != nil {
			e.Tick(dt)
		}
		if e.cancelled {
			continue
		}
		if e.Remaining <= 0 {
			if e.Done != nil {
				e.Done()
			}
			continue
		}
		kept = append(kept, e)
	}
	q.running = false
	if q.cleared {
		q.cleared = false
		q.events, q.pending = q.pending, nil
		return
	}
	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = nil
	}
	q.events = append(kept, q.pending...)
	q.pending = nil
}

// Clear discards every event without firing it
func (q *EventQueue) Clear() {
	for _, e := range q.events {
		e.cancelled = true
	}
	for _, e := range q.pending {
		e.cancelled = true
	}
	q.events = nil
	q.pending = nil
	if q.running {
		q.cleared = true
	}
}

// Len returns the number of live events
func (q *EventQueue) Len() int {
	n := 0
	for _, e := range q.events {
		if !e.cancelled {
			n++
		}
	}
	for _, e := range q.pending {
		if !e.cancelled {
			n++
		}
	}
	return n
}
