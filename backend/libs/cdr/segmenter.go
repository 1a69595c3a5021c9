package cdr

import (
	"slices"
	"time"
)

// ChargingState is a session lifecycle state reported by the charging station.
type ChargingState string

// Charging states. Only ChargingStateCharging counts as charging time.
const (
	ChargingStateConnected     ChargingState = "Connected"
	ChargingStateCharging      ChargingState = "Charging"
	ChargingStateSuspendedEV   ChargingState = "SuspendedEV"
	ChargingStateSuspendedEVSE ChargingState = "SuspendedEVSE"
	ChargingStateIdle          ChargingState = "Idle"
	ChargingStateEnded         ChargingState = "Ended"
)

// ChargingStateEvent marks the moment a session entered a state.
type ChargingStateEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	State     ChargingState `json:"state"`
}

// IntervalKind classifies a sub-interval of a session.
type IntervalKind string

// Interval kinds.
const (
	IntervalCharging IntervalKind = "Charging"
	IntervalIdle     IntervalKind = "Idle"
)

func (s ChargingState) intervalKind() IntervalKind {
	if s == ChargingStateCharging {
		return IntervalCharging
	}
	return IntervalIdle
}

type interval struct {
	start time.Time
	end   time.Time
	kind  IntervalKind
}

func (iv interval) duration() time.Duration { return iv.end.Sub(iv.start) }

// segment splits [start, end) into contiguous charging and idle intervals.
// Without events the whole session is charging.
func segment(start, end time.Time, events []ChargingStateEvent) []interval {
	if len(events) == 0 {
		return []interval{{start: start, end: end, kind: IntervalCharging}}
	}

	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b ChargingStateEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	var out []interval
	cursor, current := start, IntervalCharging
	for _, ev := range ordered {
		if !ev.Timestamp.Before(end) {
			break
		}
		kind := ev.State.intervalKind()
		if !ev.Timestamp.After(cursor) {
			current = kind
			continue
		}
		if kind == current {
			continue
		}
		out = appendInterval(out, interval{start: cursor, end: ev.Timestamp, kind: current})
		cursor, current = ev.Timestamp, kind
	}
	return appendInterval(out, interval{start: cursor, end: end, kind: current})
}

// appendInterval extends the previous interval when it has the same kind.
func appendInterval(out []interval, iv interval) []interval {
	if n := len(out); n > 0 && out[n-1].kind == iv.kind && out[n-1].end.Equal(iv.start) {
		out[n-1].end = iv.end
		return out
	}
	return append(out, iv)
}
