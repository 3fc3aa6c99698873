// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "time"

// WindowStatus reports where an instant falls relative to an election's
// voting window.
type WindowStatus int

const (
	WindowOpen WindowStatus = iota
	WindowNotStarted
	WindowEnded
)

func (s WindowStatus) String() string {
	switch s {
	case WindowNotStarted:
		return "NotStarted"
	case WindowEnded:
		return "Ended"
	default:
		return "Open"
	}
}

// CheckWindow decides whether voting is permitted at now. Bounds are
// inclusive and either may be nil (unbounded). Callers pass their own
// clock; both the ballot-fetch and cast paths re-evaluate at request
// time, never at token-issuance time.
func CheckWindow(startAt, endAt *time.Time, now time.Time) WindowStatus {
	if startAt != nil && now.Before(*startAt) {
		return WindowNotStarted
	}
	if endAt != nil && now.After(*endAt) {
		return WindowEnded
	}
	return WindowOpen
}

// ElectionActive reports whether the election is currently in progress,
// which freezes candidate mutation. An election with no bounds at all is
// never considered in progress; otherwise the window decides.
func ElectionActive(startAt, endAt *time.Time, now time.Time) bool {
	if startAt == nil && endAt == nil {
		return false
	}
	return CheckWindow(startAt, endAt, now) == WindowOpen
}
