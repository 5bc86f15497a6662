package domain

import "time"

// NextPhaseIndex returns the position after current in a ring of n phases.
// Rings of length one or less collapse to a 0->0 self-loop.
func NextPhaseIndex(current, n int) int {
	if n <= 1 {
		return 0
	}
	next := (current + 1) % n
	if next < 0 {
		next += n
	}
	return next
}

// LatestTransition picks the chronologically latest transition. Equal
// timestamps resolve to the higher id, which is the later insertion.
func LatestTransition(transitions []Transition) (Transition, bool) {
	var latest Transition
	found := false
	for _, t := range transitions {
		if !found || t.TransitionedAt.After(latest.TransitionedAt) ||
			(t.TransitionedAt.Equal(latest.TransitionedAt) && t.ID > latest.ID) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// RecomputePointer derives a task's position from its transition log alone.
func RecomputePointer(createdAt time.Time, transitions []Transition) Pointer {
	latest, ok := LatestTransition(transitions)
	if !ok {
		return Pointer{Index: 0, Since: createdAt}
	}
	return Pointer{Index: latest.ToPhaseIndex, Since: latest.TransitionedAt}
}
