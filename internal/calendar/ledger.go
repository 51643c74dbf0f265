package calendar

// UsageLedger counts placements per lesson id for a single allocation run.
// It is created fresh per run and never shared between runs.
type UsageLedger struct {
	counts map[string]int
}

// NewUsageLedger returns an empty ledger.
func NewUsageLedger() *UsageLedger {
	return &UsageLedger{counts: make(map[string]int)}
}

// Count reports how many times the lesson has been placed so far.
func (l *UsageLedger) Count(lessonID string) int {
	return l.counts[lessonID]
}

// Increment records one more placement of the lesson.
func (l *UsageLedger) Increment(lessonID string) {
	l.counts[lessonID]++
}

// Snapshot copies the current counts.
func (l *UsageLedger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.counts))
	for id, n := range l.counts {
		out[id] = n
	}
	return out
}

// leastUsed picks the candidate with the lowest count; ties go to the
// earliest candidate, which is pool order.
func (l *UsageLedger) leastUsed(candidates []LessonUnit) (LessonUnit, bool) {
	if len(candidates) == 0 {
		return LessonUnit{}, false
	}
	best := candidates[0]
	bestCount := l.counts[best.ID]
	for _, candidate := range candidates[1:] {
		if n := l.counts[candidate.ID]; n < bestCount {
			best, bestCount = candidate, n
		}
	}
	return best, true
}
