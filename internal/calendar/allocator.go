package calendar

// Cell is one resolved calendar position.
type Cell struct {
	Month    YearMonth
	Week     int
	Day      Day
	TimeSlot TimeSlot
	Content  ResolvedContent
}

// SlotAllocator turns template intents into concrete content, cell by cell.
// Cells must be resolved in calendar order because every placement mutates
// the shared ledger that later selections read.
type SlotAllocator struct {
	template WeeklyTemplate
	index    *LessonIndex
	ledger   *UsageLedger
}

// NewSlotAllocator binds a resolved template, an index and a ledger. A nil
// ledger starts a fresh one.
func NewSlotAllocator(template WeeklyTemplate, index *LessonIndex, ledger *UsageLedger) *SlotAllocator {
	if ledger == nil {
		ledger = NewUsageLedger()
	}
	return &SlotAllocator{template: template, index: index, ledger: ledger}
}

// Ledger exposes the ledger the allocator mutates.
func (a *SlotAllocator) Ledger() *UsageLedger {
	return a.ledger
}

// Run resolves every cell of the given months in year, month, week, day,
// slot order.
func (a *SlotAllocator) Run(months []YearMonth) []Cell {
	cells := make([]Cell, 0, len(months)*WeeksPerMonth*len(Days)*len(TimeSlots))
	for _, ym := range months {
		for week := 1; week <= WeeksPerMonth; week++ {
			for _, day := range Days {
				for _, slot := range TimeSlots {
					cells = append(cells, Cell{
						Month:    ym,
						Week:     week,
						Day:      day,
						TimeSlot: slot,
						Content:  a.Resolve(ym, week, day, slot),
					})
				}
			}
		}
	}
	return cells
}

// Resolve fills a single cell.
func (a *SlotAllocator) Resolve(ym YearMonth, week int, day Day, slot TimeSlot) ResolvedContent {
	intent := a.template.Intent(day, slot)
	switch intent.Kind {
	case IntentSpecialActivity:
		return SpecialActivity{Activity: intent.Activity}
	case IntentCategory:
		return a.resolveCategory(intent.Category, ym, week)
	default:
		return Empty{}
	}
}

func (a *SlotAllocator) resolveCategory(category CategoryID, ym YearMonth, week int) ResolvedContent {
	if len(a.index.Lookup(category)) == 0 {
		return Missing{CategoryID: category, Reason: ReasonNoLessonsForCategory}
	}
	for _, candidateWeek := range SearchWeeks(week) {
		candidates := a.index.InPeriod(category, ym, candidateWeek)
		chosen, ok := a.ledger.leastUsed(candidates)
		if !ok {
			continue
		}
		a.ledger.Increment(chosen.ID)
		return Lesson{Unit: chosen, SourceWeek: candidateWeek, Fallback: candidateWeek != week}
	}
	return Missing{CategoryID: category, Reason: ReasonNoLessonsForPeriod}
}

// SearchWeeks lists the weeks probed for a cell: the week itself, then every
// earlier week of the same month nearest first. Week 1 has no fallback.
func SearchWeeks(week int) []int {
	if week < 1 {
		return nil
	}
	weeks := make([]int, 0, week)
	for w := week; w >= 1; w-- {
		weeks = append(weeks, w)
	}
	return weeks
}
