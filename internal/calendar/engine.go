package calendar

// Request carries every input of one allocation run. Lessons is treated as a
// read-only snapshot; its order is the selection tie-break.
type Request struct {
	Template WeeklyTemplate
	Lessons  []LessonUnit
	Range    DateRange
}

// Stats summarises a run.
type Stats struct {
	Cells             int `json:"cells"`
	Lessons           int `json:"lessons"`
	ExactMatches      int `json:"exactMatches"`
	Fallbacks         int `json:"fallbacks"`
	Missing           int `json:"missing"`
	SpecialActivities int `json:"specialActivities"`
	Empty             int `json:"empty"`
}

// Result is the output of a run.
type Result struct {
	Months []YearMonth
	Grid   *Grid
	Usage  map[string]int
	Stats  Stats
}

// Allocate expands the range, indexes the pool, fills every cell and
// assembles the grid. Only an invalid range fails; content shortfalls are
// reported as Missing cells.
func Allocate(req Request) (*Result, error) {
	months, err := ExpandRange(req.Range)
	if err != nil {
		return nil, err
	}

	allocator := NewSlotAllocator(req.Template, NewLessonIndex(req.Lessons), NewUsageLedger())
	cells := allocator.Run(months)

	return &Result{
		Months: months,
		Grid:   AssembleGrid(months, cells),
		Usage:  allocator.Ledger().Snapshot(),
		Stats:  tally(cells),
	}, nil
}

func tally(cells []Cell) Stats {
	stats := Stats{Cells: len(cells)}
	for _, cell := range cells {
		switch content := cell.Content.(type) {
		case Lesson:
			stats.Lessons++
			if content.Fallback {
				stats.Fallbacks++
			} else {
				stats.ExactMatches++
			}
		case Missing:
			stats.Missing++
		case SpecialActivity:
			stats.SpecialActivities++
		case Empty:
			stats.Empty++
		}
	}
	return stats
}
