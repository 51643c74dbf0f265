package calendar

// Grid is the dense calendar: every month in range, four weeks each, every
// template day and time slot.
type Grid struct {
	Months []MonthGrid
}

// MonthGrid holds the four abstract weeks of one month.
type MonthGrid struct {
	YearMonth
	Weeks [WeeksPerMonth]WeekGrid
}

// WeekGrid holds the template days of one abstract week.
type WeekGrid struct {
	Week int
	Days []DayGrid
}

// DayGrid holds the time slots of one day.
type DayGrid struct {
	Day   Day
	Slots []SlotCell
}

// SlotCell is the content of one time slot.
type SlotCell struct {
	TimeSlot TimeSlot
	Content  ResolvedContent
}

// AssembleGrid builds the nested grid for months and places the resolved
// cells into it. Positions not covered by a cell stay Empty, so the result is
// always dense; cells outside the months are ignored.
func AssembleGrid(months []YearMonth, cells []Cell) *Grid {
	grid := &Grid{Months: make([]MonthGrid, len(months))}
	monthPos := make(map[YearMonth]int, len(months))
	for i, ym := range months {
		monthPos[ym] = i
		grid.Months[i] = newMonthGrid(ym)
	}

	for _, cell := range cells {
		m, ok := monthPos[cell.Month]
		if !ok || cell.Week < 1 || cell.Week > WeeksPerMonth {
			continue
		}
		d, s := dayIndex(cell.Day), slotIndex(cell.TimeSlot)
		if d < 0 || s < 0 {
			continue
		}
		content := cell.Content
		if content == nil {
			content = Empty{}
		}
		grid.Months[m].Weeks[cell.Week-1].Days[d].Slots[s].Content = content
	}
	return grid
}

func newMonthGrid(ym YearMonth) MonthGrid {
	month := MonthGrid{YearMonth: ym}
	for w := range month.Weeks {
		days := make([]DayGrid, len(Days))
		for d, day := range Days {
			slots := make([]SlotCell, len(TimeSlots))
			for s, slot := range TimeSlots {
				slots[s] = SlotCell{TimeSlot: slot, Content: Empty{}}
			}
			days[d] = DayGrid{Day: day, Slots: slots}
		}
		month.Weeks[w] = WeekGrid{Week: w + 1, Days: days}
	}
	return month
}

// Cell returns the content at a position, or nil when out of range.
func (g *Grid) Cell(ym YearMonth, week int, day Day, slot TimeSlot) ResolvedContent {
	if g == nil || week < 1 || week > WeeksPerMonth {
		return nil
	}
	d, s := dayIndex(day), slotIndex(slot)
	if d < 0 || s < 0 {
		return nil
	}
	for i := range g.Months {
		if g.Months[i].YearMonth == ym {
			return g.Months[i].Weeks[week-1].Days[d].Slots[s].Content
		}
	}
	return nil
}

// Walk visits every cell in calendar order.
func (g *Grid) Walk(fn func(Cell)) {
	if g == nil {
		return
	}
	for _, month := range g.Months {
		for _, week := range month.Weeks {
			for _, day := range week.Days {
				for _, slot := range day.Slots {
					fn(Cell{Month: month.YearMonth, Week: week.Week, Day: day.Day, TimeSlot: slot.TimeSlot, Content: slot.Content})
				}
			}
		}
	}
}
