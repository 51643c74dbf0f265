package calendar

// ExpandRange lists every month between start and end inclusive, ascending.
// Each month implicitly carries the abstract weeks 1..WeeksPerMonth.
func ExpandRange(r DateRange) ([]YearMonth, error) {
	if !validMonth(r.Start.Month) {
		return nil, &RangeError{Start: r.Start, End: r.End, Reason: "start month must be between 1 and 12"}
	}
	if !validMonth(r.End.Month) {
		return nil, &RangeError{Start: r.Start, End: r.End, Reason: "end month must be between 1 and 12"}
	}
	if r.End.Before(r.Start) {
		return nil, &RangeError{Start: r.Start, End: r.End, Reason: "start is after end"}
	}

	months := make([]YearMonth, 0, MonthsInRange(r))
	for cur := r.Start; !r.End.Before(cur); cur = cur.Next() {
		months = append(months, cur)
	}
	return months, nil
}

// MonthsInRange counts the months covered by r, or 0 when r is inverted.
func MonthsInRange(r DateRange) int {
	n := (r.End.Year-r.Start.Year)*12 + (r.End.Month - r.Start.Month) + 1
	if n < 0 {
		return 0
	}
	return n
}

func validMonth(month int) bool {
	return month >= 1 && month <= 12
}
