package calendar

type periodKey struct {
	category CategoryID
	year     int
	month    int
	week     int
}

// LessonIndex groups a lesson pool by category, preserving pool order inside
// every group. Pool order is the tie-break used during selection.
type LessonIndex struct {
	byCategory map[CategoryID][]LessonUnit
	byPeriod   map[periodKey][]LessonUnit
	size       int
}

// NewLessonIndex indexes the pool. When two lessons share an id only the
// first is kept, since usage is tracked per id.
func NewLessonIndex(pool []LessonUnit) *LessonIndex {
	idx := &LessonIndex{
		byCategory: make(map[CategoryID][]LessonUnit),
		byPeriod:   make(map[periodKey][]LessonUnit),
	}
	seen := make(map[string]struct{}, len(pool))
	for _, lesson := range pool {
		if _, dup := seen[lesson.ID]; dup {
			continue
		}
		seen[lesson.ID] = struct{}{}
		idx.byCategory[lesson.CategoryID] = append(idx.byCategory[lesson.CategoryID], lesson)
		key := periodKey{category: lesson.CategoryID, year: lesson.Year, month: lesson.Month, week: lesson.Week}
		idx.byPeriod[key] = append(idx.byPeriod[key], lesson)
		idx.size++
	}
	return idx
}

// Lookup returns the lessons tagged with the category. A missing category and
// an empty one both return nil.
func (idx *LessonIndex) Lookup(category CategoryID) []LessonUnit {
	if idx == nil {
		return nil
	}
	return idx.byCategory[category]
}

// InPeriod returns the category's lessons tagged with exactly this month and week.
func (idx *LessonIndex) InPeriod(category CategoryID, ym YearMonth, week int) []LessonUnit {
	if idx == nil {
		return nil
	}
	return idx.byPeriod[periodKey{category: category, year: ym.Year, month: ym.Month, week: week}]
}

// Len is the number of distinct lessons indexed.
func (idx *LessonIndex) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}
