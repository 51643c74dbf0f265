package calendar

// ContentKind tags the variant held by a ResolvedContent.
type ContentKind string

const (
	KindEmpty           ContentKind = "empty"
	KindSpecialActivity ContentKind = "special_activity"
	KindLesson          ContentKind = "lesson"
	KindMissing         ContentKind = "missing"
)

// ResolvedContent is the closed set of values a calendar cell can hold:
// Empty, SpecialActivity, Lesson or Missing.
type ResolvedContent interface {
	Kind() ContentKind
	sealed()
}

// ActivityKind enumerates fixed special activities.
type ActivityKind string

const (
	ActivityPhysicalEducation ActivityKind = "physical-education"
	ActivityReview            ActivityKind = "review"
)

// MissingReason explains why a category cell could not be filled.
type MissingReason string

const (
	// ReasonNoLessonsForCategory means the pool holds no lesson at all for the category.
	ReasonNoLessonsForCategory MissingReason = "no_lessons_for_category"
	// ReasonNoLessonsForPeriod means the category has lessons, none in this week or an earlier week of the month.
	ReasonNoLessonsForPeriod MissingReason = "no_lessons_for_period"
)

// Empty marks a slot the template leaves free.
type Empty struct{}

// SpecialActivity marks a fixed non-lesson activity.
type SpecialActivity struct {
	Activity ActivityKind
}

// Lesson is a placed lesson unit. SourceWeek is the abstract week the lesson
// was tagged with; it differs from the cell week when a fallback was used.
type Lesson struct {
	Unit       LessonUnit
	SourceWeek int
	Fallback   bool
}

// Missing marks a category slot with no eligible lesson.
type Missing struct {
	CategoryID CategoryID
	Reason     MissingReason
}

func (Empty) Kind() ContentKind           { return KindEmpty }
func (SpecialActivity) Kind() ContentKind { return KindSpecialActivity }
func (Lesson) Kind() ContentKind          { return KindLesson }
func (Missing) Kind() ContentKind         { return KindMissing }

func (Empty) sealed()           {}
func (SpecialActivity) sealed() {}
func (Lesson) sealed()          {}
func (Missing) sealed()         {}
