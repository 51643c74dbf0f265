package dto

import (
	"time"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
)

// GenerateCalendarRequest asks for a calendar preview. Exactly one template
// source must be set: a stored template id, a preset name or an inline
// template.
type GenerateCalendarRequest struct {
	TemplateID string                       `json:"templateId" validate:"omitempty,uuid"`
	PresetName string                       `json:"presetName" validate:"omitempty,max=64"`
	Template   map[string]map[string]string `json:"template"`
	StartYear  int                          `json:"startYear" validate:"required,min=1900,max=9999"`
	StartMonth int                          `json:"startMonth"`
	EndYear    int                          `json:"endYear" validate:"required,min=1900,max=9999"`
	EndMonth   int                          `json:"endMonth"`
}

// Range returns the requested range in engine form.
func (r GenerateCalendarRequest) Range() calendar.DateRange {
	return calendar.NewDateRange(r.StartYear, r.StartMonth, r.EndYear, r.EndMonth)
}

// CalendarRange echoes an inclusive month range.
type CalendarRange struct {
	StartYear  int `json:"startYear"`
	StartMonth int `json:"startMonth"`
	EndYear    int `json:"endYear"`
	EndMonth   int `json:"endMonth"`
}

// NewCalendarRange converts an engine range.
func NewCalendarRange(r calendar.DateRange) CalendarRange {
	return CalendarRange{
		StartYear:  r.Start.Year,
		StartMonth: r.Start.Month,
		EndYear:    r.End.Year,
		EndMonth:   r.End.Month,
	}
}

// CalendarPreviewResponse is returned by the generate endpoint. The proposal
// can be saved until ExpiresAt.
type CalendarPreviewResponse struct {
	ProposalID  string               `json:"proposalId"`
	TemplateRef string               `json:"templateRef"`
	Range       CalendarRange        `json:"range"`
	Grid        []CalendarMonth      `json:"grid"`
	Usage       map[string]int       `json:"usage"`
	Stats       calendar.Stats       `json:"stats"`
	Categories  map[string]string    `json:"categories"`
	Template    calendar.RawTemplate `json:"template"`
	ExpiresAt   time.Time            `json:"expiresAt"`
}

// SaveCalendarRequest persists a previewed proposal as a plan version.
type SaveCalendarRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Name       string `json:"name" validate:"required,max=120"`
	Publish    bool   `json:"publish"`
}

// CalendarPlanQuery filters plan listings.
type CalendarPlanQuery struct {
	TemplateRef string `form:"templateRef" json:"templateRef"`
	Status      string `form:"status" json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Page        int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CalendarPlanDetail is a stored plan with its grid decoded.
type CalendarPlanDetail struct {
	models.CalendarPlanSummary
	Template   calendar.RawTemplate `json:"template"`
	Grid       []CalendarMonth      `json:"grid"`
	Usage      map[string]int       `json:"usage"`
	Stats      calendar.Stats       `json:"stats"`
	Categories map[string]string    `json:"categories"`
}

// CalendarPlanMeta is the JSON stored in calendar_plans.meta.
type CalendarPlanMeta struct {
	Stats       calendar.Stats    `json:"stats"`
	Categories  map[string]string `json:"categories"`
	GeneratedAt time.Time         `json:"generatedAt"`
	PoolSize    int               `json:"poolSize"`
}

// CalendarMonth is one month of the serialised grid.
type CalendarMonth struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Label string         `json:"label"`
	Weeks []CalendarWeek `json:"weeks"`
}

// CalendarWeek is one abstract week.
type CalendarWeek struct {
	Week int           `json:"week"`
	Days []CalendarDay `json:"days"`
}

// CalendarDay is one template day.
type CalendarDay struct {
	Day   string         `json:"day"`
	Slots []CalendarSlot `json:"slots"`
}

// CalendarSlot is one time slot and what fills it.
type CalendarSlot struct {
	TimeSlot string      `json:"timeSlot"`
	Content  CellContent `json:"content"`
}

// CellContent flattens the engine's content variants into a tagged object.
// Kind is one of empty, special_activity, lesson or missing.
type CellContent struct {
	Kind       string     `json:"kind"`
	Activity   string     `json:"activity,omitempty"`
	Lesson     *LessonRef `json:"lesson,omitempty"`
	SourceWeek int        `json:"sourceWeek,omitempty"`
	Fallback   bool       `json:"fallback,omitempty"`
	CategoryID string     `json:"categoryId,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// LessonRef identifies a placed lesson.
type LessonRef struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Week       int    `json:"week"`
}

// NewCalendarGrid serialises an engine grid.
func NewCalendarGrid(grid *calendar.Grid) []CalendarMonth {
	if grid == nil {
		return []CalendarMonth{}
	}
	months := make([]CalendarMonth, 0, len(grid.Months))
	for _, m := range grid.Months {
		month := CalendarMonth{
			Year:  m.Year,
			Month: m.Month,
			Label: m.YearMonth.String(),
			Weeks: make([]CalendarWeek, 0, len(m.Weeks)),
		}
		for _, w := range m.Weeks {
			week := CalendarWeek{Week: w.Week, Days: make([]CalendarDay, 0, len(w.Days))}
			for _, d := range w.Days {
				day := CalendarDay{Day: string(d.Day), Slots: make([]CalendarSlot, 0, len(d.Slots))}
				for _, s := range d.Slots {
					day.Slots = append(day.Slots, CalendarSlot{TimeSlot: string(s.TimeSlot), Content: NewCellContent(s.Content)})
				}
				week.Days = append(week.Days, day)
			}
			month.Weeks = append(month.Weeks, week)
		}
		months = append(months, month)
	}
	return months
}

// NewCellContent maps one engine content value.
func NewCellContent(content calendar.ResolvedContent) CellContent {
	switch c := content.(type) {
	case calendar.SpecialActivity:
		return CellContent{Kind: string(calendar.KindSpecialActivity), Activity: string(c.Activity)}
	case calendar.Lesson:
		return CellContent{
			Kind: string(calendar.KindLesson),
			Lesson: &LessonRef{
				ID:         c.Unit.ID,
				CategoryID: string(c.Unit.CategoryID),
				Title:      c.Unit.Title,
				Year:       c.Unit.Year,
				Month:      c.Unit.Month,
				Week:       c.Unit.Week,
			},
			SourceWeek: c.SourceWeek,
			Fallback:   c.Fallback,
		}
	case calendar.Missing:
		return CellContent{Kind: string(calendar.KindMissing), CategoryID: string(c.CategoryID), Reason: string(c.Reason)}
	default:
		return CellContent{Kind: string(calendar.KindEmpty)}
	}
}
