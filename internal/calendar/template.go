package calendar

import (
	"regexp"
	"sort"
	"strings"
)

// RawTemplate is the day -> time-slot -> value table supplied by callers.
// Values are "empty", "pe", "review" or a "cat_<id>" category reference.
type RawTemplate map[string]map[string]string

const (
	rawEmpty          = "empty"
	rawPE             = "pe"
	rawReview         = "review"
	categoryRefPrefix = "cat_"
)

var categoryIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// IntentKind is the resolved meaning of a template slot.
type IntentKind int

const (
	IntentEmpty IntentKind = iota
	IntentSpecialActivity
	IntentCategory
)

// SlotIntent is what the template asks for in one (day, slot) pair.
type SlotIntent struct {
	Kind     IntentKind
	Activity ActivityKind
	Category CategoryID
}

// WeeklyTemplate is a fully resolved template covering every (day, slot) pair.
// The zero value is a template where every slot is empty.
type WeeklyTemplate struct {
	intents [6][3]SlotIntent
}

// Intent returns the intent for the pair. Unknown labels yield an empty intent.
func (t WeeklyTemplate) Intent(day Day, slot TimeSlot) SlotIntent {
	d, s := dayIndex(day), slotIndex(slot)
	if d < 0 || s < 0 {
		return SlotIntent{Kind: IntentEmpty}
	}
	return t.intents[d][s]
}

// With returns a copy of the template with one pair replaced.
func (t WeeklyTemplate) With(day Day, slot TimeSlot, intent SlotIntent) WeeklyTemplate {
	d, s := dayIndex(day), slotIndex(slot)
	if d >= 0 && s >= 0 {
		t.intents[d][s] = intent
	}
	return t
}

// CategoryIDs lists referenced categories in template order without duplicates.
func (t WeeklyTemplate) CategoryIDs() []CategoryID {
	seen := make(map[CategoryID]struct{})
	var ids []CategoryID
	for d := range Days {
		for s := range TimeSlots {
			intent := t.intents[d][s]
			if intent.Kind != IntentCategory {
				continue
			}
			if _, ok := seen[intent.Category]; ok {
				continue
			}
			seen[intent.Category] = struct{}{}
			ids = append(ids, intent.Category)
		}
	}
	return ids
}

// Raw renders the template back into its canonical table form, listing all
// eighteen pairs.
func (t WeeklyTemplate) Raw() RawTemplate {
	raw := make(RawTemplate, len(Days))
	for d, day := range Days {
		row := make(map[string]string, len(TimeSlots))
		for s, slot := range TimeSlots {
			row[string(slot)] = t.intents[d][s].raw()
		}
		raw[string(day)] = row
	}
	return raw
}

func (i SlotIntent) raw() string {
	switch i.Kind {
	case IntentSpecialActivity:
		if i.Activity == ActivityPhysicalEducation {
			return rawPE
		}
		return rawReview
	case IntentCategory:
		return categoryRefPrefix + string(i.Category)
	default:
		return rawEmpty
	}
}

// ResolveTemplate validates the raw table and resolves each of the 6x3 pairs
// to exactly one intent. Absent pairs and unrecognised values resolve to
// empty; unknown day or slot labels, labels that fold onto an already
// supplied pair, and malformed category references fail with a
// *TemplateError. Labels are visited in sorted order so the reported error
// does not depend on map iteration.
func ResolveTemplate(raw RawTemplate) (WeeklyTemplate, error) {
	var (
		tmpl WeeklyTemplate
		seen [6][3]bool
	)
	for _, dayLabel := range sortedKeys(raw) {
		row := raw[dayLabel]
		day, ok := ParseDay(dayLabel)
		if !ok {
			return WeeklyTemplate{}, &TemplateError{Day: dayLabel, Reason: "unrecognised day"}
		}
		for _, slotLabel := range sortedKeys(row) {
			value := row[slotLabel]
			slot, ok := ParseTimeSlot(slotLabel)
			if !ok {
				return WeeklyTemplate{}, &TemplateError{Day: dayLabel, Slot: slotLabel, Reason: "unrecognised time slot"}
			}
			d, s := dayIndex(day), slotIndex(slot)
			if seen[d][s] {
				return WeeklyTemplate{}, &TemplateError{Day: dayLabel, Slot: slotLabel, Value: value, Reason: "duplicate day/slot"}
			}
			seen[d][s] = true
			intent, err := parseIntent(value)
			if err != nil {
				return WeeklyTemplate{}, &TemplateError{Day: dayLabel, Slot: slotLabel, Value: value, Reason: err.Error()}
			}
			tmpl.intents[d][s] = intent
		}
	}
	return tmpl, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseCategoryRef extracts the category id from a "cat_<id>" reference.
func ParseCategoryRef(value string) (CategoryID, bool) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(strings.ToLower(trimmed), categoryRefPrefix) {
		return "", false
	}
	id := trimmed[len(categoryRefPrefix):]
	if !categoryIDPattern.MatchString(id) {
		return "", false
	}
	return CategoryID(id), true
}

type intentParseError string

func (e intentParseError) Error() string { return string(e) }

func parseIntent(value string) (SlotIntent, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch {
	case normalized == "" || normalized == rawEmpty:
		return SlotIntent{Kind: IntentEmpty}, nil
	case normalized == rawPE:
		return SlotIntent{Kind: IntentSpecialActivity, Activity: ActivityPhysicalEducation}, nil
	case normalized == rawReview:
		return SlotIntent{Kind: IntentSpecialActivity, Activity: ActivityReview}, nil
	case strings.HasPrefix(normalized, categoryRefPrefix):
		id, ok := ParseCategoryRef(value)
		if !ok {
			return SlotIntent{}, intentParseError("malformed category reference")
		}
		return SlotIntent{Kind: IntentCategory, Category: id}, nil
	default:
		return SlotIntent{Kind: IntentEmpty}, nil
	}
}

func dayIndex(day Day) int {
	for i, d := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

func slotIndex(slot TimeSlot) int {
	for i, s := range TimeSlots {
		if s == slot {
			return i
		}
	}
	return -1
}
