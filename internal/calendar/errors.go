package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTemplate is matched by every *TemplateError.
	ErrInvalidTemplate = errors.New("invalid template")
	// ErrInvalidRange is matched by every *RangeError.
	ErrInvalidRange = errors.New("invalid range")
)

// TemplateError pinpoints the template entry that failed to resolve.
type TemplateError struct {
	Day    string
	Slot   string
	Value  string
	Reason string
}

func (e *TemplateError) Error() string {
	switch {
	case e.Slot == "" && e.Value == "":
		return fmt.Sprintf("invalid template: day %q: %s", e.Day, e.Reason)
	case e.Value == "":
		return fmt.Sprintf("invalid template: %s/%s: %s", e.Day, e.Slot, e.Reason)
	default:
		return fmt.Sprintf("invalid template: %s/%s value %q: %s", e.Day, e.Slot, e.Value, e.Reason)
	}
}

// Is lets errors.Is(err, ErrInvalidTemplate) succeed.
func (e *TemplateError) Is(target error) bool {
	return target == ErrInvalidTemplate
}

// RangeError reports an unusable date range.
type RangeError struct {
	Start  YearMonth
	End    YearMonth
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range %s..%s: %s", e.Start, e.End, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidRange) succeed.
func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
