package holiday

import (
	"time"

	"cloud.google.com/go/civil"
)

// DayClass is the display class of a date. Its string value doubles as a CSS class.
type DayClass string

const (
	ClassHoliday  DayClass = "holiday"
	ClassSaturday DayClass = "sat"
	ClassSunday   DayClass = "sun"
	ClassWeekday  DayClass = "weekday"
)

// Classify applies holiday > Saturday > Sunday > weekday precedence
func (s Set) Classify(d civil.Date) DayClass {
	if s.Contains(d) {
		return ClassHoliday
	}
	switch weekday(d) {
	case time.Saturday:
		return ClassSaturday
	case time.Sunday:
		return ClassSunday
	}
	return ClassWeekday
}

// Color is the text color used for the class in labels and chart axes
func (c DayClass) Color() string {
	switch c {
	case ClassHoliday:
		return "#16a34a"
	case ClassSaturday:
		return "#2563eb"
	case ClassSunday:
		return "#dc2626"
	}
	return "#666"
}
