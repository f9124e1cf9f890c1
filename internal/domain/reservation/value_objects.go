package reservation

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	ErrInvalidHour = errors.New("hour must be between 0 and 23")
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Slot identifies a one-hour capacity unit.
type Slot struct {
	date string
	hour int
}

func NewSlot(date string, hour int) (Slot, error) {
	if !dateRe.MatchString(date) {
		return Slot{}, ErrInvalidDate
	}
	if hour < 0 || hour > 23 {
		return Slot{}, ErrInvalidHour
	}
	return Slot{date: date, hour: hour}, nil
}

func (s Slot) Date() string {
	return s.date
}

func (s Slot) Hour() int {
	return s.hour
}

// HourHHMM renders the start hour as "09:00".
func (s Slot) HourHHMM() string {
	return fmt.Sprintf("%02d:00", s.hour)
}

func (s Slot) IsZero() bool {
	return s.date == ""
}

// ValidDate reports whether a raw date string is an acceptable slot date.
func ValidDate(date string) bool {
	return dateRe.MatchString(date)
}
