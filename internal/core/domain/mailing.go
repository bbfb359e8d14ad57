package domain

import (
	"errors"
	"time"
)

var (
	ErrMailingDates  = errors.New("mailing end date must be after start date")
	ErrMailingWindow = errors.New("mailing daily window must have both bounds and start before end")
	ErrMailingFilter = errors.New("mailing needs at least one recipient filter")
)

// Mailing is a configured bulk-send job. The validity window
// [StartDate, EndDate] bounds dispatch in absolute time; the optional
// daily window [StartTime, EndTime] is wall-clock and evaluated in each
// recipient's timezone.
type Mailing struct {
	ID                 int64
	Text               string
	StartDate          time.Time
	EndDate            time.Time
	StartTime          *TimeOfDay
	EndTime            *TimeOfDay
	FilterTag          *string
	FilterOperatorCode *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate enforces the creation-time invariants. Scheduler code assumes
// these hold and does not re-check them.
func (m *Mailing) Validate() error {
	if !m.StartDate.Before(m.EndDate) {
		return ErrMailingDates
	}
	if (m.StartTime == nil) != (m.EndTime == nil) {
		return ErrMailingWindow
	}
	if m.StartTime != nil && !m.StartTime.Before(*m.EndTime) {
		return ErrMailingWindow
	}
	if (m.FilterTag == nil || *m.FilterTag == "") && m.FilterOperatorCode == nil {
		return ErrMailingFilter
	}
	return nil
}

// Window returns the daily allowed-hours window, or nil when the mailing
// may be sent at any hour.
func (m *Mailing) Window() *Window {
	if m.StartTime == nil || m.EndTime == nil {
		return nil
	}
	return &Window{Start: *m.StartTime, End: *m.EndTime}
}

// Expired reports whether the mailing's validity window has closed.
func (m *Mailing) Expired(now time.Time) bool {
	return now.After(m.EndDate)
}
