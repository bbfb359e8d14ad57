package usecase

import (
	"time"

	"sms-dispatch/internal/core/domain"
)

// NextSendTime computes the next instant at which the mailing's daily
// window permits contacting a client in the given location. The zero time
// means the send is allowed immediately: either no window is configured,
// or the client's local time-of-day already falls inside it (bounds
// inclusive).
//
// Before the window opens, the result is now plus the wall-clock distance
// to the window start; after it closes, now plus a full day minus the
// distance already travelled past the start. Both branches are pure
// time-of-day arithmetic on the current instant and do not re-anchor to
// the client's calendar date, so around a daylight-saving transition the
// returned instant can land up to the offset change away from the local
// window start. That mirrors the source system's behaviour and is kept
// as-is.
func NextSendTime(w *domain.Window, loc *time.Location, now time.Time) time.Time {
	if w == nil {
		return time.Time{}
	}
	local := now.In(loc)
	sinceMidnight := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())

	switch {
	case w.Contains(sinceMidnight):
		return time.Time{}
	case sinceMidnight < w.Start.Duration():
		return now.Add(w.Start.Duration() - sinceMidnight)
	default:
		return now.Add(24*time.Hour - (sinceMidnight - w.Start.Duration()))
	}
}
