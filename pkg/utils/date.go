package utils

import (
	"fmt"
	"time"
)

// TimeNowUTC is the clock used for persisted timestamps.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// TruncateDay drops the time-of-day component in t's location.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDaysBack returns the n business days ending at end (inclusive when
// end itself is a business day), in ascending order.
func BusinessDaysBack(end time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, n)
	day := TruncateDay(end)
	for i := n - 1; i >= 0; {
		if IsBusinessDay(day) {
			days[i] = day
			i--
		}
		day = day.AddDate(0, 0, -1)
	}
	return days
}

// RangeToDays maps a dashboard range label to calendar days. Unknown labels
// report false.
func RangeToDays(r string) (int, bool) {
	switch r {
	case "1m":
		return 30, true
	case "3m":
		return 90, true
	case "6m":
		return 180, true
	case "1y":
		return 365, true
	case "2y":
		return 730, true
	case "5y":
		return 1825, true
	default:
		return 0, false
	}
}

// RangeToBusinessDays approximates the number of trading days in a range.
func RangeToBusinessDays(r string) (int, bool) {
	days, ok := RangeToDays(r)
	if !ok {
		return 0, false
	}
	return days * 5 / 7, true
}

// PrettyDate renders t for human-facing notifications.
func PrettyDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d - %02d:%02d UTC",
		t.Day(),
		t.Month().String()[:3],
		t.Year(),
		t.Hour(),
		t.Minute(),
	)
}
