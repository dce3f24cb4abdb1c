package templates

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatSessionTime renders t in loc as "Monday, January 2nd 2025, 3:04 PM".
func FormatSessionTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s, %s %s %d, %s",
		t.Weekday(),
		t.Month(),
		humanize.Ordinal(t.Day()),
		t.Year(),
		t.Format("3:04 PM"),
	)
}

// FormatDuration renders a session length for email bodies: "1 hour",
// "1 hour 30 minutes", "45 minutes".
func FormatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return plural(hours, "hour")
	}
	return plural(hours, "hour") + " " + plural(rest, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
