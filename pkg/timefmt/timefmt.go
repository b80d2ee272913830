package timefmt

import (
	"fmt"
	"time"
)

// relativeCutoff is the age beyond which timestamps render as an absolute
// date instead of a relative offset.
const relativeCutoff = 7 * 24 * time.Hour

// Relative renders how long ago t was, relative to now, in the compact form
// used across the UI: "Just now", "15m ago", "5h ago", "2d ago". Anything
// older than a week falls back to an absolute date like "12 Mar 2026".
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < relativeCutoff:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2 Jan 2006")
	}
}

// RelativeNow is Relative against the current wall clock.
func RelativeNow(t time.Time) string {
	return Relative(t, time.Now())
}
