package stats

import (
	"fmt"
	"strings"
	"time"
)

const durationWidth = 13

// FormatDuration renders a duration like " 1h02m03.004s", right-aligned to a
// fixed width. Leading zero units are dropped and a zero duration renders as "0 ".
func FormatDuration(d time.Duration) string {
	millis := d.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	ms := millis % 1000
	secondsLeft := millis / 1000
	seconds := secondsLeft % 60
	minutesLeft := secondsLeft / 60
	minutes := minutesLeft % 60
	hours := minutesLeft / 60

	var b strings.Builder
	if hours > 0 {
		fmt.Fprintf(&b, "%2dh", hours)
	}
	switch {
	case b.Len() > 0:
		fmt.Fprintf(&b, "%02dm", minutes)
	case minutes > 0:
		fmt.Fprintf(&b, "%2dm", minutes)
	}
	switch {
	case b.Len() > 0:
		fmt.Fprintf(&b, "%02d", seconds)
	case seconds > 0:
		fmt.Fprintf(&b, "%2d", seconds)
	}
	if b.Len() > 0 || ms > 0 {
		fmt.Fprintf(&b, ".%03ds", ms)
	} else {
		b.WriteString("0 ")
	}
	return fmt.Sprintf("%*s", durationWidth, b.String())
}
