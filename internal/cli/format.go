package cli

import (
	"fmt"
	"time"
)

// FormatDurationShort formats a duration rounded to the second as M:SS, or
// H:MM:SS from one hour up. Negative durations format as 0:00.
func FormatDurationShort(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours, minutes, seconds := total/3600, (total%3600)/60, total%60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
