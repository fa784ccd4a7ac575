package util

import "fmt"

// FormatDuration renders a duration given in seconds as HH:MM:SS.
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	seconds %= 3600
	minutes := seconds / 60
	seconds %= 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
