package utils

import (
	"fmt"
	"time"
)

// GetISTLocation returns the Asia/Kolkata location. NSE trading hours and
// report timestamps are anchored to IST.
func GetISTLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// TimeNowIST returns the current time in IST.
func TimeNowIST() time.Time {
	return time.Now().In(GetISTLocation())
}

// PrettyDate formats a time for human-facing report output.
func PrettyDate(t time.Time) string {
	return t.In(GetISTLocation()).Format("Mon, 02 Jan 2006 15:04 MST")
}

// AgeDays returns the whole days elapsed since t.
func AgeDays(t time.Time) int {
	return int(time.Since(t).Hours() / 24)
}

// FormatPercent renders a [-1,1] score as a signed percentage string.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v*100)
}
