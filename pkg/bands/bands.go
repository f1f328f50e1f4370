// Package bands partitions the continuous age and minute-of-day scales into
// the fixed categorical bands used for faceting and aggregation.
// Bands are lower-inclusive and upper-exclusive on the underlying scale, so
// every age >= 0 and every minute in [1,1440] maps to exactly one band.
package bands

import "fmt"

// AgeBand is a fixed-width age bucket.
type AgeBand string

// Age bands in ascending order.
const (
	AgeUnder10 AgeBand = "<10"
	Age10to19  AgeBand = "10-19"
	Age20to34  AgeBand = "20-34"
	Age35to49  AgeBand = "35-49"
	Age50to64  AgeBand = "50-64"
	Age65Plus  AgeBand = "65+"
)

// AgeBands lists all age bands in display order.
func AgeBands() []AgeBand {
	return []AgeBand{AgeUnder10, Age10to19, Age20to34, Age35to49, Age50to64, Age65Plus}
}

// ForAge returns the band containing an age in years.
// Breakpoints are at 10, 20, 35, 50 and 65; the first matching breakpoint wins.
// Example: ForAge(9.9) is "<10", ForAge(10) is "10-19", ForAge(65) is "65+".
func ForAge(years float64) AgeBand {
	switch {
	case years < 10:
		return AgeUnder10
	case years < 20:
		return Age10to19
	case years < 35:
		return Age20to34
	case years < 50:
		return Age35to49
	case years < 65:
		return Age50to64
	default:
		return Age65Plus
	}
}

// TimeBand is a six-hour slice of the day.
type TimeBand string

// Time bands in clock order.
const (
	Night     TimeBand = "night"     // 00:00-06:00, minutes 1-360
	Morning   TimeBand = "morning"   // 06:00-12:00, minutes 361-720
	Afternoon TimeBand = "afternoon" // 12:00-18:00, minutes 721-1080
	Evening   TimeBand = "evening"   // 18:00-24:00, minutes 1081-1440
)

// TimeBands lists all time bands in clock order.
func TimeBands() []TimeBand {
	return []TimeBand{Night, Morning, Afternoon, Evening}
}

// MinutesPerDay is the length of a participant's activity vector.
const MinutesPerDay = 1440

// ForMinute returns the band containing a minute of the day.
// Minute 1 covers 00:00-00:01, so minute m belongs to the clock interval
// [m-1, m) and the 6-hour boundaries fall after minutes 360, 720 and 1080.
// ForMinute returns an error for minutes outside [1,1440].
func ForMinute(minute int) (TimeBand, error) {
	switch {
	case minute < 1 || minute > MinutesPerDay:
		return "", fmt.Errorf("minute %d outside [1,%d]", minute, MinutesPerDay)
	case minute <= 360:
		return Night, nil
	case minute <= 720:
		return Morning, nil
	case minute <= 1080:
		return Afternoon, nil
	default:
		return Evening, nil
	}
}

// HourOfDay returns the zero-based clock hour containing a minute of the day.
// Hour h covers minutes [60h+1, 60h+60].
func HourOfDay(minute int) int {
	return (minute - 1) / 60
}

// Window returns the one-based 10-minute smoothing window containing a
// minute of the day. Window w covers minutes [10(w-1)+1, 10w], so a full day
// has exactly 144 windows.
func Window(minute int) int {
	return (minute-1)/10 + 1
}

// WindowsPerDay is the number of 10-minute smoothing windows in a day.
const WindowsPerDay = MinutesPerDay / 10
