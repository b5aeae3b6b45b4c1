// Package recur computes occurrence times for recurring jobs.
//
// A recurrence rule is a frequency class plus a parameter map. The supported
// parameter vocabulary is deliberately small: interval, count, bysecond,
// byminute, byhour and byweekday (0=Monday .. 6=Sunday). Parameters finer
// than the frequency expand the candidate set within each period; byweekday
// restricts occurrences for every frequency except WEEKLY, where it selects
// the weekdays within each recurring week.
package recur

import "strings"

// Frequency is the base recurrence period of a job.
type Frequency string

const (
	Yearly   Frequency = "YEARLY"
	Monthly  Frequency = "MONTHLY"
	Weekly   Frequency = "WEEKLY"
	Daily    Frequency = "DAILY"
	Hourly   Frequency = "HOURLY"
	Minutely Frequency = "MINUTELY"
	Secondly Frequency = "SECONDLY"
)

// Frequencies lists all frequency classes, coarsest first.
var Frequencies = []Frequency{Yearly, Monthly, Weekly, Daily, Hourly, Minutely, Secondly}

// ParseFrequency maps text to a frequency class. Unknown or empty values
// fall back to Daily, mirroring the lenient handling of legacy job rows.
func ParseFrequency(s string) Frequency {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Frequencies {
		if f == known {
			return f
		}
	}
	return Daily
}
