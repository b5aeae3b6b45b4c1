package recur

import (
	"sort"
	"time"
)

// Scan bounds. A rule whose filters can never be satisfied (e.g. a minutely
// rule whose fixed second is excluded by bysecond) would otherwise loop
// forever; when a bound is hit the rule is treated as producing no further
// occurrences.
const (
	subDailyScanLimit = 1_000_000
	periodScanLimit   = 10_000
)

// Next returns the first occurrence of the rule strictly after the given
// reference time. The reference acts as the recurrence anchor: components
// not constrained by a by-filter are inherited from it, so a plain DAILY
// rule fires at the same wall-clock time the next day.
//
// The second return value is false when the rule yields no further
// occurrence: an exhausted count, or filters that can never match.
// Unknown frequencies fall back to Daily.
func Next(freq Frequency, params Params, after time.Time) (time.Time, bool) {
	switch freq {
	case Secondly, Minutely, Hourly:
		return nextSubDaily(freq, params, after)
	case Daily, Weekly, Monthly, Yearly:
		return nextCalendar(freq, params, after)
	default:
		return nextCalendar(Daily, params, after)
	}
}

// nextSubDaily handles SECONDLY, MINUTELY and HOURLY rules. The period
// steps by interval units from the anchor; units finer than the frequency
// expand from their by-filters, coarser units act as limits.
func nextSubDaily(freq Frequency, params Params, after time.Time) (time.Time, bool) {
	interval := params.Int("interval", 1)
	if interval < 1 {
		interval = 1
	}
	count := params.Int("count", 0)

	loc := after.Location()
	anchor := time.Date(after.Year(), after.Month(), after.Day(),
		after.Hour(), after.Minute(), after.Second(), 0, loc)

	var step time.Duration
	switch freq {
	case Secondly:
		step = time.Second
	case Minutely:
		step = time.Minute
	case Hourly:
		step = time.Hour
	}
	step *= time.Duration(interval)

	// Expansion sets for units finer than the frequency. Units at or above
	// the frequency come from the stepped base time, never from these sets.
	var minutes, seconds []int
	switch freq {
	case Hourly:
		minutes = expansionSet(params, "byminute", anchor.Minute())
		seconds = expansionSet(params, "bysecond", anchor.Second())
	case Minutely:
		seconds = expansionSet(params, "bysecond", anchor.Second())
	}

	emitted := 0
	for k := 0; k < subDailyScanLimit; k++ {
		base := anchor.Add(time.Duration(k) * step)

		if !params.contains("byhour", base.Hour()) {
			continue
		}
		if !weekdayAllowed(params, base) {
			continue
		}

		var candidates []time.Time
		switch freq {
		case Hourly:
			for _, m := range minutes {
				for _, s := range seconds {
					candidates = append(candidates,
						time.Date(base.Year(), base.Month(), base.Day(), base.Hour(), m, s, 0, loc))
				}
			}
		case Minutely:
			if !params.contains("byminute", base.Minute()) {
				continue
			}
			for _, s := range seconds {
				candidates = append(candidates,
					time.Date(base.Year(), base.Month(), base.Day(), base.Hour(), base.Minute(), s, 0, loc))
			}
		case Secondly:
			if !params.contains("byminute", base.Minute()) || !params.contains("bysecond", base.Second()) {
				continue
			}
			candidates = append(candidates, base)
		}

		for _, t := range candidates {
			if t.Before(anchor) {
				continue
			}
			emitted++
			if count > 0 && emitted > count {
				return time.Time{}, false
			}
			if t.After(after) {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// nextCalendar handles DAILY, WEEKLY, MONTHLY and YEARLY rules. The date
// part steps by interval periods from the anchor; the time-of-day candidate
// set expands from byhour/byminute/bysecond.
func nextCalendar(freq Frequency, params Params, after time.Time) (time.Time, bool) {
	interval := params.Int("interval", 1)
	if interval < 1 {
		interval = 1
	}
	count := params.Int("count", 0)

	loc := after.Location()
	anchor := time.Date(after.Year(), after.Month(), after.Day(),
		after.Hour(), after.Minute(), after.Second(), 0, loc)

	hours := expansionSet(params, "byhour", anchor.Hour())
	minutes := expansionSet(params, "byminute", anchor.Minute())
	seconds := expansionSet(params, "bysecond", anchor.Second())

	byweekday := params.Values("byweekday")

	emitted := 0
	for k := 0; k < periodScanLimit; k++ {
		var dates []time.Time
		switch freq {
		case Weekly:
			if len(byweekday) > 0 {
				// byweekday expands within the calendar week (Monday start).
				weekStart := anchor.AddDate(0, 0, -weekdayNum(anchor)+7*k*interval)
				for offset := 0; offset < 7; offset++ {
					day := weekStart.AddDate(0, 0, offset)
					if params.contains("byweekday", weekdayNum(day)) {
						dates = append(dates, day)
					}
				}
			} else {
				dates = append(dates, anchor.AddDate(0, 0, 7*k*interval))
			}
		case Monthly:
			day := anchor.AddDate(0, k*interval, 0)
			if weekdayAllowed(params, day) {
				dates = append(dates, day)
			}
		case Yearly:
			day := anchor.AddDate(k*interval, 0, 0)
			if weekdayAllowed(params, day) {
				dates = append(dates, day)
			}
		default: // Daily
			day := anchor.AddDate(0, 0, k*interval)
			if weekdayAllowed(params, day) {
				dates = append(dates, day)
			}
		}

		for _, day := range dates {
			for _, h := range hours {
				for _, m := range minutes {
					for _, s := range seconds {
						t := time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, loc)
						if t.Before(anchor) {
							// The anchor is the start of the recurrence;
							// earlier candidates in the same period do not
							// exist and must not consume the count.
							continue
						}
						emitted++
						if count > 0 && emitted > count {
							return time.Time{}, false
						}
						if t.After(after) {
							return t, true
						}
					}
				}
			}
		}
	}

	return time.Time{}, false
}

// expansionSet returns the sorted by-filter values for key, or the anchor
// component when the filter is absent.
func expansionSet(params Params, key string, anchorValue int) []int {
	values := params.Values(key)
	if len(values) == 0 {
		return []int{anchorValue}
	}
	out := make([]int, len(values))
	copy(out, values)
	sort.Ints(out)
	return out
}

// weekdayAllowed applies the byweekday limit to a candidate date.
func weekdayAllowed(params Params, t time.Time) bool {
	return params.contains("byweekday", weekdayNum(t))
}

// weekdayNum converts Go's Sunday-based weekday to the rule vocabulary's
// Monday-based numbering (0=Monday .. 6=Sunday).
func weekdayNum(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
