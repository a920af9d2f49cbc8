package analytics

import (
	"math"
	"time"

	"pulseboard/internal/domain"
)

// TimeInRange returns the hours the entries spent active inside
// [start, end), rounded to two decimals. Entries with recorded segments are
// measured exactly; entries without segment history are estimated from
// their totals.
func TimeInRange(entries []domain.TimeEntry, start, end, now time.Time) float64 {
	var seconds float64
	for _, entry := range entries {
		if len(entry.Segments) > 0 {
			seconds += segmentSeconds(entry, start, end, now)
		} else {
			seconds += estimatedSeconds(entry, start, end, now)
		}
	}
	return roundHours(seconds / 3600)
}

// segmentSeconds sums the exact overlap of each active segment with the
// range. Entries resumed after their history was carried over have a gap
// between their start and the first segment; the part of the total the
// segments do not account for is spread evenly over that gap.
func segmentSeconds(entry domain.TimeEntry, start, end, now time.Time) float64 {
	_, entryEnd := entry.Span(now)

	var total time.Duration
	var recorded int64
	for _, s := range entry.Segments {
		segEnd := entryEnd
		if s.EndedAt != nil {
			segEnd = *s.EndedAt
			recorded += int64(segEnd.Sub(s.StartedAt) / time.Second)
		}
		total += overlap(s.StartedAt, segEnd, start, end)
	}

	first := entry.Segments[0].StartedAt
	unrecorded := entry.TotalDuration - recorded
	if unrecorded > 0 && first.After(entry.StartTime) {
		gap := first.Sub(entry.StartTime)
		share := overlap(entry.StartTime, first, start, end)
		return total.Seconds() + float64(unrecorded)*(share.Seconds()/gap.Seconds())
	}
	return total.Seconds()
}

// estimatedSeconds handles entries that predate segment history. Closed
// entries spread their total evenly over their wall-clock span. Open entries
// count their live stretch plus the whole accumulated total whenever the live
// stretch touches the range. Anything else counts raw wall-clock overlap.
func estimatedSeconds(entry domain.TimeEntry, start, end, now time.Time) float64 {
	entryStart, entryEnd := entry.Span(now)
	raw := overlap(entryStart, entryEnd, start, end)
	if raw <= 0 {
		return 0
	}

	switch {
	case entry.EndTime != nil && entry.TotalDuration > 0:
		wall := entryEnd.Sub(entryStart)
		if wall <= 0 {
			return 0
		}
		return float64(entry.TotalDuration) * (raw.Seconds() / wall.Seconds())

	case entry.EndTime == nil && entry.LastResumeTime != nil:
		var seconds float64
		live := overlap(*entry.LastResumeTime, now, start, end)
		if live > 0 {
			seconds += live.Seconds()
			if entry.TotalDuration > 0 {
				seconds += float64(entry.TotalDuration)
			}
		}
		return seconds

	default:
		return raw.Seconds()
	}
}

// overlap returns the length of the intersection of [aStart, aEnd) and
// [bStart, bEnd), zero when disjoint
func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	from := aStart
	if bStart.After(from) {
		from = bStart
	}
	to := aEnd
	if bEnd.Before(to) {
		to = bEnd
	}
	if !from.Before(to) {
		return 0
	}
	return to.Sub(from)
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
