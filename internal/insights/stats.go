package insights

import (
	"math"
	"time"

	"pulseboard/internal/domain"
)

// Stats are the aggregate numbers the rules are evaluated against
type Stats struct {
	Range          string
	Buckets        int
	ActiveBuckets  int
	TotalHours     float64
	PeakPeriod     string
	PeakHours      float64
	Sessions       int
	OpenSessions   int
	TrackedHours   float64
	AverageSession float64
	LongestSession float64
	WeekdayHours   float64
	WeekendHours   float64
	EstimatedHours float64
}

// NewStats derives rule inputs from a range's buckets and the entries that
// fed them. Session lengths use each entry's full duration as of now.
// estimatedHours of zero means no estimate.
func NewStats(rangeKey string, buckets []domain.Bucket, entries []domain.TimeEntry, now time.Time, loc *time.Location, estimatedHours float64) Stats {
	if loc == nil {
		loc = time.Local
	}
	s := Stats{
		Range:          rangeKey,
		Buckets:        len(buckets),
		Sessions:       len(entries),
		EstimatedHours: estimatedHours,
	}

	for _, b := range buckets {
		s.TotalHours += b.Time
		if b.Time > 0 {
			s.ActiveBuckets++
		}
		if b.Time > s.PeakHours {
			s.PeakHours = b.Time
			s.PeakPeriod = b.Period
		}
	}
	s.TotalHours = round2(s.TotalHours)

	for _, e := range entries {
		hours := float64(e.EffectiveDuration(now)) / 3600
		s.TrackedHours += hours
		if hours > s.LongestSession {
			s.LongestSession = hours
		}
		if e.IsOpen() {
			s.OpenSessions++
		}
		switch e.StartTime.In(loc).Weekday() {
		case time.Saturday, time.Sunday:
			s.WeekendHours += hours
		default:
			s.WeekdayHours += hours
		}
	}
	if s.Sessions > 0 {
		s.AverageSession = s.TrackedHours / float64(s.Sessions)
	}
	return s
}

// WeekendShare is the fraction of tracked hours started on a weekend
func (s Stats) WeekendShare() float64 {
	total := s.WeekdayHours + s.WeekendHours
	if total == 0 {
		return 0
	}
	return s.WeekendHours / total
}

// EstimateRatio compares tracked hours to the estimate, zero without one
func (s Stats) EstimateRatio() float64 {
	if s.EstimatedHours <= 0 {
		return 0
	}
	return s.TrackedHours / s.EstimatedHours
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
