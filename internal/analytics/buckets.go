package analytics

import (
	"fmt"
	"strings"
	"time"

	"pulseboard/internal/domain"
	apperrors "pulseboard/internal/errors"
)

// Range selects the bucket layout of a dashboard query
type Range string

const (
	RangeDay     Range = "day"
	RangeWeek    Range = "week"
	RangeMonth   Range = "month"
	RangeQuarter Range = "quarter"
)

// DefaultWorkdayStartHour is the first hourly bucket of the day range
const DefaultWorkdayStartHour = 9

const (
	dayBuckets        = 10
	weekBuckets       = 7
	monthBuckets      = 6
	monthBucketLength = 5
	quarterBuckets    = 3
)

// Ranges lists the accepted range keywords
var Ranges = []Range{RangeDay, RangeWeek, RangeMonth, RangeQuarter}

// ParseRange validates a range keyword
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Ranges {
		if r == known {
			return r, nil
		}
	}
	return "", apperrors.NewInvalidInputError("range", s, "must be one of day, week, month, quarter")
}

// Buckets lays out the empty buckets of r as seen at now in loc, oldest
// first. Day buckets are the ten working hours from startHour; the other
// ranges end at now.
func Buckets(r Range, now time.Time, loc *time.Location, startHour int) ([]domain.Bucket, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := startOfDay(now)

	switch r {
	case RangeDay:
		buckets := make([]domain.Bucket, 0, dayBuckets)
		for i := 0; i < dayBuckets; i++ {
			hour := startHour + i
			start := time.Date(today.Year(), today.Month(), today.Day(), hour, 0, 0, 0, loc)
			buckets = append(buckets, domain.Bucket{
				Period: fmt.Sprintf("%d:00", hour),
				Start:  start,
				End:    start.Add(time.Hour),
			})
		}
		return buckets, nil

	case RangeWeek:
		buckets := make([]domain.Bucket, 0, weekBuckets)
		for i := weekBuckets - 1; i >= 0; i-- {
			start := today.AddDate(0, 0, -i)
			buckets = append(buckets, domain.Bucket{
				Period: start.Weekday().String()[:3],
				Start:  start,
				End:    start.AddDate(0, 0, 1),
			})
		}
		clampLast(buckets, now)
		return buckets, nil

	case RangeMonth:
		first := today.AddDate(0, 0, -(monthBuckets*monthBucketLength - 1))
		buckets := make([]domain.Bucket, 0, monthBuckets)
		for i := 0; i < monthBuckets; i++ {
			start := first.AddDate(0, 0, i*monthBucketLength)
			end := start.AddDate(0, 0, monthBucketLength)
			lastDay := end.AddDate(0, 0, -1)
			buckets = append(buckets, domain.Bucket{
				Period: fmt.Sprintf("%d-%d", start.Day(), lastDay.Day()),
				Start:  start,
				End:    end,
			})
		}
		clampLast(buckets, now)
		return buckets, nil

	case RangeQuarter:
		thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		buckets := make([]domain.Bucket, 0, quarterBuckets)
		for i := quarterBuckets - 1; i >= 0; i-- {
			start := thisMonth.AddDate(0, -i, 0)
			buckets = append(buckets, domain.Bucket{
				Period: start.Month().String()[:3],
				Start:  start,
				End:    start.AddDate(0, 1, 0),
			})
		}
		clampLast(buckets, now)
		return buckets, nil
	}

	return nil, apperrors.NewInvalidInputError("range", string(r), "must be one of day, week, month, quarter")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// clampLast ends the most recent bucket at now instead of its calendar end
func clampLast(buckets []domain.Bucket, now time.Time) {
	last := &buckets[len(buckets)-1]
	if now.Before(last.End) {
		last.End = now
	}
}
