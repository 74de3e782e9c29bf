package timeframe

import (
	"fmt"
	"time"
)

// BucketSize is the width of one point of a time series.
type BucketSize string

const (
	BucketSizeMonth BucketSize = "month"
	BucketSizeWeek  BucketSize = "week"
	BucketSizeDay   BucketSize = "day"
	BucketSizeHour  BucketSize = "hour"
)

// RangeLabel names the predefined report windows.
type RangeLabel string

const (
	RangeLabelToday      RangeLabel = "today"
	RangeLabelYesterday  RangeLabel = "yesterday"
	RangeLabelLast7Days  RangeLabel = "last_7_days"
	RangeLabelLast30Days RangeLabel = "last_30_days"
	RangeLabelLast90Days RangeLabel = "last_90_days"
	RangeLabelCustom     RangeLabel = "custom"
)

// maxPoints bounds GenerateDateTimePointsReference.
const maxPoints = 1000

type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// TimeFrame is the window of one aggregation scope. From and To are inclusive
// and stored in UTC.
type TimeFrame struct {
	From       time.Time
	To         time.Time
	Label      RangeLabel
	BucketSize BucketSize
	Tz         *time.Location
}

// DatePoint is one bucket of a time series.
type DatePoint struct {
	Key   string    `json:"key"`
	Start time.Time `json:"start"`
}

func NewTimeFrame(from, to time.Time, bucketSize BucketSize, tz *time.Location) (*TimeFrame, error) {
	if from.After(to) {
		return nil, fmt.Errorf("fromTime must be before toTime")
	}
	if tz == nil {
		tz = time.UTC
	}
	return &TimeFrame{
		From:       from.UTC(),
		To:         to.UTC(),
		Label:      RangeLabelCustom,
		BucketSize: bucketSize,
		Tz:         tz,
	}, nil
}

// NewRollingTimeFrame covers the last days calendar days (UTC) up to now,
// today included, with daily buckets.
func NewRollingTimeFrame(now time.Time, days int) *TimeFrame {
	if days < 1 {
		days = 1
	}
	now = now.UTC()
	from := truncateToBucket(now, BucketSizeDay).AddDate(0, 0, -(days - 1))
	return &TimeFrame{
		From:       from,
		To:         now,
		Label:      RangeLabelCustom,
		BucketSize: BucketSizeDay,
		Tz:         time.UTC,
	}
}

func (tf *TimeFrame) Duration() time.Duration {
	return tf.To.Sub(tf.From)
}

func (tf *TimeFrame) Validate() error {
	if tf.From.After(tf.To) {
		return fmt.Errorf("fromTime must be before toTime")
	}
	return nil
}

// Contains reports whether t falls inside the frame, bounds included.
func (tf *TimeFrame) Contains(t time.Time) bool {
	return !t.Before(tf.From) && !t.After(tf.To)
}

// WithBucketSize returns a copy of the frame split into buckets of size.
func (tf *TimeFrame) WithBucketSize(size BucketSize) *TimeFrame {
	out := *tf
	out.BucketSize = size
	return &out
}

// BucketKey returns the key of the bucket holding t. Buckets follow UTC
// calendar boundaries.
func (tf *TimeFrame) BucketKey(t time.Time) string {
	return truncateToBucket(t, tf.BucketSize).Format(keyLayout(tf.BucketSize))
}

// GenerateDateTimePointsReference lists every bucket between From and To,
// including the buckets that hold the two bounds.
func (tf *TimeFrame) GenerateDateTimePointsReference() []DatePoint {
	points := []DatePoint{}

	current := truncateToBucket(tf.From, tf.BucketSize)
	last := truncateToBucket(tf.To, tf.BucketSize)

	for i := 0; i < maxPoints && !current.After(last); i++ {
		points = append(points, DatePoint{
			Key:   current.Format(keyLayout(tf.BucketSize)),
			Start: current,
		})
		current = nextBucket(current, tf.BucketSize)
	}

	return points
}

// TruncateToBucketInTimezone truncates a time to the appropriate bucket boundary in the given timezone
func TruncateToBucketInTimezone(t time.Time, bucketSize BucketSize, loc *time.Location) time.Time {
	localTime := t.In(loc)
	year, month, day := localTime.Year(), localTime.Month(), localTime.Day()

	switch bucketSize {
	case BucketSizeMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, loc)
	case BucketSizeWeek:
		weekday := int(localTime.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		return time.Date(year, month, day-(weekday-1), 0, 0, 0, 0, loc)
	case BucketSizeDay:
		return time.Date(year, month, day, 0, 0, 0, 0, loc)
	case BucketSizeHour:
		return time.Date(year, month, day, localTime.Hour(), 0, 0, 0, loc)
	default:
		return localTime
	}
}

func truncateToBucket(t time.Time, bucketSize BucketSize) time.Time {
	return TruncateToBucketInTimezone(t, bucketSize, time.UTC)
}

func nextBucket(t time.Time, bucketSize BucketSize) time.Time {
	switch bucketSize {
	case BucketSizeMonth:
		return t.AddDate(0, 1, 0)
	case BucketSizeWeek:
		return t.AddDate(0, 0, 7)
	case BucketSizeHour:
		return t.Add(time.Hour)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func keyLayout(bucketSize BucketSize) string {
	switch bucketSize {
	case BucketSizeMonth:
		return "2006-01"
	case BucketSizeHour:
		return "2006-01-02 15"
	default:
		return "2006-01-02"
	}
}
