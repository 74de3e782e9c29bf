package timeframe

import (
	"fmt"
	"time"
)

type TimeFrameParserParams struct {
	Range    string
	FromDate string
	ToDate   string
	Tz       string
}

type TimeFrameParser struct {
	timeProvider TimeProvider
}

func NewTimeFrameParser(timeProvider ...TimeProvider) *TimeFrameParser {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}

	return &TimeFrameParser{
		timeProvider: provider,
	}
}

// ParseTimeFrame resolves either a range label or an explicit from/to pair.
// A label wins when both are given. An empty request means the last 30 days.
func (p *TimeFrameParser) ParseTimeFrame(params TimeFrameParserParams) (*TimeFrame, error) {
	tzName := params.Tz
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("error loading timezone: %w", err)
	}

	if params.Range == "" && params.FromDate == "" && params.ToDate == "" {
		params.Range = string(RangeLabelLast30Days)
	}
	if params.Range != "" {
		return p.ParseRangeLabel(RangeLabel(params.Range), loc)
	}

	now := p.timeProvider.Now(loc)
	from, err := parseDate(params.FromDate, startOfDay(now, loc).AddDate(0, 0, -29), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid 'from' date: %w", err)
	}
	to, err := parseDate(params.ToDate, now, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid 'to' date: %w", err)
	}
	if params.ToDate != "" {
		to = endOfDay(to, loc)
		if to.After(now) {
			to = now
		}
	}

	return NewTimeFrame(from, to, bucketSizeFor(from, to), loc)
}

// ParseRangeLabel resolves a predefined window relative to the current time
// in loc.
func (p *TimeFrameParser) ParseRangeLabel(label RangeLabel, loc *time.Location) (*TimeFrame, error) {
	if loc == nil {
		loc = time.UTC
	}
	now := p.timeProvider.Now(loc)
	today := startOfDay(now, loc)

	var from, to time.Time
	bucket := BucketSizeDay

	switch label {
	case RangeLabelToday:
		from, to, bucket = today, now, BucketSizeHour
	case RangeLabelYesterday:
		from = today.AddDate(0, 0, -1)
		to, bucket = endOfDay(from, loc), BucketSizeHour
	case RangeLabelLast7Days:
		from, to = today.AddDate(0, 0, -6), now
	case RangeLabelLast30Days:
		from, to = today.AddDate(0, 0, -29), now
	case RangeLabelLast90Days:
		from, to, bucket = today.AddDate(0, 0, -89), now, BucketSizeWeek
	default:
		return nil, fmt.Errorf("unknown range label: %q", label)
	}

	tf, err := NewTimeFrame(from, to, bucket, loc)
	if err != nil {
		return nil, err
	}
	tf.Label = label
	return tf, nil
}

func parseDate(value string, fallback time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseInLocation("2006-01-02", value, loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, loc)
}

func bucketSizeFor(from, to time.Time) BucketSize {
	days := to.Sub(from).Hours() / 24

	switch {
	case days >= 180:
		return BucketSizeMonth
	case days >= 60:
		return BucketSizeWeek
	case days >= 2:
		return BucketSizeDay
	default:
		return BucketSizeHour
	}
}
