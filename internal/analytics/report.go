package analytics

import (
	"time"

	"voicero/internal/catalog"
	"voicero/internal/threads"
	"voicero/internal/timeframe"
)

// DailyStats is one point of the chart series.
type DailyStats struct {
	Date             string  `json:"date"`
	TotalThreads     int     `json:"totalThreads"`
	TotalVoiceChats  int     `json:"totalVoiceChats"`
	TotalTextChats   int     `json:"totalTextChats"`
	TotalAiRedirects int     `json:"totalAiRedirects"`
	TotalAiScrolls   int     `json:"totalAiScrolls"`
	TotalAiPurchases int     `json:"totalAiPurchases"`
	TotalAiClicks    int     `json:"totalAiClicks"`
	Revenue          float64 `json:"revenue"`
}

// DailySeries computes the tallies of every UTC calendar day of tf
// independently, whatever the frame's own bucket size. Messages are assigned
// by their own timestamp, so a thread spanning two days contributes to both.
// Messages outside tf are ignored.
func DailySeries(ts []threads.Thread, index *catalog.PriceIndex, tf *timeframe.TimeFrame) []DailyStats {
	tf = tf.WithBucketSize(timeframe.BucketSizeDay)
	points := tf.GenerateDateTimePointsReference()
	buckets := make(map[string]*Accumulator, len(points))

	for _, t := range ts {
		for _, m := range t.Messages {
			if !tf.Contains(m.CreatedAt) {
				continue
			}
			key := tf.BucketKey(m.CreatedAt)
			acc, ok := buckets[key]
			if !ok {
				acc = NewAccumulator()
				buckets[key] = acc
			}
			acc.AddMessage(t, m)
		}
	}

	series := make([]DailyStats, 0, len(points))
	for _, point := range points {
		day := DailyStats{Date: point.Key}
		if acc, ok := buckets[point.Key]; ok {
			s := acc.Stats(index)
			day.TotalThreads = s.TotalThreads
			day.TotalVoiceChats = s.TotalVoiceChats
			day.TotalTextChats = s.TotalTextChats
			day.TotalAiRedirects = s.TotalAiRedirects
			day.TotalAiScrolls = s.TotalAiScrolls
			day.TotalAiPurchases = s.TotalAiPurchases
			day.TotalAiClicks = s.TotalAiClicks
			day.Revenue = s.Revenue.Amount
		}
		series = append(series, day)
	}
	return series
}

// Scope identifies the website and window a report covers.
type Scope struct {
	WebsiteID uint                 `json:"websiteId"`
	From      time.Time            `json:"from"`
	To        time.Time            `json:"to"`
	Label     timeframe.RangeLabel `json:"label"`
}

// ScopeOf builds the Scope of a website and time frame.
func ScopeOf(websiteID uint, tf *timeframe.TimeFrame) Scope {
	return Scope{WebsiteID: websiteID, From: tf.From, To: tf.To, Label: tf.Label}
}

// Report is the document served to the dashboard and cached on the website.
type Report struct {
	Scope  Scope        `json:"scope"`
	Stats  Stats        `json:"stats"`
	Series []DailyStats `json:"series"`
}

// BuildReport aggregates ts over the whole frame and per bucket.
func BuildReport(websiteID uint, ts []threads.Thread, index *catalog.PriceIndex, tf *timeframe.TimeFrame) Report {
	return Report{
		Scope:  ScopeOf(websiteID, tf),
		Stats:  Aggregate(ts, index),
		Series: DailySeries(ts, index, tf),
	}
}

// SummaryDocument is the input of the external summarizer: the full threads
// next to the figures computed from them.
type SummaryDocument struct {
	Scope   Scope            `json:"scope"`
	Stats   Stats            `json:"stats"`
	Threads []threads.Thread `json:"threads"`
}

// SummaryInput assembles the summarizer document.
func SummaryInput(scope Scope, ts []threads.Thread, stats Stats) SummaryDocument {
	if ts == nil {
		ts = []threads.Thread{}
	}
	return SummaryDocument{Scope: scope, Stats: stats, Threads: ts}
}
