// Package reports wires the conversation providers, the normalizer and the
// aggregator into the documents served to the dashboard and the summarizer.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/cache"

	"voicero/internal/analytics"
	"voicero/internal/catalog"
	"voicero/internal/conversations"
	"voicero/internal/threads"
	"voicero/internal/timeframe"
	"voicero/internal/websites"
)

// Service builds reports for one database.
type Service struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	prices    *cache.Cache[string, *catalog.PriceIndex]
}

// NewService creates a Service whose catalog price index is cached per
// website for priceTTL.
func NewService(dbManager cartridge.DBManager, logger *slog.Logger, priceTTL time.Duration) *Service {
	s := &Service{dbManager: dbManager, logger: logger}

	fetchFunc := func(key string) (*catalog.PriceIndex, error) {
		websiteID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price index key %q: %w", key, err)
		}
		items, err := catalog.ListItems(context.Background(), dbManager.GetConnection(), uint(websiteID))
		if err != nil {
			return nil, err
		}
		return catalog.NewPriceIndex(items), nil
	}
	s.prices = cache.NewCache[string, *catalog.PriceIndex](logger, priceTTL, fetchFunc)

	return s
}

// PriceIndex returns the cached catalog lookup tables of a website.
func (s *Service) PriceIndex(websiteID uint) (*catalog.PriceIndex, error) {
	index, err := s.prices.Get(strconv.FormatUint(uint64(websiteID), 10))
	if err != nil {
		return nil, fmt.Errorf("failed to load price index for website %d: %w", websiteID, err)
	}
	return index, nil
}

// InvalidatePrices drops every cached price index, e.g. after a catalog sync.
func (s *Service) InvalidatePrices() {
	s.prices.Clear()
}

// Threads loads and normalizes every thread of a website with a message
// inside tf.
func (s *Service) Threads(ctx context.Context, websiteID uint, tf *timeframe.TimeFrame) ([]threads.Thread, error) {
	snapshot, err := conversations.LoadSnapshot(ctx, s.dbManager.GetConnection(), websiteID, tf.From, tf.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations for website %d: %w", websiteID, err)
	}

	ts := threads.NormalizeSnapshot(snapshot, threads.Window{From: tf.From, To: tf.To})
	s.logger.Debug("Normalized conversations",
		slog.Uint64("website_id", uint64(websiteID)),
		slog.Int("rows", snapshot.MessageCount()),
		slog.Int("threads", len(ts)))
	return ts, nil
}

// Build aggregates a website over tf.
func (s *Service) Build(ctx context.Context, websiteID uint, tf *timeframe.TimeFrame) (*analytics.Report, error) {
	start := time.Now()

	if err := tf.Validate(); err != nil {
		return nil, err
	}

	ts, err := s.Threads(ctx, websiteID, tf)
	if err != nil {
		return nil, err
	}
	index, err := s.PriceIndex(websiteID)
	if err != nil {
		return nil, err
	}

	report := analytics.BuildReport(websiteID, ts, index, tf)

	s.logger.Debug("Built conversation report",
		slog.Uint64("website_id", uint64(websiteID)),
		slog.Int("threads", report.Stats.TotalThreads),
		slog.Float64("revenue", report.Stats.Revenue.Amount),
		slog.Duration("duration", time.Since(start)))
	return &report, nil
}

// SummaryDocument assembles the summarizer input of a website over tf.
func (s *Service) SummaryDocument(ctx context.Context, websiteID uint, tf *timeframe.TimeFrame) (*analytics.SummaryDocument, error) {
	if err := tf.Validate(); err != nil {
		return nil, err
	}

	ts, err := s.Threads(ctx, websiteID, tf)
	if err != nil {
		return nil, err
	}
	index, err := s.PriceIndex(websiteID)
	if err != nil {
		return nil, err
	}

	doc := analytics.SummaryInput(analytics.ScopeOf(websiteID, tf), ts, analytics.Aggregate(ts, index))
	return &doc, nil
}

// Refresh builds the report of a website and stores it on the website row.
func (s *Service) Refresh(ctx context.Context, websiteID uint, tf *timeframe.TimeFrame, now time.Time) (*analytics.Report, error) {
	report, err := s.Build(ctx, websiteID, tf)
	if err != nil {
		return nil, err
	}
	if err := websites.SaveConversationStats(s.logger, s.dbManager.GetConnection(), websiteID, report, now); err != nil {
		return nil, err
	}
	return report, nil
}
