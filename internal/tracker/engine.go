// Package tracker orchestrates the nutrition resolution and logging
// pipeline: extraction draft -> cache lookup -> scaling -> confirmation
// gate -> log write, plus the summary and history reads. Both the one-shot
// CLI path and the interactive menu share this one engine.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mtracker/internal/extract"
	"mtracker/internal/nutrition"
	"mtracker/internal/store"
)

// ErrInvalidDate reports a user-supplied date that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

// Resolution is a computed-but-unconfirmed log entry. The caller presents
// it to the user; only Commit has side effects.
type Resolution struct {
	Entry    nutrition.Entry   // scaled to the drafted quantity, ID/Timestamp unset
	Profile  nutrition.Profile // per-100-unit profile the entry was scaled from
	CacheHit bool
}

// Engine wires the extraction adapter, nutrition cache, and food log.
type Engine struct {
	extractor *extract.Extractor
	cache     *store.Cache
	log       *store.LogStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates the resolution engine.
func NewEngine(extractor *extract.Extractor, cache *store.Cache, log *store.LogStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		extractor: extractor,
		cache:     cache,
		log:       log,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve turns free text into an unconfirmed entry. The cache takes
// precedence over the draft's own estimate: once a food label has a cached
// profile, repeated mentions resolve deterministically. On a miss the
// draft's estimate is used but NOT yet cached: the cache fill happens in
// Commit, so a rejected confirmation cannot poison the cache.
func (e *Engine) Resolve(ctx context.Context, text string) (*Resolution, error) {
	draft, err := e.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	profile := draft.PerHundred
	cached, err := e.cache.Lookup(draft.FoodItem)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		profile = *cached
	}

	scaled := profile.Scale(draft.Quantity)
	res := &Resolution{
		Entry: nutrition.Entry{
			FoodItem:     draft.FoodItem,
			Quantity:     draft.Quantity,
			QuantityUnit: draft.QuantityUnit,
			Calories:     scaled.Calories,
			Protein:      scaled.Protein,
			Carbs:        scaled.Carbs,
			Fat:          scaled.Fat,
		},
		Profile:  profile,
		CacheHit: cached != nil,
	}

	e.logger.Debug("resolved entry",
		zap.String("food_item", draft.FoodItem),
		zap.Bool("cache_hit", res.CacheHit))
	return res, nil
}

// Commit persists a confirmed resolution: fills the cache on a miss, then
// appends the entry. Called only after an affirmative confirmation.
func (e *Engine) Commit(res *Resolution) (nutrition.Entry, error) {
	if !res.CacheHit {
		if err := e.cache.Store(res.Entry.FoodItem, res.Profile); err != nil {
			return nutrition.Entry{}, err
		}
	}
	return e.log.Append(res.Entry)
}

// TodaySummary recomputes the current day's totals from the log and, when
// the day has entries, materializes them into the daily-summary table.
// Returns false when nothing was logged today (empty, not zero).
func (e *Engine) TodaySummary() (nutrition.Totals, bool, error) {
	now := e.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	totals, ok, err := e.log.SumForRange(dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil || !ok {
		return nutrition.Totals{}, false, err
	}

	if err := e.log.UpsertDailySummary(dayStart, totals); err != nil {
		return nutrition.Totals{}, false, err
	}
	return totals, true, nil
}

// SummaryForDate reads the materialized snapshot for a date string. Only
// the today path refreshes snapshots; historical dates return whatever was
// last materialized, or false if nothing ever was.
func (e *Engine) SummaryForDate(dateStr string) (nutrition.Totals, bool, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nutrition.Totals{}, false, err
	}
	return e.log.SummaryForDate(date)
}

// MealsForDate returns the individual entries logged on a date string,
// ordered by time of day.
func (e *Engine) MealsForDate(dateStr string) ([]nutrition.Entry, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return e.log.EntriesForDate(date)
}

// RemoveLastToday removes today's most recent entry and returns it, or
// (nil, nil) when today has no entries.
func (e *Engine) RemoveLastToday() (*nutrition.Entry, error) {
	return e.log.RemoveLastForToday()
}

func parseDate(dateStr string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
	}
	return date, nil
}
