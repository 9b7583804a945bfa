package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mtracker/internal/nutrition"
)

// LogStore persists the append-only food log and the derived daily-summary
// table. Log rows are never mutated; the only deletion is the explicit
// remove-last-for-today operation. Summaries are materialized snapshots,
// upserted when requested rather than maintained on every write.
type LogStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
	now    func() time.Time
}

// NewLogStore opens (or creates) the food log database at path.
func NewLogStore(path string, logger *zap.Logger) (*LogStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS food_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		food_item TEXT NOT NULL,
		quantity REAL NOT NULL,
		quantity_unit TEXT NOT NULL,
		calories REAL NOT NULL,
		protein REAL NOT NULL,
		carbs REAL NOT NULL,
		fat REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_food_log_timestamp ON food_log(timestamp);

	CREATE TABLE IF NOT EXISTS daily_summary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL UNIQUE,
		total_calories REAL NOT NULL,
		total_protein REAL NOT NULL,
		total_carbs REAL NOT NULL,
		total_fat REAL NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create log tables: %w", err)
	}

	logger.Debug("food log opened", zap.String("path", path))
	return &LogStore{db: db, logger: logger, now: time.Now}, nil
}

// Append inserts a confirmed entry, stamping the current instant and
// returning the stored row with its assigned id and timestamp.
func (s *LogStore) Append(e nutrition.Entry) (nutrition.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Timestamp = FormatTimestamp(s.now())
	res, err := s.db.Exec(
		`INSERT INTO food_log (timestamp, food_item, quantity, quantity_unit, calories, protein, carbs, fat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp, e.FoodItem, e.Quantity, e.QuantityUnit, e.Calories, e.Protein, e.Carbs, e.Fat,
	)
	if err != nil {
		return nutrition.Entry{}, fmt.Errorf("failed to append entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nutrition.Entry{}, fmt.Errorf("failed to read entry id: %w", err)
	}
	e.ID = id

	s.logger.Info("entry logged",
		zap.Int64("id", e.ID),
		zap.String("food_item", e.FoodItem),
		zap.Float64("quantity", e.Quantity),
		zap.Float64("calories", e.Calories))
	return e, nil
}

// RemoveLastForToday deletes the highest-id entry whose timestamp falls on
// the current day and returns it. A day with no entries returns (nil, nil):
// nothing to remove is a normal outcome.
func (s *LogStore) RemoveLastForToday() (*nutrition.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayStart, dayEnd := DayBounds(s.now())

	var e nutrition.Entry
	err := s.db.QueryRow(
		`SELECT id, timestamp, food_item, quantity, quantity_unit, calories, protein, carbs, fat
		 FROM food_log
		 WHERE timestamp >= ? AND timestamp < ?
		 ORDER BY id DESC
		 LIMIT 1`,
		dayStart, dayEnd,
	).Scan(&e.ID, &e.Timestamp, &e.FoodItem, &e.Quantity, &e.QuantityUnit, &e.Calories, &e.Protein, &e.Carbs, &e.Fat)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find last entry: %w", err)
	}

	if _, err := s.db.Exec("DELETE FROM food_log WHERE id = ?", e.ID); err != nil {
		return nil, fmt.Errorf("failed to delete entry %d: %w", e.ID, err)
	}

	s.logger.Info("entry removed",
		zap.Int64("id", e.ID),
		zap.String("food_item", e.FoodItem))
	return &e, nil
}

// EntriesForDate returns all entries logged on the given calendar day,
// ordered by timestamp ascending. An empty day returns an empty slice.
func (s *LogStore) EntriesForDate(day time.Time) ([]nutrition.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dayStart, dayEnd := DayBounds(day)

	rows, err := s.db.Query(
		`SELECT id, timestamp, food_item, quantity, quantity_unit, calories, protein, carbs, fat
		 FROM food_log
		 WHERE timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp`,
		dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []nutrition.Entry
	for rows.Next() {
		var e nutrition.Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.FoodItem, &e.Quantity, &e.QuantityUnit,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return entries, nil
}

// SumForRange aggregates macro totals over entries in [start, end). The
// second return is false when no entries exist in range, distinguishing
// "no data" from "zero logged".
func (s *LogStore) SumForRange(start, end time.Time) (nutrition.Totals, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cal, protein, carbs, fat sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT SUM(calories), SUM(protein), SUM(carbs), SUM(fat)
		 FROM food_log
		 WHERE timestamp >= ? AND timestamp < ?`,
		FormatTimestamp(start), FormatTimestamp(end),
	).Scan(&cal, &protein, &carbs, &fat)
	if err != nil {
		return nutrition.Totals{}, false, fmt.Errorf("failed to sum range: %w", err)
	}

	// SUM over zero rows is NULL: an empty range, not a zero total.
	if !cal.Valid {
		return nutrition.Totals{}, false, nil
	}
	return nutrition.Totals{
		Calories: cal.Float64,
		Protein:  protein.Float64,
		Carbs:    carbs.Float64,
		Fat:      fat.Float64,
	}, true, nil
}

// UpsertDailySummary materializes totals for a date, replacing any prior
// snapshot for that date.
func (s *LogStore) UpsertDailySummary(date time.Time, t nutrition.Totals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO daily_summary (date, total_calories, total_protein, total_carbs, total_fat)
		 VALUES (?, ?, ?, ?, ?)`,
		date.Format(dateLayout), t.Calories, t.Protein, t.Carbs, t.Fat,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily summary: %w", err)
	}

	s.logger.Debug("daily summary materialized", zap.String("date", date.Format(dateLayout)))
	return nil
}

// SummaryForDate reads the materialized snapshot for a date. The second
// return is false when no snapshot was ever written for that date. The
// snapshot is not recomputed here: it reflects the log as of the last time
// that date's summary was requested.
func (s *LogStore) SummaryForDate(date time.Time) (nutrition.Totals, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t nutrition.Totals
	err := s.db.QueryRow(
		`SELECT total_calories, total_protein, total_carbs, total_fat
		 FROM daily_summary WHERE date = ?`,
		date.Format(dateLayout),
	).Scan(&t.Calories, &t.Protein, &t.Carbs, &t.Fat)
	if err == sql.ErrNoRows {
		return nutrition.Totals{}, false, nil
	}
	if err != nil {
		return nutrition.Totals{}, false, fmt.Errorf("failed to read daily summary: %w", err)
	}
	return t, true, nil
}

// Close closes the log database.
func (s *LogStore) Close() error {
	return s.db.Close()
}
