package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"mtracker/internal/nutrition"
)

// Cache is the persistent nutrition fact cache: food label -> per-100-unit
// profile. Keys are the raw labels produced by extraction, matched exactly
// (case- and language-sensitive, no normalization). There is no eviction:
// entries are small and the dataset is one user's food vocabulary.
type Cache struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewCache opens (or creates) the cache database at path.
func NewCache(path string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache (
		food_item TEXT PRIMARY KEY,
		nutrition_data TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	logger.Debug("nutrition cache opened", zap.String("path", path))
	return &Cache{db: db, logger: logger}, nil
}

// Lookup returns the cached profile for a food label, or (nil, nil) on a
// miss. Misses are normal outcomes, not errors.
func (c *Cache) Lookup(foodItem string) (*nutrition.Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var data string
	err := c.db.QueryRow("SELECT nutrition_data FROM cache WHERE food_item = ?", foodItem).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	var profile nutrition.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("cache entry for %q is corrupt: %w", foodItem, err)
	}

	c.logger.Debug("cache hit", zap.String("food_item", foodItem))
	return &profile, nil
}

// Store upserts the profile for a food label. Last write wins; storing the
// same profile twice is a no-op in effect.
func (c *Cache) Store(foodItem string, profile nutrition.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO cache (food_item, nutrition_data) VALUES (?, ?)",
		foodItem, string(data),
	)
	if err != nil {
		return fmt.Errorf("cache store failed: %w", err)
	}

	c.logger.Debug("cache filled", zap.String("food_item", foodItem))
	return nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
