package barsource

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backforge/backforge/pkg/models"
)

// DiskCache persists fetched bar series to JSON files under a root
// directory, keyed by symbol and date range, so repeated backtests over
// the same window never re-fetch.
type DiskCache struct {
	dir string
}

// NewDiskCache returns a DiskCache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("barsource: creating cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Load returns the cached bar series for symbol over [from, to], or
// found=false if no cache entry exists.
func (c *DiskCache) Load(symbol string, from, to time.Time) (bars []models.Bar, found bool, err error) {
	data, err := os.ReadFile(c.path(symbol, from, to))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("barsource: reading cache: %w", err)
	}
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false, fmt.Errorf("barsource: decoding cache: %w", err)
	}
	return bars, true, nil
}

// Store writes bars to the cache entry for symbol over [from, to]. The
// data goes to a temporary file first and is renamed into place, so a
// reader never sees a partly written entry.
func (c *DiskCache) Store(symbol string, from, to time.Time, bars []models.Bar) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("barsource: encoding cache: %w", err)
	}
	tmp := c.path(symbol, from, to) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("barsource: writing cache: %w", err)
	}
	if err := os.Rename(tmp, c.path(symbol, from, to)); err != nil {
		return fmt.Errorf("barsource: writing cache: %w", err)
	}
	return nil
}

func (c *DiskCache) path(symbol string, from, to time.Time) string {
	key := fmt.Sprintf("%s|%s|%s", symbol, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", sum))
}
