package barsource

import (
	"context"
	"sort"
	"time"

	"github.com/backforge/backforge/pkg/models"
)

// Feed loads one symbol's bars, preferring a disk cache over the network
// fetch and populating the cache on a miss.
type Feed struct {
	client *Client
	cache  *DiskCache
}

// NewFeed builds a Feed over client and cache.
func NewFeed(client *Client, cache *DiskCache) *Feed {
	return &Feed{client: client, cache: cache}
}

// Load returns symbol's bars over [from, to], from the cache if present,
// else fetched over HTTP and cached for next time.
func (f *Feed) Load(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	if bars, found, err := f.cache.Load(symbol, from, to); err != nil {
		return nil, err
	} else if found {
		return bars, nil
	}

	bars, err := f.client.FetchBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Store(symbol, from, to, bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// MergeChronological concatenates and stably sorts bars from multiple
// symbols' series into the single timestamp-ordered sequence the engine
// processes. Ties (same timestamp, different symbol) keep the input
// series' relative order, since the engine has no cross-symbol ordering
// requirement within one instant.
func MergeChronological(series ...[]models.Bar) []models.Bar {
	var total int
	for _, s := range series {
		total += len(s)
	}
	merged := make([]models.Bar, 0, total)
	for _, s := range series {
		merged = append(merged, s...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].UnixTsNs < merged[j].UnixTsNs
	})
	return merged
}
