// Package barsource fetches historical OHLCV bars over HTTP, caches them
// to disk, and merges multiple symbols' series into the single
// chronologically-ordered sequence the engine consumes.
package barsource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

// barDTO is the wire shape returned by the bar-history endpoint: prices
// as decimal strings, volume as an integer, and a RFC3339 timestamp.
type barDTO struct {
	Symbol string `json:"symbol"`
	Ts     string `json:"ts"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume int64  `json:"volume"`
}

// Client is a retrying HTTP client for one bar-history
// provider, wrapping resty the way the pack's REST clients do: a base
// URL, a bounded timeout, and a 5xx retry policy.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client against baseURL.
func NewClient(baseURL string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		})
	return &Client{http: http}
}

// FetchBars retrieves every bar for symbol between from and to
// (inclusive), ordered chronologically, from GET /bars.
func (c *Client) FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	var dtos []barDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   from.UTC().Format(time.RFC3339),
			"to":     to.UTC().Format(time.RFC3339),
		}).
		SetResult(&dtos).
		Get("/bars")
	if err != nil {
		return nil, fmt.Errorf("barsource: fetch %s: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("barsource: fetch %s: status %d: %s", symbol, resp.StatusCode(), resp.String())
	}

	bars := make([]models.Bar, len(dtos))
	for i, d := range dtos {
		bar, err := toBar(d)
		if err != nil {
			return nil, fmt.Errorf("barsource: decoding bar %d for %s: %w", i, symbol, err)
		}
		bars[i] = bar
	}
	return bars, nil
}

func toBar(d barDTO) (models.Bar, error) {
	ts, err := time.Parse(time.RFC3339, d.Ts)
	if err != nil {
		return models.Bar{}, err
	}
	open, err := money.Parse(d.Open)
	if err != nil {
		return models.Bar{}, err
	}
	high, err := money.Parse(d.High)
	if err != nil {
		return models.Bar{}, err
	}
	low, err := money.Parse(d.Low)
	if err != nil {
		return models.Bar{}, err
	}
	close, err := money.Parse(d.Close)
	if err != nil {
		return models.Bar{}, err
	}
	return models.Bar{
		Symbol:   d.Symbol,
		UnixTsNs: ts.UnixNano(),
		Open:     open,
		High:     high,
		Low:      low,
		Close:    close,
		Volume:   d.Volume,
	}, nil
}
