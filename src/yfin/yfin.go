// Package yfin is the Yahoo Finance leaf provider: a small REST service that
// serves real-time price snapshots for a ticker. Failures are reported in
// the response body so callers never have to interpret transport errors.
package yfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RealtimePrice is the wire shape of a price snapshot. A populated Error
// field with the other fields empty means the lookup failed.
type RealtimePrice struct {
	Ticker     string   `json:"ticker"`
	Open       *float64 `json:"open,omitempty"`
	DayHigh    *float64 `json:"day_high,omitempty"`
	DayLow     *float64 `json:"day_low,omitempty"`
	LastPrice  *float64 `json:"last_price,omitempty"`
	LastVolume *int64   `json:"last_volume,omitempty"`
	TS         int64    `json:"ts"`
	Error      string   `json:"error,omitempty"`
}

// Quoter fetches a realtime snapshot for a ticker.
type Quoter interface {
	Quote(ctx context.Context, ticker string) RealtimePrice
}

const defaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooQuoter reads Yahoo Finance's public chart API.
type YahooQuoter struct {
	baseURL string
	client  *http.Client
}

// NewYahooQuoter creates a quoter. baseURL "" uses the public Yahoo endpoint;
// client nil uses a 10s-timeout default.
func NewYahooQuoter(baseURL string, client *http.Client) *YahooQuoter {
	if baseURL == "" {
		baseURL = defaultChartURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &YahooQuoter{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice   *float64 `json:"regularMarketPrice"`
				RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  *int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Open []*float64 `json:"open"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (q *YahooQuoter) Quote(ctx context.Context, ticker string) RealtimePrice {
	now := time.Now().UTC().Unix()
	fail := func(msg string) RealtimePrice {
		return RealtimePrice{Ticker: ticker, TS: now, Error: msg}
	}

	reqURL := fmt.Sprintf("%s/%s?interval=1m&range=1d", q.baseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(fmt.Sprintf("build request for %s: %v", ticker, err))
	}
	req.Header.Set("User-Agent", "agent-host-yfquote/1.0")

	resp, err := q.client.Do(req)
	if err != nil {
		return fail(fmt.Sprintf("query upstream for %s: %v", ticker, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Sprintf("upstream returned status %d for %s", resp.StatusCode, ticker))
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return fail(fmt.Sprintf("decode upstream response for %s: %v", ticker, err))
	}
	if chart.Chart.Error != nil {
		return fail(chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return fail(fmt.Sprintf("no realtime data found for ticker %q", ticker))
	}

	result := chart.Chart.Result[0]
	if result.Meta.RegularMarketPrice == nil {
		return fail(fmt.Sprintf("no realtime data found for ticker %q", ticker))
	}

	price := RealtimePrice{
		Ticker:     ticker,
		DayHigh:    result.Meta.RegularMarketDayHigh,
		DayLow:     result.Meta.RegularMarketDayLow,
		LastPrice:  result.Meta.RegularMarketPrice,
		LastVolume: result.Meta.RegularMarketVolume,
		TS:         now,
	}
	for _, quote := range result.Indicators.Quote {
		for _, open := range quote.Open {
			if open != nil {
				price.Open = open
				break
			}
		}
		if price.Open != nil {
			break
		}
	}
	return price
}

var _ Quoter = (*YahooQuoter)(nil)
