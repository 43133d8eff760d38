package yfin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {
        "regularMarketPrice": 123.4,
        "regularMarketDayHigh": 125.0,
        "regularMarketDayLow": 121.5,
        "regularMarketVolume": 1000000
      },
      "indicators": {
        "quote": [{"open": [null, 122.0, 122.5]}]
      }
    }],
    "error": null
  }
}`

func upstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestQuoteParsesChartResponse(t *testing.T) {
	srv := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/FPT" {
			t.Errorf("upstream path = %q", r.URL.Path)
		}
		io.WriteString(w, chartFixture)
	})

	q := NewYahooQuoter(srv.URL, srv.Client())
	price := q.Quote(context.Background(), "FPT")

	if price.Error != "" {
		t.Fatalf("unexpected error: %s", price.Error)
	}
	if price.Ticker != "FPT" {
		t.Errorf("ticker = %q", price.Ticker)
	}
	if price.LastPrice == nil || *price.LastPrice != 123.4 {
		t.Errorf("last_price = %v", price.LastPrice)
	}
	if price.Open == nil || *price.Open != 122.0 {
		t.Errorf("open = %v, want first non-null open", price.Open)
	}
	if price.LastVolume == nil || *price.LastVolume != 1000000 {
		t.Errorf("last_volume = %v", price.LastVolume)
	}
	if price.TS == 0 {
		t.Errorf("ts not set")
	}
}

func TestQuoteUnknownTickerIsErrorAsData(t *testing.T) {
	srv := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"chart": {"result": [], "error": {"description": "No data found"}}}`)
	})

	q := NewYahooQuoter(srv.URL, srv.Client())
	price := q.Quote(context.Background(), "NOPE")

	if price.Error == "" {
		t.Fatal("expected error in response body")
	}
	if price.LastPrice != nil {
		t.Errorf("last_price should be absent, got %v", price.LastPrice)
	}
}

func TestQuoteUpstreamFailureIsErrorAsData(t *testing.T) {
	srv := upstream(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	q := NewYahooQuoter(srv.URL, nil)
	price := q.Quote(context.Background(), "FPT")
	if price.Error == "" {
		t.Fatal("expected error for unreachable upstream")
	}
}

// staticQuoter serves a fixed snapshot for handler tests.
type staticQuoter struct {
	price RealtimePrice
}

func (s staticQuoter) Quote(_ context.Context, ticker string) RealtimePrice {
	p := s.price
	p.Ticker = ticker
	return p
}

func TestServerServesRealtimeRoute(t *testing.T) {
	last := 99.9
	srv := httptest.NewServer(NewServer(staticQuoter{price: RealtimePrice{LastPrice: &last, TS: 1}}, "/api/v1"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/market/tickers/AAPL/price/realtime")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var price RealtimePrice
	if err := json.NewDecoder(resp.Body).Decode(&price); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if price.Ticker != "AAPL" || price.LastPrice == nil || *price.LastPrice != 99.9 {
		t.Errorf("price = %+v", price)
	}
}

func TestServerRejectsMalformedPaths(t *testing.T) {
	srv := httptest.NewServer(NewServer(staticQuoter{}, "/api/v1"))
	defer srv.Close()

	for _, path := range []string{
		"/api/v1/market/tickers//price/realtime",
		"/api/v1/market/tickers/AAPL/price",
		"/api/v1/market/tickers/AAPL/quote/realtime",
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestServerHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer(staticQuoter{}, "/api/v1"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
