// Command yfquote runs the Yahoo Finance leaf provider: realtime price
// snapshots behind the REST surface the registry publishes for it.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/itapia/agent-host/src/yfin"
)

func main() {
	_ = godotenv.Load()

	addr := getenv("LISTEN_ADDR", ":8020")
	base := getenv("API_V1_BASE_ROUTE", "/api/v1")

	quoter := yfin.NewYahooQuoter(os.Getenv("YF_CHART_URL"), nil)
	handler := yfin.NewServer(quoter, base)

	log.Printf("yfquote: listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("yfquote: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
