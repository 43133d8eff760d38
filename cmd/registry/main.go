// Command registry serves tool and provider specifications from YAML files
// so agent hosts can discover the available tools at startup.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/itapia/agent-host/src/specstore"
)

func main() {
	_ = godotenv.Load()

	addr := getenv("LISTEN_ADDR", ":8010")
	base := getenv("API_V1_BASE_ROUTE", "/api/v1")
	toolsFile := getenv("TOOLS_FILE", "spec/tools.yaml")
	providersFile := getenv("PROVIDERS_FILE", "spec/providers.yaml")

	store := specstore.New(toolsFile, providersFile)
	handler := specstore.NewServer(store, base)

	log.Printf("registry: listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("registry: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
