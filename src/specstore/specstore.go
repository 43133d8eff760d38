// Package specstore serves tool and provider specifications from YAML files.
// It is the registry side of the host: providers publish their specs here,
// the host discovers them at startup.
package specstore

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/itapia/agent-host/src/spec"
)

// Store holds the published spec data. Load failures leave the store empty
// and unhealthy rather than crashing the process; the health endpoint and
// the listing endpoints report 503 until a reload succeeds.
type Store struct {
	toolsFile     string
	providersFile string

	mu        sync.RWMutex
	tools     []spec.ToolSpec
	providers []spec.ProviderSpec
	loadErr   error
}

// New creates a store over the given YAML files and performs the initial
// load.
func New(toolsFile, providersFile string) *Store {
	s := &Store{toolsFile: toolsFile, providersFile: providersFile}
	if err := s.Reload(); err != nil {
		log.Printf("specstore: initial load failed: %v", err)
	}
	return s
}

// Reload re-reads both spec files. On failure the previous data is discarded
// and the store reports unhealthy.
func (s *Store) Reload() error {
	tools, err := spec.LoadToolSpecs(s.toolsFile)
	if err == nil {
		var providers []spec.ProviderSpec
		providers, err = spec.LoadProviderSpecs(s.providersFile)
		if err == nil {
			s.mu.Lock()
			s.tools, s.providers, s.loadErr = tools, providers, nil
			s.mu.Unlock()
			log.Printf("specstore: loaded %d tools, %d providers", len(tools), len(providers))
			return nil
		}
	}

	s.mu.Lock()
	s.tools, s.providers, s.loadErr = nil, nil, err
	s.mu.Unlock()
	return err
}

// Server exposes the store under baseRoute: GET {base}/tools,
// GET {base}/providers, GET {base}/health.
type Server struct {
	store *Store
	mux   *http.ServeMux
}

func NewServer(store *Store, baseRoute string) *Server {
	baseRoute = strings.TrimRight(baseRoute, "/")
	s := &Server{store: store, mux: http.NewServeMux()}
	s.mux.HandleFunc(baseRoute+"/tools", s.handleTools)
	s.mux.HandleFunc(baseRoute+"/providers", s.handleProviders)
	s.mux.HandleFunc(baseRoute+"/health", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	s.store.mu.RLock()
	tools, loadErr := s.store.tools, s.store.loadErr
	s.store.mu.RUnlock()

	if loadErr != nil {
		writeError(w, http.StatusServiceUnavailable, "spec data unavailable")
		return
	}
	if tools == nil {
		tools = []spec.ToolSpec{}
	}
	writeJSON(w, http.StatusOK, tools)
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	s.store.mu.RLock()
	providers, loadErr := s.store.providers, s.store.loadErr
	s.store.mu.RUnlock()

	if loadErr != nil {
		writeError(w, http.StatusServiceUnavailable, "spec data unavailable")
		return
	}
	if providers == nil {
		providers = []spec.ProviderSpec{}
	}
	writeJSON(w, http.StatusOK, providers)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.store.mu.RLock()
	loadErr := s.store.loadErr
	s.store.mu.RUnlock()

	if loadErr != nil {
		writeError(w, http.StatusServiceUnavailable, loadErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
