package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/itapia/agent-host/src/cache"
	"github.com/itapia/agent-host/src/memory"
	"github.com/itapia/agent-host/src/schema"
	"github.com/itapia/agent-host/src/spec"
	"github.com/itapia/agent-host/src/tools"
)

// scriptedModel returns canned completions in order and records every prompt.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	calls     int
	prompts   []string
	err       error
}

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.prompts = append(m.prompts, prompt)
	resp := m.responses[len(m.responses)-1]
	if m.calls < len(m.responses) {
		resp = m.responses[m.calls]
	}
	m.calls++
	return resp, nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// failingStore simulates an unavailable memory backend.
type failingStore struct {
	historyErr error
	appendErr  error
	inner      *memory.InMemoryHistory
}

func (s *failingStore) Append(ctx context.Context, sessionID string, turns ...memory.Turn) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	return s.inner.Append(ctx, sessionID, turns...)
}

func (s *failingStore) History(ctx context.Context, sessionID string) ([]memory.Turn, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.inner.History(ctx, sessionID)
}

// failingCache simulates an unreachable cache backend.
type failingCache struct {
	lookupErr error
	storeErr  error
	inner     cache.Cache
}

func (c *failingCache) Lookup(ctx context.Context, key string) (string, bool, error) {
	if c.lookupErr != nil {
		return "", false, c.lookupErr
	}
	return c.inner.Lookup(ctx, key)
}

func (c *failingCache) Store(ctx context.Context, key, value string) error {
	if c.storeErr != nil {
		return c.storeErr
	}
	return c.inner.Store(ctx, key, value)
}

func priceTool(t *testing.T, invoke func(ctx context.Context, args map[string]any) any) tools.Tool {
	t.Helper()
	ts := spec.ToolSpec{
		Name:     "get_stock_realtime_price",
		Endpoint: "http://localhost:8020/api/v1/market/tickers/{ticker}/price/realtime",
		Method:   "GET",
		Provider: "yfinance",
		ArgsSchema: spec.ArgsSchema{
			Properties: map[string]spec.ParamSpec{"ticker": {Type: "string"}},
			Required:   []string{"ticker"},
		},
	}
	validator, err := schema.Build(ts, spec.NewSchemaRegistry(nil))
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}
	return tools.Tool{Spec: ts, Validator: validator, Invoke: invoke}
}

func newDispatcher(t *testing.T, opts Options) *Dispatcher {
	t.Helper()
	if opts.Store == nil {
		opts.Store = memory.NewInMemoryHistory()
	}
	d, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDispatchFreeTextWithZeroTools(t *testing.T) {
	model := &scriptedModel{responses: []string{"The market is closed today."}}
	d := newDispatcher(t, Options{Model: model})

	got, err := d.Dispatch(context.Background(), "s1", "is the market open?")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != "The market is closed today." {
		t.Errorf("answer = %q", got)
	}
}

func TestDispatchCacheIdempotence(t *testing.T) {
	model := &scriptedModel{responses: []string{"FPT closed at 123."}}
	d := newDispatcher(t, Options{
		Model: model,
		Cache: cache.NewInMemoryCache(16, 0),
	})

	first, err := d.Dispatch(context.Background(), "s1", "what is the FPT price?")
	if err != nil {
		t.Fatalf("first Dispatch: %v", err)
	}
	second, err := d.Dispatch(context.Background(), "s2", "what is the FPT price?")
	if err != nil {
		t.Fatalf("second Dispatch: %v", err)
	}

	if first != second {
		t.Errorf("answers differ: %q vs %q", first, second)
	}
	if model.callCount() != 1 {
		t.Errorf("model called %d times, want exactly 1", model.callCount())
	}
}

func TestDispatchCacheHitLeavesHistoryUntouched(t *testing.T) {
	store := memory.NewInMemoryHistory()
	model := &scriptedModel{responses: []string{"cached answer"}}
	d := newDispatcher(t, Options{
		Model: model,
		Store: store,
		Cache: cache.NewInMemoryCache(16, 0),
	})

	ctx := context.Background()
	if _, err := d.Dispatch(ctx, "s1", "same question"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if _, err := d.Dispatch(ctx, "s1", "same question"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history has %d turns, want 2 (hit must not append)", len(history))
	}
}

func TestDispatchAppendsUserThenAssistant(t *testing.T) {
	store := memory.NewInMemoryHistory()
	model := &scriptedModel{responses: []string{"answer one", "answer two", "answer three"}}
	d := newDispatcher(t, Options{Model: model, Store: store})

	ctx := context.Background()
	questions := []string{"q1", "q2", "q3"}
	for _, q := range questions {
		if _, err := d.Dispatch(ctx, "s1", q); err != nil {
			t.Fatalf("Dispatch(%q): %v", q, err)
		}
	}

	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2*len(questions) {
		t.Fatalf("history has %d turns, want %d", len(history), 2*len(questions))
	}
	for i, q := range questions {
		if history[2*i].Role != "user" || history[2*i].Content != q {
			t.Errorf("turn %d = %+v, want user %q", 2*i, history[2*i], q)
		}
		if history[2*i+1].Role != "assistant" {
			t.Errorf("turn %d role = %q, want assistant", 2*i+1, history[2*i+1].Role)
		}
	}
}

func TestDispatchRunsToolLoop(t *testing.T) {
	var gotArgs map[string]any
	tool := priceTool(t, func(_ context.Context, args map[string]any) any {
		gotArgs = args
		return map[string]any{"ticker": "FPT", "last_price": 123.4}
	})
	catalog, err := tools.NewCatalog([]tools.Tool{tool})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	model := &scriptedModel{responses: []string{
		`tool:get_stock_realtime_price {"ticker": "FPT"}`,
		"FPT last traded at 123.4.",
	}}
	d := newDispatcher(t, Options{Model: model, Catalog: catalog})

	got, err := d.Dispatch(context.Background(), "s1", "FPT price now?")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != "FPT last traded at 123.4." {
		t.Errorf("answer = %q", got)
	}
	if gotArgs["ticker"] != "FPT" {
		t.Errorf("tool args = %v", gotArgs)
	}
	if model.callCount() != 2 {
		t.Errorf("model called %d times, want 2", model.callCount())
	}

	secondPrompt := model.prompts[1]
	if !strings.Contains(secondPrompt, "last_price") {
		t.Errorf("observation missing from follow-up prompt:\n%s", secondPrompt)
	}
}

func TestDispatchToolFailureBecomesObservation(t *testing.T) {
	tool := priceTool(t, func(_ context.Context, _ map[string]any) any {
		return map[string]any{"tool": "get_stock_realtime_price", "error": "HTTP 500: upstream down"}
	})
	catalog, err := tools.NewCatalog([]tools.Tool{tool})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	model := &scriptedModel{responses: []string{
		`tool:get_stock_realtime_price {"ticker": "FPT"}`,
		"I could not fetch the price right now.",
	}}
	d := newDispatcher(t, Options{Model: model, Catalog: catalog})

	got, err := d.Dispatch(context.Background(), "s1", "FPT price now?")
	if err != nil {
		t.Fatalf("Dispatch should not fail on tool errors: %v", err)
	}
	if got != "I could not fetch the price right now." {
		t.Errorf("answer = %q", got)
	}
	if !strings.Contains(model.prompts[1], "upstream down") {
		t.Errorf("error observation missing from follow-up prompt")
	}
}

func TestDispatchValidationFailureBecomesObservation(t *testing.T) {
	invoked := false
	tool := priceTool(t, func(_ context.Context, _ map[string]any) any {
		invoked = true
		return nil
	})
	catalog, err := tools.NewCatalog([]tools.Tool{tool})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	model := &scriptedModel{responses: []string{
		`tool:get_stock_realtime_price {}`,
		"I need a ticker symbol to look that up.",
	}}
	d := newDispatcher(t, Options{Model: model, Catalog: catalog})

	if _, err := d.Dispatch(context.Background(), "s1", "price please"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if invoked {
		t.Errorf("tool was invoked despite failed validation")
	}
	if !strings.Contains(model.prompts[1], "required argument is missing") {
		t.Errorf("validation observation missing from follow-up prompt:\n%s", model.prompts[1])
	}
}

func TestDispatchBoundedIterations(t *testing.T) {
	tool := priceTool(t, func(_ context.Context, _ map[string]any) any {
		return map[string]any{"last_price": 1.0}
	})
	catalog, err := tools.NewCatalog([]tools.Tool{tool})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	// The model never stops asking for the tool.
	model := &scriptedModel{responses: []string{`tool:get_stock_realtime_price {"ticker": "FPT"}`}}
	d := newDispatcher(t, Options{Model: model, Catalog: catalog, MaxIters: 3})

	got, err := d.Dispatch(context.Background(), "s1", "loop forever")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if model.callCount() != 3 {
		t.Errorf("model called %d times, want 3", model.callCount())
	}
	if strings.Contains(got, "tool:") {
		t.Errorf("raw directive leaked to the user: %q", got)
	}
	if !strings.Contains(got, "3 tool calls") {
		t.Errorf("answer = %q, want a stop notice naming the limit", got)
	}
}

func TestDispatchHistoryFailureAbortsTurn(t *testing.T) {
	model := &scriptedModel{responses: []string{"never"}}
	d := newDispatcher(t, Options{
		Model: model,
		Store: &failingStore{historyErr: fmt.Errorf("redis: connection refused")},
	})

	_, err := d.Dispatch(context.Background(), "s1", "hello")
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
	if model.callCount() != 0 {
		t.Errorf("model was called %d times before abort", model.callCount())
	}
}

func TestDispatchAppendFailureAbortsTurn(t *testing.T) {
	model := &scriptedModel{responses: []string{"answer"}}
	d := newDispatcher(t, Options{
		Model: model,
		Store: &failingStore{
			appendErr: fmt.Errorf("write timeout"),
			inner:     memory.NewInMemoryHistory(),
		},
	})

	_, err := d.Dispatch(context.Background(), "s1", "hello")
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
}

func TestDispatchCacheLookupFailureAbortsTurn(t *testing.T) {
	model := &scriptedModel{responses: []string{"never"}}
	d := newDispatcher(t, Options{
		Model: model,
		Cache: &failingCache{lookupErr: fmt.Errorf("redis: connection refused")},
	})

	_, err := d.Dispatch(context.Background(), "s1", "what is the FPT price?")
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
	if unavailable.Backend != "cache" {
		t.Errorf("backend = %q, want cache", unavailable.Backend)
	}
	if model.callCount() != 0 {
		t.Errorf("model was called %d times before abort", model.callCount())
	}
}

func TestDispatchCacheStoreFailureAbortsTurn(t *testing.T) {
	store := memory.NewInMemoryHistory()
	model := &scriptedModel{responses: []string{"answer"}}
	d := newDispatcher(t, Options{
		Model: model,
		Store: store,
		Cache: &failingCache{
			storeErr: fmt.Errorf("redis: connection refused"),
			inner:    cache.NewInMemoryCache(16, 0),
		},
	})

	ctx := context.Background()
	_, err := d.Dispatch(ctx, "s1", "what is the FPT price?")
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
	if unavailable.Backend != "cache" {
		t.Errorf("backend = %q, want cache", unavailable.Backend)
	}

	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history has %d turns, want 0 after aborted turn", len(history))
	}
}

func TestDispatchRejectsEmptyMessage(t *testing.T) {
	d := newDispatcher(t, Options{Model: &scriptedModel{responses: []string{"x"}}})
	if _, err := d.Dispatch(context.Background(), "s1", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestNewRequiresModelAndStore(t *testing.T) {
	if _, err := New(Options{Store: memory.NewInMemoryHistory()}); err == nil {
		t.Error("expected error without model")
	}
	if _, err := New(Options{Model: &scriptedModel{responses: []string{"x"}}}); err == nil {
		t.Error("expected error without store")
	}
}
