package host

import (
	"context"
	"strings"
	"testing"

	"github.com/itapia/agent-host/src/memory"
	"github.com/itapia/agent-host/src/schema"
	"github.com/itapia/agent-host/src/spec"
	"github.com/itapia/agent-host/src/tools"
)

func TestParseToolDirective(t *testing.T) {
	cases := []struct {
		name       string
		completion string
		wantName   string
		wantArgs   string
		wantOK     bool
	}{
		{
			name:       "plain directive",
			completion: `tool:get_stock_realtime_price {"ticker": "FPT"}`,
			wantName:   "get_stock_realtime_price",
			wantArgs:   `{"ticker": "FPT"}`,
			wantOK:     true,
		},
		{
			name:       "directive after reasoning text",
			completion: "I need live data first.\ntool:get_stock_realtime_price {\"ticker\": \"AAPL\"}",
			wantName:   "get_stock_realtime_price",
			wantArgs:   `{"ticker": "AAPL"}`,
			wantOK:     true,
		},
		{
			name:       "directive wrapped in code fence",
			completion: "```\ntool:get_relevant_news {\"ticker\": \"MSFT\"}\n```",
			wantName:   "get_relevant_news",
			wantArgs:   `{"ticker": "MSFT"}`,
			wantOK:     true,
		},
		{
			name:       "no arguments",
			completion: "tool:get_universal_news",
			wantName:   "get_universal_news",
			wantArgs:   "",
			wantOK:     true,
		},
		{
			name:       "free text answer",
			completion: "The price of FPT is 123. Tools were not needed.",
			wantOK:     false,
		},
		{
			name:       "empty payload",
			completion: "tool:",
			wantOK:     false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			name, args, ok := parseToolDirective(tc.completion)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if name != tc.wantName || args != tc.wantArgs {
				t.Errorf("parsed (%q, %q), want (%q, %q)", name, args, tc.wantName, tc.wantArgs)
			}
		})
	}
}

func TestBuildPromptIncludesToolSpecsAndContext(t *testing.T) {
	ts := spec.ToolSpec{
		Name:        "get_stock_realtime_price",
		Description: "Fetch the realtime price snapshot for a ticker.",
		Endpoint:    "http://localhost:8020/api/v1/market/tickers/{ticker}/price/realtime",
		Method:      "GET",
		Provider:    "yfinance",
		ArgsSchema: spec.ArgsSchema{
			Properties: map[string]spec.ParamSpec{"ticker": {Type: "string"}},
			Required:   []string{"ticker"},
		},
	}
	validator, err := schema.Build(ts, spec.NewSchemaRegistry(nil))
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}
	catalog, err := tools.NewCatalog([]tools.Tool{{Spec: ts, Validator: validator}})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	d := newDispatcher(t, Options{
		Model:        &scriptedModel{responses: []string{"x"}},
		Store:        memory.NewInMemoryHistory(),
		Catalog:      catalog,
		SystemPrompt: "You are a test assistant.",
	})

	prompt := d.buildPrompt([]string{"User asked: q\nAssistant answered: a"}, "what now?")

	for _, want := range []string{
		"You are a test assistant.",
		"get_stock_realtime_price",
		"Fetch the realtime price snapshot",
		"tool:<name>",
		"User asked: q",
		"what now?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptWithoutToolsOmitsDirectiveHelp(t *testing.T) {
	d := newDispatcher(t, Options{Model: &scriptedModel{responses: []string{"x"}}})

	prompt := d.buildPrompt(nil, "hello")
	if strings.Contains(prompt, "Available tools") {
		t.Errorf("tool block rendered with empty catalog:\n%s", prompt)
	}
	if !strings.Contains(prompt, "(none)") {
		t.Errorf("empty context marker missing:\n%s", prompt)
	}
}

func TestExecuteToolUnknownName(t *testing.T) {
	d := newDispatcher(t, Options{Model: &scriptedModel{responses: []string{"x"}}})

	obs := d.executeTool(t.Context(), "get_missing", `{}`)
	if !strings.Contains(obs, "unknown tool") {
		t.Errorf("observation = %q", obs)
	}
}

func TestExecuteToolMalformedJSONArguments(t *testing.T) {
	invoked := false
	tool := priceTool(t, func(_ context.Context, _ map[string]any) any {
		invoked = true
		return nil
	})
	catalog, err := tools.NewCatalog([]tools.Tool{tool})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	d := newDispatcher(t, Options{Model: &scriptedModel{responses: []string{"x"}}, Catalog: catalog})

	obs := d.executeTool(t.Context(), "get_stock_realtime_price", `{not json`)
	if !strings.Contains(obs, "not valid JSON") {
		t.Errorf("observation = %q", obs)
	}
	if invoked {
		t.Errorf("tool invoked despite malformed arguments")
	}
}
