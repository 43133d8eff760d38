package registry

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/itapia/agent-host/src/invoker"
	"github.com/itapia/agent-host/src/schema"
	"github.com/itapia/agent-host/src/spec"
	"github.com/itapia/agent-host/src/tools"
)

// Builder composes discovered tool specs into invokable tools: a synthesized
// validator plus an invoker bound to each spec.
type Builder struct {
	client  *Client
	schemas *spec.SchemaRegistry
	invoker *invoker.Invoker
}

// NewBuilder creates a Builder. httpClient is used for the tool calls
// themselves; nil gets the invoker's default.
func NewBuilder(client *Client, schemas *spec.SchemaRegistry, httpClient *http.Client) *Builder {
	return &Builder{
		client:  client,
		schemas: schemas,
		invoker: invoker.New(httpClient),
	}
}

// Discover fetches all tool specs from the registry and builds the tool set.
// An unreachable registry or malformed payload degrades to zero tools with a
// logged warning: the agent must keep answering free-text queries. A name
// collision is the one fatal condition (DuplicateToolError).
func (b *Builder) Discover(ctx context.Context) ([]tools.Tool, error) {
	specs, err := b.client.ListTools(ctx)
	if err != nil {
		log.Printf("registry: tool discovery failed, continuing with zero tools: %v", err)
		return nil, nil
	}

	bases := b.providerBases(ctx)

	built := make([]tools.Tool, 0, len(specs))
	seen := make(map[string]spec.ToolSpec, len(specs))
	for _, ts := range specs {
		if err := ts.Validate(); err != nil {
			log.Printf("registry: skipping malformed tool spec: %v", err)
			continue
		}
		if prior, dup := seen[ts.Name]; dup {
			return nil, &tools.DuplicateToolError{
				Name:      ts.Name,
				Providers: [2]string{prior.Provider, ts.Provider},
			}
		}
		seen[ts.Name] = ts

		resolved, err := resolveEndpoint(ts, bases)
		if err != nil {
			log.Printf("registry: skipping tool %s: %v", ts.Name, err)
			continue
		}

		t, err := b.build(resolved)
		if err != nil {
			log.Printf("registry: skipping tool %s: %v", ts.Name, err)
			continue
		}
		built = append(built, t)
	}
	log.Printf("registry: discovered %d tools", len(built))
	return built, nil
}

// providerBases maps provider names to their base URLs. A failed listing is
// not fatal; tools with absolute endpoints still work.
func (b *Builder) providerBases(ctx context.Context) map[string]string {
	providers, err := b.client.ListProviders(ctx)
	if err != nil {
		log.Printf("registry: provider discovery failed: %v", err)
		return nil
	}
	bases := make(map[string]string, len(providers))
	for _, p := range providers {
		bases[strings.ToLower(p.Name)] = strings.TrimRight(p.BaseURL, "/")
	}
	return bases
}

// resolveEndpoint joins a relative endpoint template to its provider's base
// URL. Absolute endpoints pass through untouched.
func resolveEndpoint(ts spec.ToolSpec, bases map[string]string) (spec.ToolSpec, error) {
	if strings.HasPrefix(ts.Endpoint, "http://") || strings.HasPrefix(ts.Endpoint, "https://") {
		return ts, nil
	}
	base, ok := bases[strings.ToLower(ts.Provider)]
	if !ok {
		return spec.ToolSpec{}, fmt.Errorf("no base URL known for provider %q", ts.Provider)
	}
	resolved := ts
	resolved.Endpoint = base + "/" + strings.TrimLeft(ts.Endpoint, "/")
	return resolved, nil
}

func (b *Builder) build(ts spec.ToolSpec) (tools.Tool, error) {
	validator, err := schema.Build(ts, b.schemas)
	if err != nil {
		return tools.Tool{}, err
	}
	bodyParam := validator.BodyParam()
	boundSpec := ts
	return tools.Tool{
		Spec:      ts,
		Validator: validator,
		Invoke: func(ctx context.Context, args map[string]any) any {
			return b.invoker.Invoke(ctx, boundSpec, bodyParam, args)
		},
	}, nil
}
