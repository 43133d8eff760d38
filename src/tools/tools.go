// Package tools holds the runtime representation of synthesized tools and the
// catalog the agent dispatcher reads them from.
package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/itapia/agent-host/src/schema"
	"github.com/itapia/agent-host/src/spec"
)

// Tool is an invokable capability derived from a ToolSpec: the spec itself,
// the synthesized argument validator, and the bound invoke function. Invoke
// always returns a value the model can observe, never an error.
type Tool struct {
	Spec      spec.ToolSpec
	Validator *schema.ArgValidator
	Invoke    func(ctx context.Context, args map[string]any) any
}

// DuplicateToolError reports two specs claiming the same tool name. This is
// fatal at registry-build time.
type DuplicateToolError struct {
	Name      string
	Providers [2]string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("duplicate tool name %q claimed by providers %q and %q",
		e.Name, e.Providers[0], e.Providers[1])
}

// Catalog is the process-wide tool set shared read-only with the dispatcher.
// Rebuilds replace the whole set atomically; there is no partial mutation.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewCatalog constructs a catalog from the provided tools. A name collision
// returns a DuplicateToolError naming both offending specs.
func NewCatalog(ts []Tool) (*Catalog, error) {
	c := &Catalog{tools: make(map[string]Tool, len(ts))}
	if err := c.fill(ts); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) fill(ts []Tool) error {
	for _, t := range ts {
		key := strings.ToLower(strings.TrimSpace(t.Spec.Name))
		if key == "" {
			return fmt.Errorf("tool with empty name from provider %q", t.Spec.Provider)
		}
		if existing, dup := c.tools[key]; dup {
			return &DuplicateToolError{
				Name:      t.Spec.Name,
				Providers: [2]string{existing.Spec.Provider, t.Spec.Provider},
			}
		}
		c.tools[key] = t
		c.order = append(c.order, key)
	}
	return nil
}

// Replace swaps in a freshly discovered tool set in one step.
func (c *Catalog) Replace(ts []Tool) error {
	next := &Catalog{tools: make(map[string]Tool, len(ts))}
	if err := next.fill(ts); err != nil {
		return err
	}
	c.mu.Lock()
	c.tools = next.tools
	c.order = next.order
	c.mu.Unlock()
	return nil
}

// Lookup returns the tool registered under name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tools[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Specs returns the tool specifications in registration order.
func (c *Catalog) Specs() []spec.ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	specs := make([]spec.ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.tools[key].Spec)
	}
	return specs
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
