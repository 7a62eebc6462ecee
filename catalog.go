package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/productstack/assistant/src/models"
)

// Parameter declares one argument of a tool.
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "number", "boolean", "object"
	Description string
	Required    bool
}

// ToolSpec is the immutable, declarative description of a tool. The catalog
// owns the registered specs; they are what the completion provider sees.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Decl renders the spec for the completion provider.
func (s ToolSpec) Decl() models.ToolDecl {
	decl := models.ToolDecl{Name: s.Name, Description: s.Description}
	for _, p := range s.Parameters {
		decl.Params = append(decl.Params, models.ToolParam{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
		})
	}
	return decl
}

// ToolRequest carries the validated arguments into a handler.
type ToolRequest struct {
	SessionID string
	Arguments map[string]any
}

// ToolResponse is a successful handler result. Failures are returned as
// ordinary errors and converted to failed ToolResults by the invoker.
type ToolResponse struct {
	Content string
}

// Tool is a named capability the agent can invoke.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

// FuncTool adapts a plain function to the Tool interface.
type FuncTool struct {
	spec ToolSpec
	fn   func(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

func NewFuncTool(spec ToolSpec, fn func(ctx context.Context, req ToolRequest) (ToolResponse, error)) *FuncTool {
	return &FuncTool{spec: spec, fn: fn}
}

func (t *FuncTool) Spec() ToolSpec { return t.spec }

func (t *FuncTool) Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error) {
	return t.fn(ctx, req)
}

// Catalog is the in-memory tool registry. Registration happens once at
// process start; afterwards the catalog is shared read-only state.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]Tool
	specs map[string]ToolSpec
	order []string
}

// NewCatalog constructs a catalog seeded with the provided tools. Invalid
// entries are rejected.
func NewCatalog(tools ...Tool) (*Catalog, error) {
	catalog := &Catalog{
		tools: make(map[string]Tool),
		specs: make(map[string]ToolSpec),
	}
	for _, tool := range tools {
		if err := catalog.Register(tool); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// Register adds a tool under a lower-cased key. Duplicate names return an error.
func (c *Catalog) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	spec := tool.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	c.tools[key] = tool
	c.specs[key] = spec
	c.order = append(c.order, key)
	return nil
}

// Lookup returns the tool and its specification if present.
func (c *Catalog) Lookup(name string) (Tool, ToolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	tool, ok := c.tools[key]
	if !ok {
		return nil, ToolSpec{}, false
	}
	return tool, c.specs[key], true
}

// Specs returns a snapshot of the registered specs in registration order.
func (c *Catalog) Specs() []ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}
	return specs
}

// Decls renders every registered spec for the completion provider.
func (c *Catalog) Decls() []models.ToolDecl {
	specs := c.Specs()
	decls := make([]models.ToolDecl, 0, len(specs))
	for _, spec := range specs {
		decls = append(decls, spec.Decl())
	}
	return decls
}
