package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// Tool is one callable capability advertised to the provider and invoked
// by the tool harness.
type Tool interface {
	Name() string
	Description() string
	ParametersSchema() json.RawMessage
	Execute(args json.RawMessage) models.ToolResult
}

// Registry holds the set of tools available to a loop, keyed by unique
// name. It compiles each tool's JSON-Schema once at registration so the
// harness can validate arguments before dispatch instead of letting a
// malformed call reach Execute.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	schemas  map[string]*jsonschema.Schema
	compiler *jsonschema.Compiler
}

// NewRegistry builds an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		schemas:  make(map[string]*jsonschema.Schema),
		compiler: jsonschema.NewCompiler(),
	}
}

// Register adds a tool. It returns an error if a tool with the same name
// is already registered or if its schema fails to compile.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	schemaURL := "mem://tools/" + name + ".json"
	if err := r.compiler.AddResource(schemaURL, bytes.NewReader(t.ParametersSchema())); err != nil {
		return fmt.Errorf("compile schema for tool %q: %w", name, err)
	}
	schema, err := r.compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compile schema for tool %q: %w", name, err)
	}

	r.tools[name] = t
	r.schemas[name] = schema
	return nil
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Validate checks args against the tool's compiled schema.
func (r *Registry) Validate(name string, args json.RawMessage) error {
	r.mu.RLock()
	schema, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return fmt.Errorf("parse arguments: %w", err)
	}
	return schema.Validate(v)
}

// Definitions returns the ToolDefinition form of every registered tool,
// for handing to the provider.
func (r *Registry) Definitions() []models.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]models.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, models.NewToolDefinition(t.Name(), t.Description(), t.ParametersSchema()))
	}
	return defs
}
