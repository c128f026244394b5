// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package capability

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v3/packages/param"
)

// Registry holds capabilities by name, in registration order.
//
// The zero value is an empty registry ready to use.
type Registry struct {
	mu     sync.RWMutex
	names  []string
	byName map[string]Capability
}

// NewRegistry creates a registry holding the given capabilities.
func NewRegistry(capabilities ...Capability) (*Registry, error) {
	r := new(Registry)
	for _, c := range capabilities {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds c to the registry.
func (r *Registry) Register(c Capability) error {
	if c.Name == "" {
		return errors.New("capability name must not be empty")
	}
	if c.Invoke == nil {
		return fmt.Errorf("capability %q has no handler", c.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[c.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCapability, c.Name)
	}
	if r.byName == nil {
		r.byName = make(map[string]Capability)
	}
	r.byName[c.Name] = c
	r.names = append(r.names, c.Name)
	return nil
}

func (r *Registry) Lookup(name string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

// All returns the registered capabilities in registration order.
func (r *Registry) All() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Capability, len(r.names))
	for i, name := range r.names {
		out[i] = r.byName[name]
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Invoke validates the arguments of the named capability and runs it.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, name)
	}
	if err := c.validate(arguments); err != nil {
		return "", err
	}
	return c.Invoke(ctx, arguments)
}

// AgentTools exposes every capability as an agents.FunctionTool.
// Calls made by the agent go through Invoke. A capability error is not
// reported back to the model: it fails the whole run.
func (r *Registry) AgentTools() []agents.Tool {
	capabilities := r.All()
	tools := make([]agents.Tool, len(capabilities))
	for i, c := range capabilities {
		name := c.Name
		tools[i] = agents.FunctionTool{
			Name:             c.Name,
			Description:      c.Description,
			ParamsJSONSchema: c.Parameters,
			OnInvokeTool: func(ctx context.Context, arguments string) (any, error) {
				return r.Invoke(ctx, name, arguments)
			},
			// A nil error function makes the runner return the tool error.
			FailureErrorFunction: new(agents.ToolErrorFunction),
			// Optional parameters are not expressible in strict mode.
			StrictJSONSchema: param.NewOpt(false),
		}
	}
	return tools
}
