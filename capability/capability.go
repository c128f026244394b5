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

// Package capability describes local functions that an external dispatcher,
// such as an agent runner or an MCP client, can call by name.
package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrUnknownCapability   = errors.New("unknown capability")
	ErrDuplicateCapability = errors.New("duplicate capability")
)

// Handler runs a capability. The arguments are a JSON object, as produced by
// the dispatcher; an empty string means no arguments.
type Handler func(ctx context.Context, arguments string) (string, error)

// Capability is a named, described, schema-typed function.
type Capability struct {
	// The name shown to the dispatcher. Must be unique within a Registry.
	Name string

	// A description shown to the dispatcher.
	Description string

	// JSON schema of the arguments object.
	Parameters map[string]any

	Invoke Handler
}

// ArgumentsError reports arguments that do not match a capability's schema.
type ArgumentsError struct {
	Capability string
	Details    []string
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Capability, strings.Join(e.Details, "; "))
}

// ReflectParameters builds the arguments schema of T, which must be a struct.
// Fields are required unless their json tag carries "omitempty".
func ReflectParameters[T any]() map[string]any {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: false,
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
	}

	var zero T
	schema := reflector.Reflect(&zero)

	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Errorf("failed to marshal parameters schema: %w", err))
	}
	var m map[string]any
	if err = json.Unmarshal(b, &m); err != nil {
		panic(fmt.Errorf("failed to unmarshal parameters schema: %w", err))
	}

	// Model providers reject schema meta keywords in tool parameters.
	delete(m, "$schema")
	delete(m, "$id")
	return m
}

// validate checks arguments against the capability's parameters schema.
func (c Capability) validate(arguments string) error {
	if c.Parameters == nil {
		return nil
	}
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(c.Parameters),
		gojsonschema.NewStringLoader(arguments),
	)
	if err != nil {
		return &ArgumentsError{Capability: c.Name, Details: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		details[i] = e.String()
	}
	return &ArgumentsError{Capability: c.Name, Details: details}
}
