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

// Package mcpserver exposes a capability registry as Model Context Protocol
// tools, so that any MCP client can call them without an agent in between.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nlpodyssey/coinprice-agent/capability"
)

const Name = "coinprice"

// New creates an MCP server with one tool per capability of registry.
func New(registry *capability.Registry, version string) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)

	for _, c := range registry.All() {
		schema, err := inputSchema(c)
		if err != nil {
			return nil, err
		}
		server.AddTool(&mcp.Tool{
			Name:        c.Name,
			Description: c.Description,
			InputSchema: schema,
		}, toolHandler(registry, c.Name))
	}
	return server, nil
}

// ServeStdio runs server over stdin and stdout until the client disconnects
// or ctx is done.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func inputSchema(c capability.Capability) (*jsonschema.Schema, error) {
	if c.Parameters == nil {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	b, err := json.Marshal(c.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s parameters: %w", c.Name, err)
	}
	schema := new(jsonschema.Schema)
	if err = json.Unmarshal(b, schema); err != nil {
		return nil, fmt.Errorf("invalid %s parameters schema: %w", c.Name, err)
	}
	return schema, nil
}

func toolHandler(registry *capability.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var arguments string
		if req.Params != nil {
			arguments = string(req.Params.Arguments)
		}

		out, err := registry.Invoke(ctx, name, arguments)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
		}, nil
	}
}
