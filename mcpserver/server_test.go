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

package mcpserver_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nlpodyssey/coinprice-agent/capability"
	"github.com/nlpodyssey/coinprice-agent/mcpserver"
	"github.com/nlpodyssey/coinprice-agent/pricetool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, status int, body string) *mcp.ClientSession {
	t.Helper()

	ticker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ticker.Close)

	client := pricetool.NewClient(pricetool.ClientParams{Endpoint: ticker.URL})
	registry, err := capability.NewRegistry(pricetool.Capability(client))
	require.NoError(t, err)

	server, err := mcpserver.New(registry, "test")
	require.NoError(t, err)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(t.Context(), serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	mcpClient := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := mcpClient.Connect(t.Context(), clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	session := connect(t, http.StatusOK, `{"symbol": "BTCUSDT", "price": "65000.00"}`)

	res, err := session.ListTools(t.Context(), nil)
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)
	assert.Equal(t, pricetool.ToolName, res.Tools[0].Name)
	assert.Equal(t, pricetool.ToolDescription, res.Tools[0].Description)
}

func TestServer_CallTool(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		session := connect(t, http.StatusOK, `{"symbol": "BTCUSDT", "price": "65000.00"}`)

		res, err := session.CallTool(t.Context(), &mcp.CallToolParams{
			Name:      pricetool.ToolName,
			Arguments: map[string]any{"currency": "BTCUSDT"},
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "✅ BTCUSDT: 65000.00 USDT", textOf(t, res))
	})

	t.Run("http failure", func(t *testing.T) {
		session := connect(t, http.StatusInternalServerError, "")

		res, err := session.CallTool(t.Context(), &mcp.CallToolParams{
			Name:      pricetool.ToolName,
			Arguments: map[string]any{},
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "❌ Failed to fetch price for BTCUSDT", textOf(t, res))
	})

	t.Run("malformed ticker", func(t *testing.T) {
		session := connect(t, http.StatusOK, `[]`)

		res, err := session.CallTool(t.Context(), &mcp.CallToolParams{
			Name:      pricetool.ToolName,
			Arguments: map[string]any{"currency": "ethusdt"},
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), pricetool.ErrMalformedTicker.Error())
	})
}
