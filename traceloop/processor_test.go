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

package traceloop

import (
	"testing"

	"github.com/nlpodyssey/openai-agents-go/tracing"
	"github.com/stretchr/testify/assert"
	sdk "github.com/traceloop/go-openllmetry/traceloop-sdk"
)

func TestNewProcessor_MissingAPIKey(t *testing.T) {
	p, err := NewProcessor(t.Context(), Params{BaseURL: "localhost:1"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Nil(t, p)
}

func TestTaskName(t *testing.T) {
	tests := []struct {
		data tracing.SpanData
		want string
	}{
		{nil, "unknown_task"},
		{&tracing.AgentSpanData{Name: "Binance Agent"}, "agent_Binance Agent"},
		{&tracing.FunctionSpanData{Name: "get_coin_price"}, "function_get_coin_price"},
		{&tracing.GenerationSpanData{Model: "gemini-2.0-flash"}, "llm_gemini-2.0-flash"},
		{&tracing.GenerationSpanData{}, "llm_generation"},
		{&tracing.ResponseSpanData{}, "llm_response"},
		{&tracing.HandoffSpanData{}, "handoff"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, taskName(tt.data))
	}
}

func TestPromptAndCompletion(t *testing.T) {
	data := &tracing.GenerationSpanData{
		Model: "gemini-2.0-flash",
		Input: []map[string]any{
			{"role": "system", "content": "You are a helpful crypto assistant"},
			{"content": "What is BTC price?"},
		},
		Output: []map[string]any{
			{"role": "assistant", "content": "✅ BTCUSDT: 65000.00 USDT"},
		},
		Usage: map[string]any{"input_tokens": uint64(12), "output_tokens": uint64(8)},
	}

	prompt, ok := promptOf(data)
	assert.True(t, ok)
	assert.Equal(t, sdk.Prompt{
		Vendor: "openai",
		Mode:   "chat",
		Model:  "gemini-2.0-flash",
		Messages: []sdk.Message{
			{Index: 0, Role: "system", Content: "You are a helpful crypto assistant"},
			{Index: 1, Role: "user", Content: "What is BTC price?"},
		},
	}, prompt)

	completion, ok := completionOf(data)
	assert.True(t, ok)
	assert.Equal(t, sdk.Completion{
		Model: "gemini-2.0-flash",
		Messages: []sdk.Message{
			{Index: 0, Role: "assistant", Content: "✅ BTCUSDT: 65000.00 USDT"},
		},
	}, completion)

	assert.Equal(t, sdk.Usage{PromptTokens: 12, CompletionTokens: 8, TotalTokens: 20}, usageOf(data))
}

func TestPromptOf_NotLLMSpan(t *testing.T) {
	_, ok := promptOf(&tracing.FunctionSpanData{Name: "get_coin_price"})
	assert.False(t, ok)
	_, ok = completionOf(&tracing.ResponseSpanData{})
	assert.False(t, ok)
	assert.Equal(t, sdk.Usage{}, usageOf(&tracing.AgentSpanData{}))
}

func TestAssociationProperties(t *testing.T) {
	base := map[string]string{"agent": "Binance Agent"}
	props := associationProperties(base, map[string]any{
		"group_id": "group-1",
		"metadata": map[string]any{"turns": 2},
	})

	assert.Equal(t, map[string]string{
		"agent":    "Binance Agent",
		"group_id": "group-1",
		"turns":    "2",
	}, props)
	assert.Len(t, base, 1)

	assert.Empty(t, associationProperties(nil, map[string]any{"group_id": nil}))
}
