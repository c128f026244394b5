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

// Package cryptoagent configures the Binance price agent and runs it for
// one user turn, or for an interactive chat.
package cryptoagent

import (
	"github.com/google/uuid"
	"github.com/nlpodyssey/coinprice-agent/capability"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	AgentName         = "Binance Agent"
	AgentInstructions = "You are a helpful crypto assistant that provides live cryptocurrency prices from Binance"
	WorkflowName      = "Binance price lookup"
)

// NewModel returns a chat completions model served by the OpenAI-compatible
// endpoint configured in cfg.
func NewModel(cfg Config) agents.Model {
	client := agents.OpenaiClient{
		Client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
		),
	}
	return agents.NewOpenAIChatCompletionsModel(openai.ChatModel(cfg.Model), client)
}

// NewAgent creates the Binance agent, exposing every capability of registry
// as a tool.
func NewAgent(model agents.Model, registry *capability.Registry) *agents.Agent {
	return agents.New(AgentName).
		WithInstructions(AgentInstructions).
		WithModelInstance(model).
		WithTools(registry.AgentTools()...)
}

// NewRunner returns a runner for the agent. The session may be nil, in which
// case each run starts from an empty history.
func NewRunner(cfg Config, session memory.Session) agents.Runner {
	return agents.Runner{
		Config: agents.RunConfig{
			TracingDisabled: !cfg.TracingEnabled(),
			WorkflowName:    WorkflowName,
			GroupID:         uuid.NewString(),
			MaxTurns:        cfg.MaxTurns,
			Session:         session,
		},
	}
}
