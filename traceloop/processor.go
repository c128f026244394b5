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

// Package traceloop exports agent traces to Traceloop.
//
// Each agent trace becomes a Traceloop workflow and each span a task of that
// workflow. Model generations additionally log their prompt, completion and
// token usage.
package traceloop

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/nlpodyssey/openai-agents-go/tracing"
	sdk "github.com/traceloop/go-openllmetry/traceloop-sdk"
)

const DefaultBaseURL = "api.traceloop.com"

var ErrMissingAPIKey = errors.New("traceloop API key is required")

type Params struct {
	APIKey string

	// Optional. Defaults to DefaultBaseURL.
	BaseURL string

	// Optional association properties attached to every workflow, next to
	// the trace metadata.
	Properties map[string]string

	// Optional. Defaults to slog.Default().
	Logger *slog.Logger
}

// Processor implements tracing.Processor on top of a Traceloop client.
type Processor struct {
	client     *sdk.Traceloop
	properties map[string]string
	logger     *slog.Logger

	mu        sync.Mutex
	workflows map[string]*sdk.Workflow
	tasks     map[string]*sdk.Task
	llmSpans  map[string]*sdk.LLMSpan
}

var _ tracing.Processor = (*Processor)(nil)

func NewProcessor(ctx context.Context, params Params) (*Processor, error) {
	if params.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := sdk.NewClient(ctx, sdk.Config{
		BaseURL: cmp.Or(params.BaseURL, DefaultBaseURL),
		APIKey:  params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Traceloop client: %w", err)
	}

	return &Processor{
		client:     client,
		properties: params.Properties,
		logger:     cmp.Or(params.Logger, slog.Default()),
		workflows:  make(map[string]*sdk.Workflow),
		tasks:      make(map[string]*sdk.Task),
		llmSpans:   make(map[string]*sdk.LLMSpan),
	}, nil
}

func (p *Processor) OnTraceStart(ctx context.Context, trace tracing.Trace) error {
	attrs := sdk.WorkflowAttributes{
		Name:                  cmp.Or(trace.Name(), "Agent workflow"),
		AssociationProperties: associationProperties(p.properties, trace.Export()),
	}
	workflow := p.client.NewWorkflow(ctx, attrs)

	p.mu.Lock()
	p.workflows[trace.TraceID()] = workflow
	p.mu.Unlock()
	return nil
}

func (p *Processor) OnTraceEnd(_ context.Context, trace tracing.Trace) error {
	p.mu.Lock()
	workflow, ok := p.workflows[trace.TraceID()]
	delete(p.workflows, trace.TraceID())
	p.mu.Unlock()

	if ok {
		workflow.End()
	}
	return nil
}

func (p *Processor) OnSpanStart(_ context.Context, span tracing.Span) error {
	p.mu.Lock()
	workflow := p.workflows[span.TraceID()]
	p.mu.Unlock()

	if workflow == nil {
		p.logger.Debug("no Traceloop workflow for span",
			slog.String("trace_id", span.TraceID()),
			slog.String("span_id", span.SpanID()))
		return nil
	}

	data := span.SpanData()
	task := workflow.NewTask(taskName(data))

	var llmSpan *sdk.LLMSpan
	if prompt, ok := promptOf(data); ok {
		s, err := task.LogPrompt(prompt)
		if err != nil {
			p.logger.Warn("failed to log prompt to Traceloop", slog.Any("error", err))
		} else {
			llmSpan = &s
		}
	}

	p.mu.Lock()
	p.tasks[span.SpanID()] = task
	if llmSpan != nil {
		p.llmSpans[span.SpanID()] = llmSpan
	}
	p.mu.Unlock()
	return nil
}

func (p *Processor) OnSpanEnd(ctx context.Context, span tracing.Span) error {
	p.mu.Lock()
	task, hasTask := p.tasks[span.SpanID()]
	llmSpan, hasLLMSpan := p.llmSpans[span.SpanID()]
	delete(p.tasks, span.SpanID())
	delete(p.llmSpans, span.SpanID())
	p.mu.Unlock()

	if hasLLMSpan {
		data := span.SpanData()
		if completion, ok := completionOf(data); ok {
			llmSpan.LogCompletion(ctx, completion, usageOf(data))
		}
	}
	if hasTask {
		task.End()
	}
	return nil
}

// Shutdown flushes pending spans and closes the client.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.client.Shutdown(ctx)
	return nil
}

// ForceFlush is a no-op: the Traceloop client batches and flushes on its own.
func (p *Processor) ForceFlush(context.Context) error { return nil }

func associationProperties(base map[string]string, trace map[string]any) map[string]string {
	props := maps.Clone(base)
	if props == nil {
		props = make(map[string]string)
	}
	if groupID, ok := trace["group_id"].(string); ok && groupID != "" {
		props["group_id"] = groupID
	}
	if metadata, ok := trace["metadata"].(map[string]any); ok {
		for k, v := range metadata {
			props[k] = fmt.Sprint(v)
		}
	}
	return props
}

func taskName(data tracing.SpanData) string {
	switch data := data.(type) {
	case nil:
		return "unknown_task"
	case *tracing.AgentSpanData:
		return "agent_" + data.Name
	case *tracing.FunctionSpanData:
		return "function_" + data.Name
	case *tracing.GenerationSpanData:
		if data.Model != "" {
			return "llm_" + data.Model
		}
		return "llm_generation"
	case *tracing.ResponseSpanData:
		return "llm_response"
	default:
		return data.Type()
	}
}

func promptOf(data tracing.SpanData) (sdk.Prompt, bool) {
	switch data := data.(type) {
	case *tracing.GenerationSpanData:
		return sdk.Prompt{
			Vendor:   "openai",
			Mode:     "chat",
			Model:    data.Model,
			Messages: messages(data.Input),
		}, true
	case *tracing.ResponseSpanData:
		prompt := sdk.Prompt{Vendor: "openai", Mode: "chat"}
		if data.Response != nil {
			prompt.Model = string(data.Response.Model)
		}
		if input, ok := data.Input.([]map[string]any); ok {
			prompt.Messages = messages(input)
		}
		return prompt, true
	default:
		return sdk.Prompt{}, false
	}
}

func completionOf(data tracing.SpanData) (sdk.Completion, bool) {
	switch data := data.(type) {
	case *tracing.GenerationSpanData:
		return sdk.Completion{
			Model:    data.Model,
			Messages: messages(data.Output),
		}, true
	case *tracing.ResponseSpanData:
		if data.Response == nil {
			return sdk.Completion{}, false
		}
		return sdk.Completion{
			Model: string(data.Response.Model),
			Messages: []sdk.Message{{
				Index:   0,
				Role:    "assistant",
				Content: data.Response.OutputText(),
			}},
		}, true
	default:
		return sdk.Completion{}, false
	}
}

func usageOf(data tracing.SpanData) sdk.Usage {
	switch data := data.(type) {
	case *tracing.GenerationSpanData:
		input, output := tokenCount(data.Usage["input_tokens"]), tokenCount(data.Usage["output_tokens"])
		return sdk.Usage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		}
	case *tracing.ResponseSpanData:
		if data.Response == nil {
			return sdk.Usage{}
		}
		u := data.Response.Usage
		return sdk.Usage{
			PromptTokens:     int(u.InputTokens),
			CompletionTokens: int(u.OutputTokens),
			TotalTokens:      int(u.TotalTokens),
		}
	default:
		return sdk.Usage{}
	}
}

func tokenCount(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// messages converts chat messages in their JSON map form. Non-text content,
// such as tool calls, is kept as its JSON-like string rendering.
func messages(items []map[string]any) []sdk.Message {
	if len(items) == 0 {
		return nil
	}
	out := make([]sdk.Message, len(items))
	for i, item := range items {
		role, _ := item["role"].(string)
		out[i] = sdk.Message{
			Index:   i,
			Role:    cmp.Or(role, "user"),
			Content: content(item["content"]),
		}
	}
	return out
}

func content(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
