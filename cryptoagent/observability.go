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

package cryptoagent

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nlpodyssey/coinprice-agent/traceloop"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/tracing"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the program logger and installs it as the Agents SDK
// logger. Records go to stderr, or to a rotating file when cfg.LogFile is
// set. The returned closer releases the file.
func NewLogger(cfg Config, stderr io.Writer) (*slog.Logger, io.Closer) {
	var (
		w      = stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:  cfg.LogFile,
			MaxSize:   20, // megabytes
			Compress:  true,
			LocalTime: true,
		}
		w, closer = rotating, rotating
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))
	agents.SetLogger(logger)
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupTracing configures trace export. Without a Traceloop API key tracing
// is disabled globally, since the default exporter only talks to OpenAI.
// The returned shutdown function flushes pending spans.
func SetupTracing(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.TracingEnabled() {
		tracing.SetTracingDisabled(true)
		return func(context.Context) error { return nil }, nil
	}

	processor, err := traceloop.NewProcessor(ctx, traceloop.Params{
		APIKey:  cfg.TraceloopAPIKey,
		BaseURL: cfg.TraceloopBaseURL,
		Properties: map[string]string{
			"agent": AgentName,
			"model": cfg.Model,
		},
		Logger: agents.Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	return InstallTraceProcessor(processor), nil
}

// InstallTraceProcessor makes processor the only receiver of agent traces
// and enables tracing. The returned function shuts the processor down.
func InstallTraceProcessor(processor tracing.Processor) func(context.Context) error {
	tracing.SetTraceProcessors([]tracing.Processor{processor})
	tracing.SetTracingDisabled(false)
	return processor.Shutdown
}
