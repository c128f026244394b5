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

package cryptoagent_test

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nlpodyssey/coinprice-agent/cryptoagent"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/agentstesting"
	"github.com/nlpodyssey/openai-agents-go/tracing"
	"github.com/nlpodyssey/openai-agents-go/tracing/tracingtesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Cleanup(agents.ResetLogger)

	t.Run("stderr", func(t *testing.T) {
		var stderr strings.Builder
		logger, closer := cryptoagent.NewLogger(cryptoagent.Config{LogLevel: slog.LevelWarn}, &stderr)
		t.Cleanup(func() { assert.NoError(t, closer.Close()) })

		logger.Info("hidden")
		logger.Warn("shown")
		agents.Logger().Error("from sdk")

		assert.NotContains(t, stderr.String(), "hidden")
		assert.Contains(t, stderr.String(), "msg=shown")
		assert.Contains(t, stderr.String(), `msg="from sdk"`)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "coinprice.log")
		var stderr strings.Builder
		logger, closer := cryptoagent.NewLogger(cryptoagent.Config{
			LogLevel: slog.LevelDebug,
			LogFile:  path,
		}, &stderr)

		logger.Debug("to file")
		require.NoError(t, closer.Close())

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(b), `msg="to file"`)
		assert.Empty(t, stderr.String())
	})
}

func TestSetupTracing_Disabled(t *testing.T) {
	shutdown, err := cryptoagent.SetupTracing(t.Context(), cryptoagent.Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(t.Context()))
}

func TestInstallTraceProcessor(t *testing.T) {
	t.Cleanup(func() {
		tracing.SetTraceProcessors(nil)
		tracing.SetTracingDisabled(true)
	})

	processor := tracingtesting.NewSpanProcessorForTests()
	shutdown := cryptoagent.InstallTraceProcessor(processor)

	model := agentstesting.NewFakeModel(false, nil)
	model.SetNextOutput(agentstesting.FakeModelTurnOutput{
		Value: []agents.TResponseOutputItem{agentstesting.GetTextMessage("hello")},
	})
	registry, _ := priceRegistry(t, http.StatusOK, btcTicker)
	cfg := cryptoagent.Config{TraceloopAPIKey: "key", MaxTurns: agents.DefaultMaxTurns}

	result, err := cryptoagent.NewRunner(cfg, nil).Run(t.Context(), cryptoagent.NewAgent(model, registry), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", result.FinalOutput)

	traces := processor.GetTraces(false)
	require.Len(t, traces, 1)
	assert.Equal(t, cryptoagent.WorkflowName, traces[0].Name())

	var agentSpans []string
	for _, span := range processor.GetOrderedSpans(false, false) {
		if data, ok := span.SpanData().(*tracing.AgentSpanData); ok {
			agentSpans = append(agentSpans, data.Name)
		}
	}
	assert.Equal(t, []string{cryptoagent.AgentName}, agentSpans)

	assert.NoError(t, shutdown(t.Context()))
}
