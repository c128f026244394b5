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
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nlpodyssey/openai-agents-go/agents"
)

const (
	DefaultPrompt     = "Ask about crypto prices: "
	DefaultChatPrompt = "> "
)

// ErrNoInput is returned by Assistant.Ask when the input ends before a line
// could be read.
var ErrNoInput = errors.New("no input")

// Runner runs an agent for one user turn until it produces a final output.
// agents.Runner implements it.
type Runner interface {
	Run(ctx context.Context, startingAgent *agents.Agent, input string) (*agents.RunResult, error)
}

// Assistant binds an agent to a runner.
type Assistant struct {
	Agent  *agents.Agent
	Runner Runner

	// Optional prompt written before reading the question.
	// Defaults to DefaultPrompt.
	Prompt string
}

// Ask writes the prompt to out, reads one line from in, runs the agent once
// and writes its final output to out. Nothing follows the prompt if the run
// fails or ends without output.
func (a *Assistant) Ask(ctx context.Context, in io.Reader, out io.Writer) error {
	if _, err := io.WriteString(out, cmp.Or(a.Prompt, DefaultPrompt)); err != nil {
		return err
	}

	query, err := readLine(bufio.NewReader(in))
	if err != nil {
		return err
	}

	result, err := a.Runner.Run(ctx, a.Agent, query)
	if err != nil {
		return fmt.Errorf("agent run failed: %w", err)
	}

	return writeOutput(out, result)
}

// Chat runs one agent turn per input line until in is exhausted or the user
// types "exit" or "quit". Conversation history is kept only if the runner
// has a session.
func (a *Assistant) Chat(ctx context.Context, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	for {
		if _, err := io.WriteString(out, DefaultChatPrompt); err != nil {
			return err
		}

		line, err := readLine(r)
		if errors.Is(err, ErrNoInput) {
			_, err = io.WriteString(out, "\n")
			return err
		}
		if err != nil {
			return err
		}

		switch v := strings.ToLower(strings.TrimSpace(line)); v {
		case "exit", "quit":
			return nil
		case "":
			continue
		}

		result, err := a.Runner.Run(ctx, a.Agent, line)
		if err != nil {
			return fmt.Errorf("agent run failed: %w", err)
		}
		if err = writeOutput(out, result); err != nil {
			return err
		}
	}
}

// writeOutput writes the final output of result followed by a newline.
// A missing or empty output writes nothing.
func writeOutput(out io.Writer, result *agents.RunResult) error {
	if result == nil || result.FinalOutput == nil || result.FinalOutput == "" {
		return nil
	}
	_, err := fmt.Fprintln(out, result.FinalOutput)
	return err
}

// readLine returns the next line without its terminator. A final line
// without terminator is accepted; an exhausted reader yields ErrNoInput.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", ErrNoInput
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
