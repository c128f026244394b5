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

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/nlpodyssey/coinprice-agent/capability"
	"github.com/nlpodyssey/coinprice-agent/cryptoagent"
	"github.com/nlpodyssey/coinprice-agent/mcpserver"
	"github.com/nlpodyssey/coinprice-agent/pricetool"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/urfave/cli/v2"
)

const version = "v0.1.0"

type options struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	newModel   func(cryptoagent.Config) agents.Model
	httpClient *http.Client
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return options{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		getenv:   os.Getenv,
		newModel: cryptoagent.NewModel,
	}.app()
}

func (o options) app() *cli.App {
	return &cli.App{
		Name:      "coinprice",
		Usage:     "ask an agent about live cryptocurrency prices from Binance",
		Version:   version,
		Reader:    o.stdin,
		Writer:    o.stdout,
		ErrWriter: o.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "load environment variables from this file, if it exists",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "override COINPRICE_MODEL",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Action: o.ask,
		Commands: []*cli.Command{
			{
				Name:   "ask",
				Usage:  "answer one question read from standard input (default)",
				Action: o.ask,
			},
			{
				Name:    "repl",
				Aliases: []string{"chat"},
				Usage:   "answer questions until end of input, \"exit\" or \"quit\"",
				Action:  o.repl,
			},
			{
				Name:   "mcp",
				Usage:  "serve the price tool over MCP on standard input and output",
				Action: o.mcp,
			},
		},
	}
}

// environment is the state shared by every command: configuration, logger
// and the resources that must be released on exit.
type environment struct {
	cfg     cryptoagent.Config
	logger  *slog.Logger
	closers []func() error
}

func (o options) setup(c *cli.Context) (*environment, error) {
	if err := cryptoagent.LoadDotEnv(c.String("env-file")); err != nil {
		return nil, err
	}

	cfg, err := cryptoagent.LoadConfig(o.getenv)
	if err != nil {
		return nil, err
	}
	if m := c.String("model"); m != "" {
		cfg.Model = m
	}
	if c.Bool("verbose") {
		cfg.LogLevel = slog.LevelDebug
	}

	logger, logCloser := cryptoagent.NewLogger(cfg, o.stderr)
	return &environment{
		cfg:     cfg,
		logger:  logger,
		closers: []func() error{logCloser.Close},
	}, nil
}

func (env *environment) close() {
	var errs []error
	for i := len(env.closers) - 1; i >= 0; i-- {
		errs = append(errs, env.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		env.logger.Error("cleanup failed", slog.Any("error", err))
	}
}

func (o options) registry(env *environment) (*capability.Registry, error) {
	client := pricetool.NewClient(pricetool.ClientParams{
		Endpoint:       env.cfg.TickerURL,
		HTTPClient:     o.httpClient,
		FilterBySymbol: env.cfg.FilterBySymbol,
		Logger:         env.logger,
	})
	return capability.NewRegistry(pricetool.Capability(client))
}

type sessionOpener func(context.Context, cryptoagent.Config) (memory.Session, func() error, error)

// assistant checks the credentials, then sets up tracing, the session and
// the agent. Nothing touches the network before the credentials check.
func (o options) assistant(ctx context.Context, env *environment, openSession sessionOpener) (*cryptoagent.Assistant, error) {
	if err := env.cfg.CheckCredentials(); err != nil {
		return nil, err
	}

	shutdownTracing, err := cryptoagent.SetupTracing(ctx, env.cfg)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, func() error {
		return shutdownTracing(context.WithoutCancel(ctx))
	})

	session, closeSession, err := openSession(ctx, env.cfg)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, closeSession)

	registry, err := o.registry(env)
	if err != nil {
		return nil, err
	}

	env.logger.Debug("agent ready",
		slog.String("model", env.cfg.Model),
		slog.String("base_url", env.cfg.BaseURL),
		slog.Any("tools", registry.Names()),
		slog.Bool("session", session != nil))

	return &cryptoagent.Assistant{
		Agent:  cryptoagent.NewAgent(o.newModel(env.cfg), registry),
		Runner: cryptoagent.NewRunner(env.cfg, session),
	}, nil
}

func (o options) ask(c *cli.Context) error {
	env, err := o.setup(c)
	if err != nil {
		return err
	}
	defer env.close()

	assistant, err := o.assistant(c.Context, env, cryptoagent.OpenSession)
	if err != nil {
		return err
	}
	return assistant.Ask(c.Context, o.stdin, o.stdout)
}

func (o options) repl(c *cli.Context) error {
	env, err := o.setup(c)
	if err != nil {
		return err
	}
	defer env.close()

	assistant, err := o.assistant(c.Context, env, cryptoagent.OpenChatSession)
	if err != nil {
		return err
	}
	return assistant.Chat(c.Context, o.stdin, o.stdout)
}

func (o options) mcp(c *cli.Context) error {
	env, err := o.setup(c)
	if err != nil {
		return err
	}
	defer env.close()

	registry, err := o.registry(env)
	if err != nil {
		return err
	}
	server, err := mcpserver.New(registry, version)
	if err != nil {
		return err
	}

	env.logger.Info("serving MCP on stdio", slog.Any("tools", registry.Names()))
	return mcpserver.ServeStdio(c.Context, server)
}
