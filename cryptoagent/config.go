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
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/nlpodyssey/coinprice-agent/pricetool"
	"github.com/nlpodyssey/openai-agents-go/agents"
)

const (
	DefaultModel            = "gemini-2.0-flash"
	DefaultBaseURL          = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultSessionID        = "default"
	DefaultTraceloopBaseURL = "api.traceloop.com"
)

// ErrMissingAPIKey is returned by Config.CheckCredentials when no model API
// key was configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

// Config holds every setting of the program. It is built once at startup
// and passed explicitly to the constructors of this package.
type Config struct {
	// API key of the OpenAI-compatible model endpoint.
	APIKey string

	// Model name, as understood by the endpoint at BaseURL.
	Model string

	// Base URL of the OpenAI-compatible model endpoint.
	BaseURL string

	// Ticker price endpoint used by the price tool.
	TickerURL string

	// Whether the price tool sends the requested symbol to the endpoint.
	FilterBySymbol bool

	// Conversation memory. At most one of SessionSQLitePath and
	// SessionPostgresURL may be set; when neither is, runs are stateless.
	SessionID          string
	SessionSQLitePath  string
	SessionPostgresURL string

	// Maximum number of model turns per run.
	MaxTurns uint64

	// Traceloop export. Tracing is disabled when TraceloopAPIKey is empty.
	TraceloopAPIKey  string
	TraceloopBaseURL string

	LogLevel slog.Level

	// Optional log file. Logs go to stderr when empty.
	LogFile string
}

// LoadDotEnv loads environment variables from a .env file, without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the configuration through getenv, usually os.Getenv.
//
// The API key is read but not checked here; see CheckCredentials.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		APIKey:             getenv("GEMINI_API_KEY"),
		Model:              cmp.Or(getenv("COINPRICE_MODEL"), DefaultModel),
		BaseURL:            cmp.Or(getenv("COINPRICE_BASE_URL"), DefaultBaseURL),
		TickerURL:          cmp.Or(getenv("BINANCE_TICKER_URL"), pricetool.DefaultEndpoint),
		SessionID:          cmp.Or(getenv("COINPRICE_SESSION_ID"), DefaultSessionID),
		SessionSQLitePath:  getenv("COINPRICE_SESSION_SQLITE"),
		SessionPostgresURL: getenv("COINPRICE_SESSION_POSTGRES"),
		MaxTurns:           agents.DefaultMaxTurns,
		TraceloopAPIKey:    getenv("TRACELOOP_API_KEY"),
		TraceloopBaseURL:   cmp.Or(getenv("TRACELOOP_BASE_URL"), DefaultTraceloopBaseURL),
		LogLevel:           slog.LevelWarn,
		LogFile:            getenv("COINPRICE_LOG_FILE"),
	}

	var errs []error

	if v := getenv("BINANCE_FILTER_SYMBOL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid BINANCE_FILTER_SYMBOL %q: %w", v, err))
		}
		cfg.FilterBySymbol = b
	}

	if v := getenv("COINPRICE_MAX_TURNS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid COINPRICE_MAX_TURNS %q: %w", v, err))
		case n == 0:
			errs = append(errs, errors.New("COINPRICE_MAX_TURNS must be positive"))
		default:
			cfg.MaxTurns = n
		}
	}

	if v := getenv("COINPRICE_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("invalid COINPRICE_LOG_LEVEL %q: %w", v, err))
		}
	}

	if cfg.SessionSQLitePath != "" && cfg.SessionPostgresURL != "" {
		errs = append(errs, errors.New("COINPRICE_SESSION_SQLITE and COINPRICE_SESSION_POSTGRES are mutually exclusive"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CheckCredentials reports ErrMissingAPIKey if the model cannot be reached.
// It must be called before any network activity.
func (cfg Config) CheckCredentials() error {
	if cfg.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (cfg Config) TracingEnabled() bool {
	return cfg.TraceloopAPIKey != ""
}

func (cfg Config) SessionEnabled() bool {
	return cfg.SessionSQLitePath != "" || cfg.SessionPostgresURL != ""
}
