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

package pricetool

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultEndpoint is Binance's public ticker price endpoint.
	DefaultEndpoint = "https://api.binance.com/api/v3/ticker/price"

	// DefaultSymbol is used when the caller does not name a currency pair.
	DefaultSymbol = "BTCUSDT"
)

type ClientParams struct {
	// Optional ticker price endpoint.
	// Defaults to DefaultEndpoint.
	Endpoint string

	// Optional HTTP client.
	// Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Whether the requested symbol is sent as the "symbol" query parameter.
	// When false (the default) the endpoint is called without parameters and
	// answers with its unfiltered feed, whatever currency was asked for.
	FilterBySymbol bool

	// Optional logger.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Client looks up ticker prices. It holds no state besides its HTTP client
// and is safe for concurrent use.
type Client struct {
	endpoint       string
	httpClient     *http.Client
	filterBySymbol bool
	logger         *slog.Logger
}

func NewClient(params ClientParams) *Client {
	c := &Client{
		endpoint:       cmp.Or(params.Endpoint, DefaultEndpoint),
		httpClient:     params.HTTPClient,
		filterBySymbol: params.FilterBySymbol,
		logger:         params.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// RequestURL returns the URL that CoinPrice requests for the given currency.
func (c *Client) RequestURL(currency string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid ticker endpoint %q: %w", c.endpoint, err)
	}
	if c.filterBySymbol {
		q := u.Query()
		q.Set("symbol", strings.ToUpper(cmp.Or(currency, DefaultSymbol)))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// CoinPrice fetches the ticker price and formats it for the model.
//
// A non-200 status is not an error: it yields FormatFailure for the
// requested currency. Transport failures and bodies rejected by ParseTicker
// are returned as errors.
func (c *Client) CoinPrice(ctx context.Context, currency string) (string, error) {
	currency = cmp.Or(currency, DefaultSymbol)

	u, err := c.RequestURL(currency)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build ticker request: %w", err)
	}

	c.logger.Debug("fetching ticker price", slog.String("url", u), slog.String("currency", currency))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ticker request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("ticker price request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("currency", currency))
		return FormatFailure(currency), nil
	}

	t, err := ParseTicker(resp.Body)
	if err != nil {
		return "", err
	}
	return FormatPrice(t), nil
}
