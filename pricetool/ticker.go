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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedTicker is returned when the ticker endpoint answers with a
// successful status but a body that does not hold a symbol and a price.
var ErrMalformedTicker = errors.New("malformed ticker response")

// Ticker is the body returned by the ticker price endpoint.
// Prices are kept as strings, exactly as the exchange sends them.
type Ticker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

var tickerSchema = gojsonschema.NewGoLoader(map[string]any{
	"type":     "object",
	"required": []string{"symbol", "price"},
	"properties": map[string]any{
		"symbol": map[string]any{"type": "string"},
		"price":  map[string]any{"type": "string"},
	},
})

// ParseTicker reads a ticker price body from r.
//
// The body must be a JSON object with string "symbol" and "price" fields;
// anything else, including the unfiltered list form of the endpoint, is
// reported as ErrMalformedTicker.
func ParseTicker(r io.Reader) (Ticker, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Ticker{}, fmt.Errorf("failed to read ticker response: %w", err)
	}

	result, err := gojsonschema.Validate(tickerSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return Ticker{}, fmt.Errorf("%w: %w", ErrMalformedTicker, err)
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			details[i] = e.String()
		}
		return Ticker{}, fmt.Errorf("%w: %s", ErrMalformedTicker, strings.Join(details, "; "))
	}

	var t Ticker
	if err = json.Unmarshal(body, &t); err != nil {
		return Ticker{}, fmt.Errorf("%w: %w", ErrMalformedTicker, err)
	}
	return t, nil
}
