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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nlpodyssey/coinprice-agent/capability"
)

const (
	ToolName        = "get_coin_price"
	ToolDescription = "Get cryptocurrency price from Binance"
)

type CoinPriceArgs struct {
	Currency string `json:"currency,omitempty" jsonschema:"description=Currency pair symbol such as BTCUSDT,default=BTCUSDT"`
}

// Capability exposes client as the get_coin_price tool.
func Capability(client *Client) capability.Capability {
	return capability.Capability{
		Name:        ToolName,
		Description: ToolDescription,
		Parameters:  capability.ReflectParameters[CoinPriceArgs](),
		Invoke: func(ctx context.Context, arguments string) (string, error) {
			var args CoinPriceArgs
			if strings.TrimSpace(arguments) != "" {
				if err := json.Unmarshal([]byte(arguments), &args); err != nil {
					return "", fmt.Errorf("failed to parse %s arguments: %w", ToolName, err)
				}
			}
			return client.CoinPrice(ctx, args.Currency)
		},
	}
}
