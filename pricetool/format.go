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
	"fmt"
	"strings"
)

// QuoteUnit is the label appended to every formatted price.
const QuoteUnit = "USDT"

// FormatPrice renders a successful lookup, e.g. "✅ BTCUSDT: 65000.00 USDT".
func FormatPrice(t Ticker) string {
	return fmt.Sprintf("✅ %s: %s %s", t.Symbol, t.Price, QuoteUnit)
}

// FormatFailure renders a lookup that got a non-success HTTP status.
func FormatFailure(currency string) string {
	return fmt.Sprintf("❌ Failed to fetch price for %s", strings.ToUpper(currency))
}
