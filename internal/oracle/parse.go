package oracle

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ParsePrice extracts the last-trade price from a source payload. Each
// exchange wraps its ticker differently, so parsing is dispatched on the
// configured source name.
func ParsePrice(name string, payload []byte) (float64, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return 0, fmt.Errorf("decode %s payload: %w", name, err)
	}

	var value any
	switch name {
	case "Coinbase", "Binance":
		value = dig(raw, "price")
	case "Kraken":
		value = krakenLast(raw)
	case "Bitstamp", "Gemini":
		value = dig(raw, "last")
	case "OKX":
		value = dig(raw, "data", 0, "last")
	case "Bybit":
		value = dig(raw, "result", "list", 0, "lastPrice")
	case "Bitfinex":
		value = dig(raw, 6)
	case "Huobi":
		value = dig(raw, "tick", "close")
	case "Gate":
		value = dig(raw, 0, "last")
	case "Chainlink":
		value = dig(raw, "price")
	default:
		return 0, fmt.Errorf("no parser registered for source %s", name)
	}

	price, err := toFloat(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s price: %w", name, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("parse %s price: value %v not usable", name, price)
	}
	return price, nil
}

// krakenLast handles Kraken's pair-keyed result map: the close price lives at
// result.<PAIR>.c[0] and the pair key varies by symbol.
func krakenLast(raw any) any {
	result, ok := dig(raw, "result").(map[string]any)
	if !ok {
		return nil
	}
	for _, pair := range result {
		return dig(pair, "c", 0)
	}
	return nil
}

func dig(v any, path ...any) any {
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			v = m[key]
		case int:
			arr, ok := v.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil
			}
			v = arr[key]
		}
	}
	return v
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	case nil:
		return 0, fmt.Errorf("value missing")
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
