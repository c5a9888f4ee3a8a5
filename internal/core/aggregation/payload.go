package aggregation

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PayloadDecimal pulls a numeric value from a row payload by field name.
// The bool is false when the field is missing, empty, or not numeric.
// Payloads decoded from JSONB use json.Number; values built in code are
// usually float64 or int.
func PayloadDecimal(payload map[string]interface{}, field string) (decimal.Decimal, bool) {
	if field == "" {
		return decimal.Zero, false
	}
	v, ok := payload[field]
	if !ok {
		return decimal.Zero, false
	}
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err == nil {
			return d, true
		}
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat(float64(val)), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case string:
		d, err := decimal.NewFromString(val)
		if err == nil {
			return d, true
		}
	case decimal.Decimal:
		return val, true
	}
	return decimal.Zero, false
}

// PayloadInt is PayloadDecimal truncated to an integer.
func PayloadInt(payload map[string]interface{}, field string) (int64, bool) {
	d, ok := PayloadDecimal(payload, field)
	if !ok {
		return 0, false
	}
	return d.IntPart(), true
}
