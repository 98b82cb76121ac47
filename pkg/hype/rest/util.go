package rest

import (
	"strconv"

	"builderboard/pkg/logger"
)

func parseStringToFloat(str string) float64 {
	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		logger.Debugf("Error converting string to float64: %v", err)
		return 0.0
	}
	return value
}

// interface{} → int64
func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		x, err := strconv.ParseInt(t, 10, 64)
		return x, err == nil
	default:
		return 0, false
	}
}

// interface{} → float64
func toFloat64(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		x, err := strconv.ParseFloat(t, 64)
		return x, err == nil
	default:
		return 0, false
	}
}
