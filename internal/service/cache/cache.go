package cache

import (
	"context"
	"strconv"
	"time"
)

// BytesCache stores encoded forecasts with a TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ForecastKey builds the cache key for a symbol and target day.
func ForecastKey(symbol string, day int) string {
	if symbol == "" {
		symbol = "_default"
	}
	if day <= 0 {
		return "forecast:" + symbol + ":next"
	}
	return "forecast:" + symbol + ":" + strconv.Itoa(day)
}
