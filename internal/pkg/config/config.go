package config

import (
	"io"
	"time"
)

// Config is the read-only view over application configuration. Keys are dot
// separated paths such as "sms.ncp.sender"; missing keys yield zero values.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint64(key string) uint64
	GetFloat64(key string) float64

	// GetSecond, GetMinute and GetDay scale an integer value into a duration.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetDay(key string) time.Duration

	// GetBinary decodes a base64 value. Invalid input yields nil.
	GetBinary(key string) []byte

	// GetArray splits "a,b,c", dropping blank items.
	GetArray(key string) []string

	// GetMap parses "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}
