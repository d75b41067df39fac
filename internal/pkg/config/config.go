package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values as durations of a given unit.
type TimeConfig interface {
	// GetSecond reads the value of key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads the value of key as a number of minutes.
	GetMinute(key string) time.Duration

	// GetHour reads the value of key as a number of hours.
	GetHour(key string) time.Duration

	// GetDay reads the value of key as a number of 24h days.
	GetDay(key string) time.Duration
}

// Config defines a set of methods for retrieving configuration values.
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer
	TimeConfig

	// GetBool reads the value of key as a bool.
	GetBool(key string) bool

	// GetInt reads the value of key as an int.
	GetInt(key string) int

	// GetInt32 reads the value of key as an int32.
	GetInt32(key string) int32

	// GetUint reads the value of key as a uint.
	GetUint(key string) uint

	// GetFloat64 reads the value of key as a float64.
	GetFloat64(key string) float64

	// GetString reads the value of key as a string.
	GetString(key string) string

	// GetBinary reads a base64 encoded value of key.
	GetBinary(key string) []byte

	// GetArray reads a list value. Either a native list or the format
	// <element1>,<element2>,... is accepted.
	GetArray(key string) []string
}
