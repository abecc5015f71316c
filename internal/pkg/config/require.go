package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingKey is returned when a required configuration value is absent or blank.
var ErrMissingKey = errors.New("config: required key is missing")

// MissingKeyError lists every required key that was not set.
type MissingKeyError struct {
	Keys []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("config: required keys are missing: %s", strings.Join(e.Keys, ", "))
}

// Is reports ErrMissingKey so callers can match without type assertions.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// Require checks that every key resolves to a non-blank string value.
func Require(cfg Config, keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(cfg.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return &MissingKeyError{Keys: missing}
	}

	return nil
}
