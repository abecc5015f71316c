package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestUp_RequiresDSN(t *testing.T) {
	assert.ErrorIs(t, Up("", fstest.MapFS{}, "migrations"), ErrEmptyDSN)
}

func TestUp_MissingSourceDir(t *testing.T) {
	err := Up("postgres://localhost:1/db?sslmode=disable", fstest.MapFS{}, "migrations")
	assert.ErrorContains(t, err, "migrate: source")
}
