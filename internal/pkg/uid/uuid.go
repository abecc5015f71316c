package uid

import "github.com/google/uuid"

// UUID yields version 7 strings, whose time prefix keeps identity rows
// roughly in insert order.
type UUID struct{}

func NewUUID() *UUID { return &UUID{} }

func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
