package postgres

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates time-ordered UUIDs from ULIDs, so primary keys
// inserted close together stay close together in the index.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ID.
func (g *ULIDGenerator) Generate() uuid.UUID {
	return uuid.UUID(ulid.Make())
}
