package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for new matches and roster entries.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct {
	prefix string
}

// NewUUIDGenerator returns v7 UUIDs, optionally prefixed ("roster-", "match-").
func NewUUIDGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return g.prefix + v.String(), nil
}
