package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs, e.g. to correlate the log lines and report rows of one batch run.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 strings so run IDs sort by start time.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}
	return value.String(), nil
}

// Static returns the same ID every time; tests use it to pin run IDs.
type Static string

func (s Static) NewID() (string, error) {
	return string(s), nil
}
