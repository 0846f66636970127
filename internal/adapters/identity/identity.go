// Package identity provides the system clock and id generation adapters.
package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

// UUIDGenerator implements the IdentityGenerator interface
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new uuid-backed id generator
func NewUUIDGenerator() ports.IdentityGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SystemClock implements the Clock interface on the wall clock.
type SystemClock struct{}

// NewSystemClock creates a new system clock
func NewSystemClock() ports.Clock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}

func (c *SystemClock) Today() entities.Date {
	return entities.DateOf(time.Now())
}
