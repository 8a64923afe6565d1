package postgresadapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UTCClock implements ports.Clock.
type UTCClock struct{}

func (UTCClock) Now() time.Time {
	return time.Now().UTC()
}

// EventIDGenerator issues UUIDv7 event ids, so outbox rows sort by creation
// time even when created_at ties.
type EventIDGenerator struct{}

func (EventIDGenerator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
