package bootstrap

import (
	"context"
	"testing"

	"metamarket/contexts/finance-core/marketplace-program/adapters/memory"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/ports"
	"metamarket/internal/platform/config"
	"metamarket/internal/platform/messaging"
	"metamarket/internal/platform/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, ":8080", normalizeAddr(""))
	assert.Equal(t, ":9000", normalizeAddr("9000"))
	assert.Equal(t, ":9000", normalizeAddr(":9000"))
}

func TestProgramIDs(t *testing.T) {
	programID, tokenProgramID, err := programIDs(config.Config{
		ProgramID:      config.DefaultProgramID,
		TokenProgramID: config.DefaultTokenProgramID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, programID, tokenProgramID)

	_, _, err = programIDs(config.Config{ProgramID: "bad", TokenProgramID: config.DefaultTokenProgramID})
	require.Error(t, err)
}

func TestSeedRentSysvarIsIdempotent(t *testing.T) {
	store := memory.NewStore(nil, nil)
	rent := entities.Rent{LamportsPerByteYear: 10, ExemptionThresholdYears: 1}

	require.NoError(t, seedRentSysvar(context.Background(), store, rent))
	require.NoError(t, seedRentSysvar(context.Background(), store, entities.DefaultRent()))

	account, ok := store.Account(entities.RentSysvarID)
	require.True(t, ok)
	seeded, err := entities.UnmarshalRent(account.Data)
	require.NoError(t, err)
	assert.Equal(t, rent, seeded)
}

func TestCountingPublisherFeedsBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := messaging.NewBus(nil, nil)
	received := make(chan string, 1)
	require.NoError(t, bus.Subscribe(ctx, "module.listed", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event.EventID
		return nil
	}))

	publisher := countingPublisher{next: bus, metrics: metrics.New()}
	require.NoError(t, publisher.Publish(ctx, "module.listed", ports.EventEnvelope{EventID: "evt-1"}))
	assert.Equal(t, "evt-1", <-received)
}
