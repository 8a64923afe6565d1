package messaging

import (
	"context"
	"testing"
	"time"

	"metamarket/contexts/finance-core/marketplace-program/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan ports.EventEnvelope) ports.EventEnvelope {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event delivery")
		return ports.EventEnvelope{}
	}
}

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus([]string{"localhost:9092"}, nil)
	received := make(chan ports.EventEnvelope, 1)
	require.NoError(t, bus.Subscribe(ctx, "module.purchased", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, "module.listed", ports.EventEnvelope{EventID: "evt-ignored"}))
	require.NoError(t, bus.Publish(ctx, "module.purchased", ports.EventEnvelope{EventID: "evt-1", EventType: "module.purchased"}))

	assert.Equal(t, "evt-1", receive(t, received).EventID)
	assert.Equal(t, Stats{Delivered: 1}, bus.Stats())
	assert.Equal(t, []string{"localhost:9092"}, bus.Brokers())
}

func TestBusFansOutOncePerConsumerGroup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil, nil)
	audit := make(chan ports.EventEnvelope, 1)
	billing := make(chan ports.EventEnvelope, 1)
	require.NoError(t, bus.Subscribe(ctx, "revenue.collected", "audit-cg", func(_ context.Context, event ports.EventEnvelope) error {
		audit <- event
		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx, "revenue.collected", "billing-cg", func(_ context.Context, event ports.EventEnvelope) error {
		billing <- event
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, "revenue.collected", ports.EventEnvelope{EventID: "evt-1"}))
	assert.Equal(t, "evt-1", receive(t, audit).EventID)
	assert.Equal(t, "evt-1", receive(t, billing).EventID)
}

func TestBusRejectsDuplicateConsumerGroup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil, nil)
	noop := func(context.Context, ports.EventEnvelope) error { return nil }
	require.NoError(t, bus.Subscribe(ctx, "module.listed", "audit-cg", noop))
	require.ErrorIs(t, bus.Subscribe(ctx, "module.listed", "audit-cg", noop), ErrDuplicateConsumer)
	require.NoError(t, bus.Subscribe(ctx, "module.purchased", "audit-cg", noop))
}

func TestBusCountsDropsWhenGroupBufferIsFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil, nil)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	require.NoError(t, bus.Subscribe(ctx, "tokens.minted", "slow-cg", func(context.Context, ports.EventEnvelope) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}))
	defer close(release)

	require.NoError(t, bus.Publish(ctx, "tokens.minted", ports.EventEnvelope{EventID: "evt-0"}))
	<-started
	for i := 0; i < groupBuffer+5; i++ {
		require.NoError(t, bus.Publish(ctx, "tokens.minted", ports.EventEnvelope{EventID: "evt"}))
	}

	stats := bus.Stats()
	assert.Equal(t, uint64(groupBuffer+1), stats.Delivered)
	assert.Equal(t, uint64(5), stats.Dropped)
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil, nil)
	require.NoError(t, bus.Publish(context.Background(), "revenue.collected", ports.EventEnvelope{EventID: "evt-1"}))
	assert.Equal(t, Stats{}, bus.Stats())
}
