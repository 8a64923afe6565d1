package workers

import (
	"context"
	"errors"
	"testing"

	"metamarket/contexts/finance-core/marketplace-program/adapters/memory"
	"metamarket/contexts/finance-core/marketplace-program/ports"
	contractsv1 "metamarket/contracts/gen/events/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topics []string
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func TestOutboxRelayPublishesByEventTypeAndMarksSent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil, nil)
	require.NoError(t, store.Commit(ctx, nil, []ports.EventEnvelope{
		{EventID: "evt-1", EventType: "module.listed"},
		{EventID: "evt-2", EventType: "module.purchased"},
	}))

	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	require.NoError(t, relay.RunOnce(ctx))
	assert.Equal(t, []string{"module.listed", "module.purchased"}, publisher.topics)

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRelayKeepsEventsPendingOnPublishFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil, nil)
	require.NoError(t, store.Commit(ctx, nil, []ports.EventEnvelope{{EventID: "evt-1", EventType: "revenue.collected"}}))

	relay := OutboxRelay{Outbox: store, Publisher: &recordingPublisher{fail: true}, Topic: "program-events"}
	require.Error(t, relay.RunOnce(ctx))

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestOutboxRelayRejectsEnvelopeWithoutEventType(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil, nil)
	require.NoError(t, store.Commit(ctx, nil, []ports.EventEnvelope{{EventID: "evt-1"}}))

	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher}
	require.ErrorIs(t, relay.RunOnce(ctx), contractsv1.ErrMissingEventType)
	assert.Empty(t, publisher.topics)
}
