package memory

import (
	"context"
	"testing"
	"time"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCommitChecksEveryVersionBeforeWriting(t *testing.T) {
	ctx := context.Background()
	a, b, owner := entities.Pubkey{1}, entities.Pubkey{2}, entities.Pubkey{9}
	store := NewStore([]entities.Account{
		{Address: a, Owner: owner, Data: []byte{1}},
		{Address: b, Owner: owner, Data: []byte{2}},
	}, nil)

	loaded, err := store.LoadAccounts(ctx, []entities.Pubkey{a, b})
	require.NoError(t, err)
	require.Equal(t, uint64(1), loaded[0].Version)

	require.NoError(t, store.Commit(ctx, []entities.Account{{Address: b, Owner: owner, Data: []byte{3}, Version: 1}}, nil))

	// a is current but b is stale: neither may change.
	err = store.Commit(ctx, []entities.Account{
		{Address: a, Owner: owner, Data: []byte{7}, Version: 1},
		{Address: b, Owner: owner, Data: []byte{7}, Version: 1},
	}, []ports.EventEnvelope{{EventID: "evt-1", EventType: "module.listed"}})
	require.ErrorIs(t, err, domainerrors.ErrConcurrentModification)

	current, _ := store.Account(a)
	assert.Equal(t, []byte{1}, current.Data)
	assert.Equal(t, uint64(1), current.Version)
	assert.Empty(t, store.OutboxEvents())
}

func TestStoreLoadAccountsReturnsSystemOwnedPlaceholders(t *testing.T) {
	store := NewStore(nil, nil)
	loaded, err := store.LoadAccounts(context.Background(), []entities.Pubkey{{5}})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, entities.SystemProgramID, loaded[0].Owner)
	assert.Zero(t, loaded[0].Version)
}

func TestStoreLoadedDataIsACopy(t *testing.T) {
	store := NewStore([]entities.Account{{Address: entities.Pubkey{1}, Data: []byte{1, 2}}}, nil)
	loaded, _ := store.LoadAccounts(context.Background(), []entities.Pubkey{{1}})
	loaded[0].Data[0] = 99

	current, _ := store.Account(entities.Pubkey{1})
	assert.Equal(t, byte(1), current.Data[0])
}

func TestStoreIdempotencyExpiryAndConflict(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, nil)
	now := time.Now().UTC()

	require.NoError(t, store.Put(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", ExpiresAt: now.Add(time.Hour)}))
	require.ErrorIs(t, store.Put(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2"}), domainerrors.ErrIdempotencyKeyConflict)

	record, found, err := store.Get(ctx, "k", now)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "h1", record.RequestHash)

	_, found, err = store.Get(ctx, "k", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreOutboxPendingAndSent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, nil)
	events := []ports.EventEnvelope{
		{EventID: "evt-1", EventType: "module.listed"},
		{EventID: "evt-2", EventType: "module.purchased"},
	}
	require.NoError(t, store.Commit(ctx, nil, events))

	pending, err := store.ListPendingOutbox(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "evt-1", pending[0].OutboxID)

	require.NoError(t, store.MarkOutboxSent(ctx, "evt-1", time.Now()))
	pending, _ = store.ListPendingOutbox(ctx, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, "evt-2", pending[0].OutboxID)

	require.ErrorIs(t, store.MarkOutboxSent(ctx, "evt-404", time.Now()), domainerrors.ErrAccountNotFound)
}

func TestStoreCreateAccountRejectsExisting(t *testing.T) {
	store := NewStore(nil, nil)
	account := entities.Account{Address: entities.Pubkey{1}, Owner: entities.Pubkey{2}, Data: make([]byte, 4)}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	require.ErrorIs(t, store.CreateAccount(context.Background(), account), domainerrors.ErrAccountExists)

	stored, ok := store.Account(entities.Pubkey{1})
	require.True(t, ok)
	assert.Equal(t, uint64(1), stored.Version)
}
