package ports

import (
	"context"
	"time"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	contractsv1 "metamarket/contracts/gen/events/v1"
)

// AccountStore is the host's durable, per-account storage.
type AccountStore interface {
	// LoadAccounts returns one Account per address, in order. Addresses with
	// no stored account come back empty and owned by the system program.
	LoadAccounts(ctx context.Context, addresses []entities.Pubkey) ([]entities.Account, error)
	// Commit must atomically persist every write and every event, or none.
	// Each write carries the Version it was loaded at; a mismatch fails with
	// ErrConcurrentModification.
	Commit(ctx context.Context, writes []entities.Account, events []EventEnvelope) error
}

// AccountAllocator is the host allocation facility for program accounts.
type AccountAllocator interface {
	CreateAccount(ctx context.Context, account entities.Account) error
}

// TransferLeg is one credit of a Settlement.
type TransferLeg struct {
	To     entities.Pubkey
	Amount uint64
}

// Settlement debits Source once for the sum of all legs.
type Settlement struct {
	Authority entities.Pubkey
	Source    entities.Pubkey
	Mint      entities.Pubkey
	Legs      []TransferLeg
}

// TokenBalance is the ledger's view of one token account.
type TokenBalance struct {
	Account entities.Pubkey
	Owner   entities.Pubkey
	Mint    entities.Pubkey
	Amount  uint64
}

// LedgerService is the authoritative balance store. Implementations return
// ErrInsufficientFunds and ErrUnauthorized from the domain errors package.
type LedgerService interface {
	// Transfer moves amount from one token account to another. authority
	// must own from.
	Transfer(ctx context.Context, authority entities.Pubkey, from entities.Pubkey, to entities.Pubkey, amount uint64) error
	Mint(ctx context.Context, authority entities.Pubkey, mint entities.Pubkey, destination entities.Pubkey, amount uint64) error
	// Burn destroys amount from source, which must hold tokens of mint.
	Burn(ctx context.Context, owner entities.Pubkey, mint entities.Pubkey, source entities.Pubkey, amount uint64) error
	// Settle applies every leg or none.
	Settle(ctx context.Context, settlement Settlement) error
	Balance(ctx context.Context, account entities.Pubkey) (TokenBalance, error)
}

// IdempotencyRecord captures dedupe metadata for submitted instructions.
type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// InstructionObserver receives one callback per processed instruction.
type InstructionObserver interface {
	ObserveInstruction(instruction string, outcome string, duration time.Duration)
}

// OutboxMessage is a row ready to relay from the program outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
