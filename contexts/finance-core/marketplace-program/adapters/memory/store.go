package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

// Store is an in-memory adapter implementing the program's account, outbox
// and idempotency ports for local runtime and tests.
type Store struct {
	mu          sync.RWMutex
	accounts    map[entities.Pubkey]entities.Account
	idempotency map[string]ports.IdempotencyRecord
	outbox      map[string]ports.OutboxMessage
	outboxOrder []string
	outboxSent  map[string]time.Time
	sequence    uint64
	logger      *slog.Logger
}

// NewStore seeds account state. Seeded accounts start at version 1.
func NewStore(seed []entities.Account, logger *slog.Logger) *Store {
	accounts := make(map[entities.Pubkey]entities.Account, len(seed))
	for _, account := range seed {
		account.Data = append([]byte(nil), account.Data...)
		account.Version = 1
		accounts[account.Address] = account
	}
	return &Store{
		accounts:    accounts,
		idempotency: make(map[string]ports.IdempotencyRecord),
		outbox:      make(map[string]ports.OutboxMessage),
		outboxOrder: make([]string, 0),
		outboxSent:  make(map[string]time.Time),
		logger:      application.ResolveLogger(logger),
	}
}

func (s *Store) LoadAccounts(_ context.Context, addresses []entities.Pubkey) ([]entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loaded := make([]entities.Account, 0, len(addresses))
	for _, address := range addresses {
		account, ok := s.accounts[address]
		if !ok {
			loaded = append(loaded, entities.Account{Address: address, Owner: entities.SystemProgramID})
			continue
		}
		account.Data = append([]byte(nil), account.Data...)
		loaded = append(loaded, account)
	}
	return loaded, nil
}

// Commit applies writes and appends outbox events under one critical section.
// All versions are checked before anything is written.
func (s *Store) Commit(_ context.Context, writes []entities.Account, events []ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, write := range writes {
		current := s.accounts[write.Address].Version
		if current != write.Version {
			return fmt.Errorf("%w: %s at version %d, write based on %d",
				domainerrors.ErrConcurrentModification, write.Address, current, write.Version)
		}
	}

	messages := make([]ports.OutboxMessage, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		messages = append(messages, ports.OutboxMessage{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    event.OccurredAt,
		})
	}

	for _, write := range writes {
		write.Data = append([]byte(nil), write.Data...)
		write.Version++
		s.accounts[write.Address] = write
	}
	for _, message := range messages {
		s.outbox[message.OutboxID] = message
		s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	}

	s.logger.Debug("accounts and outbox committed in memory store",
		"event", "memory_commit_accounts",
		"module", application.ModuleName,
		"layer", "adapter",
		"writes", len(writes),
		"events", len(events),
	)
	return nil
}

func (s *Store) CreateAccount(_ context.Context, account entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Address]; exists {
		return fmt.Errorf("%w: %s", domainerrors.ErrAccountExists, account.Address)
	}
	account.Data = append([]byte(nil), account.Data...)
	account.Version = 1
	s.accounts[account.Address] = account
	return nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	// Expired keys are lazily evicted on read.
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.idempotency[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyKeyConflict
		}
		return nil
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return fmt.Errorf("%w: outbox message %s", domainerrors.ErrAccountNotFound, outboxID)
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("mp-%d", value), nil
}

// Account returns a copy of the stored account, for tests and inspection.
func (s *Store) Account(address entities.Pubkey) (entities.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[address]
	if !ok {
		return entities.Account{}, false
	}
	account.Data = append([]byte(nil), account.Data...)
	return account, true
}

func (s *Store) OutboxEvents() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.OutboxMessage, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		if evt, ok := s.outbox[id]; ok {
			events = append(events, evt)
		}
	}
	return events
}
