package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

const (
	eventSourceService = "marketplace-program"
	eventSchemaVersion = 1
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected"
	OutcomeReplayed  = "replayed"
)

type ProcessInstructionCommand struct {
	Accounts       []entities.AccountMeta
	Data           []byte
	IdempotencyKey string
	TraceID        string
}

type ProcessInstructionResult struct {
	Instruction string                `json:"instruction"`
	Events      []ports.EventEnvelope `json:"events"`
	Replayed    bool                  `json:"-"`
}

// ProcessInstructionUseCase is the program entry point. It resolves the
// positional accounts, dispatches the decoded instruction and commits the
// resulting writes and events as one unit.
type ProcessInstructionUseCase struct {
	ProgramID      entities.Pubkey
	TokenProgramID entities.Pubkey
	Accounts       ports.AccountStore
	Ledger         ports.LedgerService
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Observer       ports.InstructionObserver
	Locks          *AccountLocks
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// Execute runs an instruction in this order:
// 1) decode
// 2) per-account and idempotency-key locks
// 3) idempotency lookup/replay, then account load
// 4) variant handler (validation, then any ledger movement)
// 5) atomic write + outbox commit
// 6) idempotency record write.
func (u ProcessInstructionUseCase) Execute(ctx context.Context, cmd ProcessInstructionCommand) (ProcessInstructionResult, error) {
	logger := application.ResolveLogger(u.Logger)
	started := time.Now()

	ix, err := instruction.Decode(cmd.Data)
	if err != nil {
		logger.Warn("instruction decode failed",
			"event", "marketplace_program_instruction_decode_failed",
			"module", application.ModuleName,
			"layer", "application",
			"data_len", len(cmd.Data),
			"error", err.Error(),
		)
		u.observe("unknown", OutcomeRejected, started)
		return ProcessInstructionResult{}, err
	}
	name := ix.Tag().String()

	result, outcome, err := u.execute(ctx, cmd, ix, logger)
	u.observe(name, outcome, started)
	return result, err
}

func (u ProcessInstructionUseCase) execute(
	ctx context.Context,
	cmd ProcessInstructionCommand,
	ix instruction.Instruction,
	logger *slog.Logger,
) (ProcessInstructionResult, string, error) {
	name := ix.Tag().String()
	now := u.now()
	idempotencyKey := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := hashInstruction(cmd)

	addresses := make([]entities.Pubkey, 0, len(cmd.Accounts))
	for _, meta := range cmd.Accounts {
		addresses = append(addresses, meta.Address)
	}
	// The idempotency lookup runs under the same locks as the execution, so
	// a concurrent request with the same key waits and then replays.
	if u.Locks != nil {
		release := u.Locks.AcquireWithIdempotencyKey(idempotencyKey, addresses)
		defer release()
	}

	if idempotencyKey != "" {
		record, found, err := u.Idempotency.Get(ctx, idempotencyKey, now)
		if err != nil {
			logger.Error("idempotency get failed",
				"event", "marketplace_program_idempotency_get_failed",
				"module", application.ModuleName,
				"layer", "application",
				"instruction", name,
				"error", err.Error(),
			)
			return ProcessInstructionResult{}, OutcomeRejected, err
		}
		if found {
			if record.RequestHash != requestHash {
				return ProcessInstructionResult{}, OutcomeRejected, domainerrors.ErrIdempotencyKeyConflict
			}
			var replay ProcessInstructionResult
			if err := json.Unmarshal(record.ResponsePayload, &replay); err != nil {
				return ProcessInstructionResult{}, OutcomeRejected, err
			}
			replay.Replayed = true
			logger.Info("instruction replayed from idempotency",
				"event", "marketplace_program_instruction_replayed",
				"module", application.ModuleName,
				"layer", "application",
				"instruction", name,
				"idempotency_key", idempotencyKey,
			)
			return replay, OutcomeReplayed, nil
		}
	}

	loaded, err := u.Accounts.LoadAccounts(ctx, addresses)
	if err != nil {
		return ProcessInstructionResult{}, OutcomeRejected, err
	}
	inv := Invocation{
		ProgramID:      u.ProgramID,
		TokenProgramID: u.TokenProgramID,
		Accounts:       make([]entities.AccountInfo, 0, len(cmd.Accounts)),
	}
	for i, meta := range cmd.Accounts {
		inv.Accounts = append(inv.Accounts, entities.NewAccountInfo(meta, loaded[i]))
	}

	outcome, err := u.dispatch(ctx, inv, ix)
	if err != nil {
		logger.Warn("instruction rejected",
			"event", "marketplace_program_instruction_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"instruction", name,
			"error", err.Error(),
		)
		return ProcessInstructionResult{}, OutcomeRejected, err
	}

	envelopes := make([]ports.EventEnvelope, 0, len(outcome.Events))
	for _, event := range outcome.Events {
		envelope, err := u.envelope(ctx, event, cmd.TraceID, now)
		if err != nil {
			return ProcessInstructionResult{}, OutcomeRejected, err
		}
		envelopes = append(envelopes, envelope)
	}

	if err := u.Accounts.Commit(ctx, outcome.Writes, envelopes); err != nil {
		logger.Error("instruction commit failed",
			"event", "marketplace_program_instruction_commit_failed",
			"module", application.ModuleName,
			"layer", "application",
			"instruction", name,
			"writes", len(outcome.Writes),
			"error", err.Error(),
		)
		return ProcessInstructionResult{}, OutcomeRejected, err
	}

	result := ProcessInstructionResult{
		Instruction: name,
		Events:      envelopes,
	}
	if idempotencyKey != "" {
		// The instruction is already committed, so a failed record write
		// is reported but does not fail the request.
		if err := u.remember(ctx, idempotencyKey, requestHash, result, now); err != nil {
			logger.Warn("idempotency put failed after commit",
				"event", "marketplace_program_idempotency_put_failed",
				"module", application.ModuleName,
				"layer", "application",
				"instruction", name,
				"idempotency_key", idempotencyKey,
				"error", err.Error(),
			)
		}
	}

	logger.Info("instruction processed",
		"event", "marketplace_program_instruction_processed",
		"module", application.ModuleName,
		"layer", "application",
		"instruction", name,
		"writes", len(outcome.Writes),
		"events", len(envelopes),
	)
	return result, OutcomeSucceeded, nil
}

func (u ProcessInstructionUseCase) remember(
	ctx context.Context,
	key string,
	requestHash string,
	result ProcessInstructionResult,
	now time.Time,
) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return u.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:             key,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(u.idempotencyTTL()),
	})
}

// dispatch routes every instruction variant to its handler. Adding a variant
// to the instruction package without a case here fails the dispatch test.
func (u ProcessInstructionUseCase) dispatch(ctx context.Context, inv Invocation, ix instruction.Instruction) (Result, error) {
	switch ix := ix.(type) {
	case instruction.InitializeMarketplace:
		return InitializeMarketplaceUseCase{Logger: u.Logger}.Execute(ctx, inv, ix)
	case instruction.ListModule:
		return ListModuleUseCase{Logger: u.Logger}.Execute(ctx, inv, ix)
	case instruction.PurchaseModule:
		return PurchaseModuleUseCase{Ledger: u.Ledger, Logger: u.Logger}.Execute(ctx, inv, ix)
	case instruction.CollectRevenue:
		return CollectRevenueUseCase{Logger: u.Logger}.Execute(ctx, inv, ix)
	case instruction.InitializeMint:
		return InitializeMintUseCase{Logger: u.Logger}.Execute(ctx, inv, ix)
	case instruction.MintTokens:
		return MintTokensUseCase{Ledger: u.Ledger, Logger: u.Logger}.Execute(ctx, inv, ix)
	case instruction.BurnTokens:
		return BurnTokensUseCase{Ledger: u.Ledger, Logger: u.Logger}.Execute(ctx, inv, ix)
	case instruction.TransferTokens:
		return TransferTokensUseCase{Ledger: u.Ledger, Logger: u.Logger}.Execute(ctx, inv, ix)
	default:
		return Result{}, fmt.Errorf("%w: unhandled instruction %T", domainerrors.ErrMalformedInstruction, ix)
	}
}

func (u ProcessInstructionUseCase) envelope(ctx context.Context, event Event, traceID string, now time.Time) (ports.EventEnvelope, error) {
	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	if strings.TrimSpace(traceID) == "" {
		traceID = eventID
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        event.Type,
		OccurredAt:       now,
		SourceService:    eventSourceService,
		TraceID:          traceID,
		SchemaVersion:    eventSchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             data,
	}, nil
}

func (u ProcessInstructionUseCase) observe(name string, outcome string, started time.Time) {
	if u.Observer == nil {
		return
	}
	u.Observer.ObserveInstruction(name, outcome, time.Since(started))
}

func (u ProcessInstructionUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return u.IdempotencyTTL
}

func (u ProcessInstructionUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

func hashInstruction(cmd ProcessInstructionCommand) string {
	hasher := sha256.New()
	for _, meta := range cmd.Accounts {
		hasher.Write(meta.Address[:])
		flags := byte(0)
		if meta.IsSigner {
			flags |= 1
		}
		if meta.IsWritable {
			flags |= 2
		}
		hasher.Write([]byte{flags})
	}
	hasher.Write(cmd.Data)
	return hex.EncodeToString(hasher.Sum(nil))
}
