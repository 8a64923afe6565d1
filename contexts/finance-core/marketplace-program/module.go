package marketplaceprogram

import (
	"log/slog"
	"time"

	httpadapter "metamarket/contexts/finance-core/marketplace-program/adapters/http"
	"metamarket/contexts/finance-core/marketplace-program/adapters/memory"
	"metamarket/contexts/finance-core/marketplace-program/application/commands"
	"metamarket/contexts/finance-core/marketplace-program/application/queries"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

// Module is the composition surface for the marketplace program.
// Runtime wiring should consume Handler; Store and Ledger are set by
// NewInMemoryModule for tests and inspection.
type Module struct {
	Handler httpadapter.Handler
	Outbox  ports.OutboxRepository
	Store   *memory.Store
	Ledger  *memory.Ledger
}

type Dependencies struct {
	ProgramID      entities.Pubkey
	TokenProgramID entities.Pubkey
	Accounts       ports.AccountStore
	Allocator      ports.AccountAllocator
	Ledger         ports.LedgerService
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxRepository
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Observer       ports.InstructionObserver
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewModule wires the program use cases against explicit ports.
func NewModule(deps Dependencies) Module {
	process := commands.ProcessInstructionUseCase{
		ProgramID:      deps.ProgramID,
		TokenProgramID: deps.TokenProgramID,
		Accounts:       deps.Accounts,
		Ledger:         deps.Ledger,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDGenerator:    deps.IDGenerator,
		Observer:       deps.Observer,
		Locks:          &commands.AccountLocks{},
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	createAccount := commands.CreateAccountUseCase{
		Allocator: deps.Allocator,
		Logger:    deps.Logger,
	}

	handler := httpadapter.Handler{
		ProgramID:          deps.ProgramID,
		ProcessInstruction: process,
		CreateAccount:      createAccount,
		GetMarketplace: queries.GetMarketplaceUseCase{
			ProgramID: deps.ProgramID,
			Accounts:  deps.Accounts,
			Logger:    deps.Logger,
		},
		GetModule: queries.GetModuleUseCase{
			ProgramID: deps.ProgramID,
			Accounts:  deps.Accounts,
			Logger:    deps.Logger,
		},
		GetMint: queries.GetMintUseCase{
			ProgramID: deps.ProgramID,
			Accounts:  deps.Accounts,
			Logger:    deps.Logger,
		},
		GetRevenueAccount: queries.GetRevenueAccountUseCase{
			ProgramID: deps.ProgramID,
			Accounts:  deps.Accounts,
			Logger:    deps.Logger,
		},
		GetBalance: queries.GetBalanceUseCase{
			Ledger: deps.Ledger,
			Logger: deps.Logger,
		},
		Logger: deps.Logger,
	}

	return Module{Handler: handler, Outbox: deps.Outbox}
}

// NewInMemoryModule wires the program against in-memory account storage and
// an in-memory ledger. The rent sysvar is seeded with the given parameters.
func NewInMemoryModule(
	programID entities.Pubkey,
	tokenProgramID entities.Pubkey,
	rent entities.Rent,
	observer ports.InstructionObserver,
	logger *slog.Logger,
) Module {
	rentData, _ := rent.MarshalBinary()
	store := memory.NewStore([]entities.Account{{
		Address: entities.RentSysvarID,
		Owner:   entities.SystemProgramID,
		Data:    rentData,
	}}, logger)
	ledger := memory.NewLedger()

	module := NewModule(Dependencies{
		ProgramID:      programID,
		TokenProgramID: tokenProgramID,
		Accounts:       store,
		Allocator:      store,
		Ledger:         ledger,
		Idempotency:    store,
		Outbox:         store,
		Clock:          store,
		IDGenerator:    store,
		Observer:       observer,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	module.Ledger = ledger
	return module
}
