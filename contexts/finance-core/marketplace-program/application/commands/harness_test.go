package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"metamarket/contexts/finance-core/marketplace-program/adapters/memory"
	"metamarket/contexts/finance-core/marketplace-program/application/commands"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
)

var (
	programID      = key(200)
	tokenProgramID = key(201)
)

func key(seed byte) entities.Pubkey {
	var k entities.Pubkey
	for i := range k {
		k[i] = seed
	}
	return k
}

func signer(address entities.Pubkey) entities.AccountMeta {
	return entities.AccountMeta{Address: address, IsSigner: true, IsWritable: true}
}

func writable(address entities.Pubkey) entities.AccountMeta {
	return entities.AccountMeta{Address: address, IsWritable: true}
}

func readonly(address entities.Pubkey) entities.AccountMeta {
	return entities.AccountMeta{Address: address}
}

type observation struct {
	instruction string
	outcome     string
}

type recordingObserver struct {
	mu       sync.Mutex
	observed []observation
}

func (o *recordingObserver) ObserveInstruction(instruction string, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed = append(o.observed, observation{instruction: instruction, outcome: outcome})
}

func (o *recordingObserver) last() observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.observed) == 0 {
		return observation{}
	}
	return o.observed[len(o.observed)-1]
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	rent     entities.Rent
	store    *memory.Store
	ledger   *memory.Ledger
	observer *recordingObserver
	process  commands.ProcessInstructionUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	rent := entities.DefaultRent()
	rentData, _ := rent.MarshalBinary()
	store := memory.NewStore([]entities.Account{{
		Address: entities.RentSysvarID,
		Owner:   entities.SystemProgramID,
		Data:    rentData,
	}}, nil)
	ledger := memory.NewLedger()
	observer := &recordingObserver{}
	return &harness{
		t:        t,
		ctx:      context.Background(),
		rent:     rent,
		store:    store,
		ledger:   ledger,
		observer: observer,
		process: commands.ProcessInstructionUseCase{
			ProgramID:      programID,
			TokenProgramID: tokenProgramID,
			Accounts:       store,
			Ledger:         ledger,
			Idempotency:    store,
			Clock:          store,
			IDGenerator:    store,
			Observer:       observer,
			Locks:          &commands.AccountLocks{},
		},
	}
}

// allocate reserves a rent-exempt, program-owned account of the given size.
func (h *harness) allocate(address entities.Pubkey, space int) {
	h.t.Helper()
	_, err := commands.CreateAccountUseCase{Allocator: h.store}.Execute(h.ctx, commands.CreateAccountCommand{
		Address:  address,
		Owner:    programID,
		Lamports: h.rent.MinimumBalance(space),
		Space:    space,
	})
	if err != nil {
		h.t.Fatalf("allocate %s: %v", address, err)
	}
}

func (h *harness) run(ix instruction.Instruction, accounts ...entities.AccountMeta) (commands.ProcessInstructionResult, error) {
	return h.process.Execute(h.ctx, commands.ProcessInstructionCommand{
		Accounts: accounts,
		Data:     instruction.Encode(ix),
	})
}

func (h *harness) mustRun(ix instruction.Instruction, accounts ...entities.AccountMeta) commands.ProcessInstructionResult {
	h.t.Helper()
	result, err := h.run(ix, accounts...)
	if err != nil {
		h.t.Fatalf("%s failed: %v", ix.Tag(), err)
	}
	return result
}

func (h *harness) marketplace(address entities.Pubkey) entities.Marketplace {
	h.t.Helper()
	account, ok := h.store.Account(address)
	if !ok {
		h.t.Fatalf("marketplace %s not found", address)
	}
	marketplace, err := entities.UnmarshalMarketplace(account.Data)
	if err != nil {
		h.t.Fatalf("decode marketplace: %v", err)
	}
	return marketplace
}

func (h *harness) module(address entities.Pubkey) entities.Module {
	h.t.Helper()
	account, ok := h.store.Account(address)
	if !ok {
		h.t.Fatalf("module %s not found", address)
	}
	module, err := entities.UnmarshalModule(account.Data)
	if err != nil {
		h.t.Fatalf("decode module: %v", err)
	}
	return module
}

func (h *harness) balance(address entities.Pubkey) uint64 {
	h.t.Helper()
	balance, err := h.ledger.Balance(h.ctx, address)
	if err != nil {
		h.t.Fatalf("balance %s: %v", address, err)
	}
	return balance.Amount
}

func (h *harness) countEvents(eventType string) int {
	count := 0
	for _, event := range h.store.OutboxEvents() {
		if event.EventType == eventType {
			count++
		}
	}
	return count
}

// fixture is one listed module ready to be purchased.
type fixture struct {
	authority   entities.Pubkey
	marketplace entities.Pubkey
	mint        entities.Pubkey
	creator     entities.Pubkey
	module      entities.Pubkey
	buyer       entities.Pubkey
	buyerToken  entities.Pubkey
}

const moduleSpace = 128

func (h *harness) listedModule(feePercentage uint8, price uint64, buyerFunds uint64) fixture {
	h.t.Helper()
	f := fixture{
		authority:   key(1),
		marketplace: key(2),
		mint:        key(3),
		creator:     key(4),
		module:      key(5),
		buyer:       key(6),
		buyerToken:  key(7),
	}
	h.allocate(f.marketplace, entities.MarketplaceSize)
	h.allocate(f.mint, entities.MintSize)
	h.allocate(f.module, moduleSpace)

	h.mustRun(instruction.InitializeMarketplace{FeePercentage: feePercentage},
		signer(f.authority), writable(f.marketplace), readonly(entities.RentSysvarID))
	h.mustRun(instruction.InitializeMint{},
		signer(f.authority), writable(f.mint), readonly(entities.RentSysvarID), readonly(tokenProgramID))
	h.mustRun(instruction.ListModule{Price: price, IsFreeIssuance: price == 0},
		signer(f.creator), readonly(f.marketplace), writable(f.module), readonly(f.mint))

	h.ledger.OpenAccount(f.buyerToken, f.buyer, f.mint, buyerFunds)
	return f
}

func (h *harness) purchaseAccounts(f fixture) []entities.AccountMeta {
	return []entities.AccountMeta{
		signer(f.buyer),
		writable(f.marketplace),
		writable(f.module),
		writable(f.creator),
		writable(f.authority),
		writable(f.buyerToken),
		readonly(f.mint),
	}
}
