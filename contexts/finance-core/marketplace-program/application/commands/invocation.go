package commands

import (
	"fmt"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
)

// Invocation is one instruction's resolved account list and program identity.
type Invocation struct {
	ProgramID      entities.Pubkey
	TokenProgramID entities.Pubkey
	Accounts       []entities.AccountInfo
}

// Event is a state-change notification emitted by a successful instruction.
type Event struct {
	Type             string
	PartitionKeyPath string
	PartitionKey     string
	Data             map[string]any
}

// Result holds everything an instruction wants persisted. Nothing in it is
// applied until the processor commits it as one unit.
type Result struct {
	Writes []entities.Account
	Events []Event
}

func loadMarketplace(inv Invocation, account entities.AccountInfo) (entities.Marketplace, error) {
	if err := services.RequireOwnedBy(account, inv.ProgramID, "marketplace"); err != nil {
		return entities.Marketplace{}, err
	}
	marketplace, err := entities.UnmarshalMarketplace(account.Data)
	if err != nil {
		return entities.Marketplace{}, fmt.Errorf("marketplace %s: %w", account.Key, err)
	}
	return marketplace, nil
}

func loadActiveMarketplace(inv Invocation, account entities.AccountInfo) (entities.Marketplace, error) {
	marketplace, err := loadMarketplace(inv, account)
	if err != nil {
		return entities.Marketplace{}, err
	}
	if err := services.RequireInitialized(marketplace.IsInitialized, "marketplace", account.Key); err != nil {
		return entities.Marketplace{}, err
	}
	return marketplace, nil
}

func loadModule(inv Invocation, account entities.AccountInfo) (entities.Module, error) {
	if err := services.RequireOwnedBy(account, inv.ProgramID, "module"); err != nil {
		return entities.Module{}, err
	}
	module, err := entities.UnmarshalModule(account.Data)
	if err != nil {
		return entities.Module{}, fmt.Errorf("module %s: %w", account.Key, err)
	}
	return module, nil
}

func loadListedModule(inv Invocation, account entities.AccountInfo) (entities.Module, error) {
	module, err := loadModule(inv, account)
	if err != nil {
		return entities.Module{}, err
	}
	if err := services.RequireInitialized(module.IsInitialized, "module", account.Key); err != nil {
		return entities.Module{}, err
	}
	return module, nil
}

func loadMint(inv Invocation, account entities.AccountInfo) (entities.Mint, error) {
	if err := services.RequireOwnedBy(account, inv.ProgramID, "mint"); err != nil {
		return entities.Mint{}, err
	}
	mint, err := entities.UnmarshalMint(account.Data)
	if err != nil {
		return entities.Mint{}, fmt.Errorf("mint %s: %w", account.Key, err)
	}
	return mint, nil
}

func loadActiveMint(inv Invocation, account entities.AccountInfo) (entities.Mint, error) {
	mint, err := loadMint(inv, account)
	if err != nil {
		return entities.Mint{}, err
	}
	if err := services.RequireInitialized(mint.IsInitialized, "mint", account.Key); err != nil {
		return entities.Mint{}, err
	}
	return mint, nil
}

type binaryRecord interface {
	MarshalBinary() ([]byte, error)
}

func writeRecord(account entities.AccountInfo, record binaryRecord) (entities.Account, error) {
	data, err := record.MarshalBinary()
	if err != nil {
		return entities.Account{}, err
	}
	return account.WithData(data), nil
}

// requireTokenProgram rejects token instructions that name a ledger program
// other than the configured one.
func requireTokenProgram(inv Invocation, account entities.AccountInfo) error {
	if account.Key != inv.TokenProgramID {
		return fmt.Errorf("%w: token program %s, expected %s",
			domainerrors.ErrWrongOwner, account.Key, inv.TokenProgramID)
	}
	return nil
}

func requireAmount(amount uint64) error {
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	return nil
}
