package queries

import (
	"context"
	"fmt"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

type GetRecordQuery struct {
	Address entities.Pubkey
}

type GetMarketplaceUseCase struct {
	ProgramID entities.Pubkey
	Accounts  ports.AccountStore
	Logger    *slog.Logger
}

func (u GetMarketplaceUseCase) Execute(ctx context.Context, query GetRecordQuery) (entities.Marketplace, error) {
	account, err := loadProgramAccount(ctx, u.Accounts, u.ProgramID, query.Address, "marketplace", u.Logger)
	if err != nil {
		return entities.Marketplace{}, err
	}
	marketplace, err := entities.UnmarshalMarketplace(account.Data)
	if err != nil {
		return entities.Marketplace{}, err
	}
	if !marketplace.IsInitialized {
		return entities.Marketplace{}, fmt.Errorf("%w: marketplace %s", domainerrors.ErrAccountNotFound, query.Address)
	}
	return marketplace, nil
}

type GetModuleUseCase struct {
	ProgramID entities.Pubkey
	Accounts  ports.AccountStore
	Logger    *slog.Logger
}

func (u GetModuleUseCase) Execute(ctx context.Context, query GetRecordQuery) (entities.Module, error) {
	account, err := loadProgramAccount(ctx, u.Accounts, u.ProgramID, query.Address, "module", u.Logger)
	if err != nil {
		return entities.Module{}, err
	}
	module, err := entities.UnmarshalModule(account.Data)
	if err != nil {
		return entities.Module{}, err
	}
	if !module.IsInitialized {
		return entities.Module{}, fmt.Errorf("%w: module %s", domainerrors.ErrAccountNotFound, query.Address)
	}
	return module, nil
}

type GetMintUseCase struct {
	ProgramID entities.Pubkey
	Accounts  ports.AccountStore
	Logger    *slog.Logger
}

func (u GetMintUseCase) Execute(ctx context.Context, query GetRecordQuery) (entities.Mint, error) {
	account, err := loadProgramAccount(ctx, u.Accounts, u.ProgramID, query.Address, "mint", u.Logger)
	if err != nil {
		return entities.Mint{}, err
	}
	mint, err := entities.UnmarshalMint(account.Data)
	if err != nil {
		return entities.Mint{}, err
	}
	if !mint.IsInitialized {
		return entities.Mint{}, fmt.Errorf("%w: mint %s", domainerrors.ErrAccountNotFound, query.Address)
	}
	return mint, nil
}

type GetRevenueAccountUseCase struct {
	ProgramID entities.Pubkey
	Accounts  ports.AccountStore
	Logger    *slog.Logger
}

func (u GetRevenueAccountUseCase) Execute(ctx context.Context, query GetRecordQuery) (entities.RevenueAccount, error) {
	account, err := loadProgramAccount(ctx, u.Accounts, u.ProgramID, query.Address, "revenue_account", u.Logger)
	if err != nil {
		return entities.RevenueAccount{}, err
	}
	revenue, err := entities.UnmarshalRevenueAccount(account.Data)
	if err != nil {
		return entities.RevenueAccount{}, err
	}
	if !revenue.IsInitialized {
		return entities.RevenueAccount{}, fmt.Errorf("%w: revenue account %s", domainerrors.ErrAccountNotFound, query.Address)
	}
	return revenue, nil
}

func loadProgramAccount(
	ctx context.Context,
	store ports.AccountStore,
	programID entities.Pubkey,
	address entities.Pubkey,
	kind string,
	logger *slog.Logger,
) (entities.Account, error) {
	logger = application.ResolveLogger(logger)
	accounts, err := store.LoadAccounts(ctx, []entities.Pubkey{address})
	if err != nil {
		logger.Error("record load failed",
			"event", "marketplace_program_record_load_failed",
			"module", application.ModuleName,
			"layer", "application",
			"kind", kind,
			"address", address.String(),
			"error", err.Error(),
		)
		return entities.Account{}, err
	}
	if len(accounts) != 1 || accounts[0].Owner != programID {
		return entities.Account{}, fmt.Errorf("%w: %s %s", domainerrors.ErrAccountNotFound, kind, address)
	}
	return accounts[0], nil
}
