package commands

import (
	"context"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
)

const moduleListedEventType = "module.listed"

// ListModuleUseCase registers a module under an initialized marketplace.
// Accounts: [creator (signer), marketplace, module (program-owned), mint].
type ListModuleUseCase struct {
	Logger *slog.Logger
}

func (u ListModuleUseCase) Execute(
	_ context.Context,
	inv Invocation,
	ix instruction.ListModule,
) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 4, "list_module"); err != nil {
		return Result{}, err
	}
	creator, marketplaceAccount, moduleAccount, mintAccount := inv.Accounts[0], inv.Accounts[1], inv.Accounts[2], inv.Accounts[3]

	if err := services.RequireSigner(creator, "creator"); err != nil {
		return Result{}, err
	}
	if _, err := loadActiveMarketplace(inv, marketplaceAccount); err != nil {
		return Result{}, err
	}
	current, err := loadModule(inv, moduleAccount)
	if err != nil {
		return Result{}, err
	}
	if err := services.RequireUninitialized(current.IsInitialized, "module", moduleAccount.Key); err != nil {
		return Result{}, err
	}
	if _, err := loadActiveMint(inv, mintAccount); err != nil {
		return Result{}, err
	}
	if err := services.ValidateListing(ix.Price, ix.IsFreeIssuance); err != nil {
		return Result{}, err
	}

	module := entities.Module{
		IsInitialized:  true,
		Creator:        creator.Key,
		Marketplace:    marketplaceAccount.Key,
		Mint:           mintAccount.Key,
		Price:          ix.Price,
		IsFreeIssuance: ix.IsFreeIssuance,
	}
	write, err := writeRecord(moduleAccount, module)
	if err != nil {
		return Result{}, err
	}

	logger.Info("module listed",
		"event", "marketplace_program_module_listed",
		"module", application.ModuleName,
		"layer", "application",
		"marketplace", marketplaceAccount.Key.String(),
		"listing", moduleAccount.Key.String(),
		"creator", creator.Key.String(),
		"price", ix.Price,
		"is_free_issuance", ix.IsFreeIssuance,
	)

	return Result{
		Writes: []entities.Account{write},
		Events: []Event{{
			Type:             moduleListedEventType,
			PartitionKeyPath: "module",
			PartitionKey:     moduleAccount.Key.String(),
			Data: map[string]any{
				"marketplace":      marketplaceAccount.Key.String(),
				"module":           moduleAccount.Key.String(),
				"creator":          creator.Key.String(),
				"mint":             mintAccount.Key.String(),
				"price":            ix.Price,
				"is_free_issuance": ix.IsFreeIssuance,
			},
		}},
	}, nil
}
