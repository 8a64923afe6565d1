package commands

import (
	"context"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
)

const marketplaceInitializedEventType = "marketplace.initialized"

// InitializeMarketplaceUseCase creates a marketplace record.
// Accounts: [authority (signer), marketplace (program-owned), rent sysvar].
type InitializeMarketplaceUseCase struct {
	Logger *slog.Logger
}

func (u InitializeMarketplaceUseCase) Execute(
	_ context.Context,
	inv Invocation,
	ix instruction.InitializeMarketplace,
) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 3, "initialize_marketplace"); err != nil {
		return Result{}, err
	}
	authority, marketplaceAccount, rentAccount := inv.Accounts[0], inv.Accounts[1], inv.Accounts[2]

	if err := services.RequireSigner(authority, "authority"); err != nil {
		return Result{}, err
	}
	current, err := loadMarketplace(inv, marketplaceAccount)
	if err != nil {
		return Result{}, err
	}
	if err := services.RequireUninitialized(current.IsInitialized, "marketplace", marketplaceAccount.Key); err != nil {
		return Result{}, err
	}
	if err := services.ValidateFeePercentage(ix.FeePercentage); err != nil {
		return Result{}, err
	}
	rent, err := services.RequireRentSysvar(rentAccount)
	if err != nil {
		return Result{}, err
	}

	marketplace := entities.Marketplace{
		IsInitialized: true,
		Authority:     authority.Key,
		FeePercentage: ix.FeePercentage,
	}
	write, err := writeRecord(marketplaceAccount, marketplace)
	if err != nil {
		return Result{}, err
	}
	if err := services.RequireRentExempt(rent, write); err != nil {
		return Result{}, err
	}

	logger.Info("marketplace initialized",
		"event", "marketplace_program_marketplace_initialized",
		"module", application.ModuleName,
		"layer", "application",
		"marketplace", marketplaceAccount.Key.String(),
		"authority", authority.Key.String(),
		"fee_percentage", ix.FeePercentage,
	)

	return Result{
		Writes: []entities.Account{write},
		Events: []Event{{
			Type:             marketplaceInitializedEventType,
			PartitionKeyPath: "marketplace",
			PartitionKey:     marketplaceAccount.Key.String(),
			Data: map[string]any{
				"marketplace":    marketplaceAccount.Key.String(),
				"authority":      authority.Key.String(),
				"fee_percentage": ix.FeePercentage,
			},
		}},
	}, nil
}
