package commands

import (
	"context"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
)

const mintInitializedEventType = "mint.initialized"

// InitializeMintUseCase records a settlement token mint with a fixed
// 9-decimal precision and the signer as mint authority.
// Accounts: [authority (signer), mint (program-owned), rent sysvar, token program].
type InitializeMintUseCase struct {
	Logger *slog.Logger
}

func (u InitializeMintUseCase) Execute(
	_ context.Context,
	inv Invocation,
	_ instruction.InitializeMint,
) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 4, "initialize_mint"); err != nil {
		return Result{}, err
	}
	authority, mintAccount, rentAccount, tokenProgram := inv.Accounts[0], inv.Accounts[1], inv.Accounts[2], inv.Accounts[3]

	if err := services.RequireSigner(authority, "mint authority"); err != nil {
		return Result{}, err
	}
	if err := requireTokenProgram(inv, tokenProgram); err != nil {
		return Result{}, err
	}
	current, err := loadMint(inv, mintAccount)
	if err != nil {
		return Result{}, err
	}
	if err := services.RequireUninitialized(current.IsInitialized, "mint", mintAccount.Key); err != nil {
		return Result{}, err
	}
	rent, err := services.RequireRentSysvar(rentAccount)
	if err != nil {
		return Result{}, err
	}

	mint := entities.Mint{
		IsInitialized: true,
		Authority:     authority.Key,
		Decimals:      entities.SettlementDecimals,
	}
	write, err := writeRecord(mintAccount, mint)
	if err != nil {
		return Result{}, err
	}
	if err := services.RequireRentExempt(rent, write); err != nil {
		return Result{}, err
	}

	logger.Info("mint initialized",
		"event", "marketplace_program_mint_initialized",
		"module", application.ModuleName,
		"layer", "application",
		"mint", mintAccount.Key.String(),
		"authority", authority.Key.String(),
	)

	return Result{
		Writes: []entities.Account{write},
		Events: []Event{{
			Type:             mintInitializedEventType,
			PartitionKeyPath: "mint",
			PartitionKey:     mintAccount.Key.String(),
			Data: map[string]any{
				"mint":      mintAccount.Key.String(),
				"authority": authority.Key.String(),
				"decimals":  mint.Decimals,
			},
		}},
	}, nil
}
