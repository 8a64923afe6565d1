package commands

import (
	"context"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

const (
	tokensMintedEventType      = "tokens.minted"
	tokensBurnedEventType      = "tokens.burned"
	tokensTransferredEventType = "tokens.transferred"
)

// MintTokensUseCase issues new settlement tokens.
// Accounts: [mint authority (signer), mint, destination token account, token program].
type MintTokensUseCase struct {
	Ledger ports.LedgerService
	Logger *slog.Logger
}

func (u MintTokensUseCase) Execute(ctx context.Context, inv Invocation, ix instruction.MintTokens) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 4, "mint_tokens"); err != nil {
		return Result{}, err
	}
	authority, mintAccount, destination, tokenProgram := inv.Accounts[0], inv.Accounts[1], inv.Accounts[2], inv.Accounts[3]

	if err := services.RequireSigner(authority, "mint authority"); err != nil {
		return Result{}, err
	}
	if err := requireTokenProgram(inv, tokenProgram); err != nil {
		return Result{}, err
	}
	if err := requireAmount(ix.Amount); err != nil {
		return Result{}, err
	}
	mint, err := loadActiveMint(inv, mintAccount)
	if err != nil {
		return Result{}, err
	}
	if err := services.RequireMatch(authority.Key, mint.Authority, "mint authority"); err != nil {
		return Result{}, err
	}
	if err := u.Ledger.Mint(ctx, authority.Key, mintAccount.Key, destination.Key, ix.Amount); err != nil {
		return Result{}, err
	}

	logger.Info("tokens minted",
		"event", "marketplace_program_tokens_minted",
		"module", application.ModuleName,
		"layer", "application",
		"mint", mintAccount.Key.String(),
		"destination", destination.Key.String(),
		"amount", ix.Amount,
	)
	return Result{Events: []Event{{
		Type:             tokensMintedEventType,
		PartitionKeyPath: "mint",
		PartitionKey:     mintAccount.Key.String(),
		Data: map[string]any{
			"mint":        mintAccount.Key.String(),
			"destination": destination.Key.String(),
			"amount":      ix.Amount,
		},
	}}}, nil
}

// BurnTokensUseCase destroys settlement tokens held by the signer.
// Accounts: [owner (signer), source token account, mint, token program].
type BurnTokensUseCase struct {
	Ledger ports.LedgerService
	Logger *slog.Logger
}

func (u BurnTokensUseCase) Execute(ctx context.Context, inv Invocation, ix instruction.BurnTokens) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 4, "burn_tokens"); err != nil {
		return Result{}, err
	}
	owner, source, mintAccount, tokenProgram := inv.Accounts[0], inv.Accounts[1], inv.Accounts[2], inv.Accounts[3]

	if err := services.RequireSigner(owner, "token owner"); err != nil {
		return Result{}, err
	}
	if err := requireTokenProgram(inv, tokenProgram); err != nil {
		return Result{}, err
	}
	if err := requireAmount(ix.Amount); err != nil {
		return Result{}, err
	}
	if _, err := loadActiveMint(inv, mintAccount); err != nil {
		return Result{}, err
	}
	if err := u.Ledger.Burn(ctx, owner.Key, mintAccount.Key, source.Key, ix.Amount); err != nil {
		return Result{}, err
	}

	logger.Info("tokens burned",
		"event", "marketplace_program_tokens_burned",
		"module", application.ModuleName,
		"layer", "application",
		"mint", mintAccount.Key.String(),
		"source", source.Key.String(),
		"amount", ix.Amount,
	)
	return Result{Events: []Event{{
		Type:             tokensBurnedEventType,
		PartitionKeyPath: "mint",
		PartitionKey:     mintAccount.Key.String(),
		Data: map[string]any{
			"mint":   mintAccount.Key.String(),
			"source": source.Key.String(),
			"owner":  owner.Key.String(),
			"amount": ix.Amount,
		},
	}}}, nil
}

// TransferTokensUseCase moves settlement tokens between token accounts.
// Accounts: [owner (signer), source token account, destination token account, token program].
type TransferTokensUseCase struct {
	Ledger ports.LedgerService
	Logger *slog.Logger
}

func (u TransferTokensUseCase) Execute(ctx context.Context, inv Invocation, ix instruction.TransferTokens) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 4, "transfer_tokens"); err != nil {
		return Result{}, err
	}
	owner, source, destination, tokenProgram := inv.Accounts[0], inv.Accounts[1], inv.Accounts[2], inv.Accounts[3]

	if err := services.RequireSigner(owner, "token owner"); err != nil {
		return Result{}, err
	}
	if err := requireTokenProgram(inv, tokenProgram); err != nil {
		return Result{}, err
	}
	if err := requireAmount(ix.Amount); err != nil {
		return Result{}, err
	}
	if err := u.Ledger.Transfer(ctx, owner.Key, source.Key, destination.Key, ix.Amount); err != nil {
		return Result{}, err
	}

	logger.Info("tokens transferred",
		"event", "marketplace_program_tokens_transferred",
		"module", application.ModuleName,
		"layer", "application",
		"source", source.Key.String(),
		"destination", destination.Key.String(),
		"amount", ix.Amount,
	)
	return Result{Events: []Event{{
		Type:             tokensTransferredEventType,
		PartitionKeyPath: "source",
		PartitionKey:     source.Key.String(),
		Data: map[string]any{
			"source":      source.Key.String(),
			"destination": destination.Key.String(),
			"owner":       owner.Key.String(),
			"amount":      ix.Amount,
		},
	}}}, nil
}
