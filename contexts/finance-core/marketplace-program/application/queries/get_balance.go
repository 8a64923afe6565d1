package queries

import (
	"context"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

type GetBalanceQuery struct {
	Account entities.Pubkey
}

type GetBalanceUseCase struct {
	Ledger ports.LedgerService
	Logger *slog.Logger
}

func (u GetBalanceUseCase) Execute(ctx context.Context, query GetBalanceQuery) (ports.TokenBalance, error) {
	logger := application.ResolveLogger(u.Logger)
	balance, err := u.Ledger.Balance(ctx, query.Account)
	if err != nil {
		logger.Warn("ledger balance lookup failed",
			"event", "marketplace_program_balance_lookup_failed",
			"module", application.ModuleName,
			"layer", "application",
			"account", query.Account.String(),
			"error", err.Error(),
		)
		return ports.TokenBalance{}, err
	}
	return balance, nil
}
