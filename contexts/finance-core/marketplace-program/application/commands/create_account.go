package commands

import (
	"context"
	"fmt"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

type CreateAccountCommand struct {
	Address  entities.Pubkey
	Owner    entities.Pubkey
	Lamports uint64
	Space    int
}

// CreateAccountUseCase is the host allocation facility: it reserves a zeroed,
// funded account that a later initialize instruction fills in.
type CreateAccountUseCase struct {
	Allocator ports.AccountAllocator
	Logger    *slog.Logger
}

func (u CreateAccountUseCase) Execute(ctx context.Context, cmd CreateAccountCommand) (entities.Account, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Space < 0 || cmd.Space > maxAccountSpace {
		return entities.Account{}, fmt.Errorf("%w: space %d", domainerrors.ErrInvalidAccountData, cmd.Space)
	}
	account := entities.Account{
		Address:  cmd.Address,
		Owner:    cmd.Owner,
		Lamports: cmd.Lamports,
		Data:     make([]byte, cmd.Space),
	}
	if err := u.Allocator.CreateAccount(ctx, account); err != nil {
		logger.Warn("account allocation failed",
			"event", "marketplace_program_account_allocation_failed",
			"module", application.ModuleName,
			"layer", "application",
			"address", cmd.Address.String(),
			"error", err.Error(),
		)
		return entities.Account{}, err
	}

	logger.Info("account allocated",
		"event", "marketplace_program_account_allocated",
		"module", application.ModuleName,
		"layer", "application",
		"address", cmd.Address.String(),
		"owner", cmd.Owner.String(),
		"space", cmd.Space,
		"lamports", cmd.Lamports,
	)
	return account, nil
}

const maxAccountSpace = 10 * 1024 * 1024
