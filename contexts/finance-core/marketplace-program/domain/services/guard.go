package services

import (
	"fmt"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

// RequireAccounts rejects instructions that carry fewer positional accounts
// than the variant needs.
func RequireAccounts(accounts []entities.AccountInfo, want int, name string) error {
	if len(accounts) < want {
		return fmt.Errorf("%w: %s expects %d accounts, got %d",
			domainerrors.ErrMalformedInstruction, name, want, len(accounts))
	}
	return nil
}

func RequireSigner(account entities.AccountInfo, role string) error {
	if !account.IsSigner {
		return fmt.Errorf("%w: %s %s", domainerrors.ErrMissingSignature, role, account.Key)
	}
	return nil
}

// RequireOwnedBy enforces that a record the call reads as program state or
// intends to mutate lives in the program's namespace.
func RequireOwnedBy(account entities.AccountInfo, programID entities.Pubkey, role string) error {
	if account.Owner != programID {
		return fmt.Errorf("%w: %s %s is owned by %s",
			domainerrors.ErrWrongOwner, role, account.Key, account.Owner)
	}
	return nil
}

func RequireInitialized(initialized bool, role string, key entities.Pubkey) error {
	if !initialized {
		return fmt.Errorf("%w: %s %s", domainerrors.ErrUninitialized, role, key)
	}
	return nil
}

func RequireUninitialized(initialized bool, role string, key entities.Pubkey) error {
	if initialized {
		return fmt.Errorf("%w: %s %s", domainerrors.ErrAlreadyInitialized, role, key)
	}
	return nil
}

// RequireRentSysvar decodes the rent parameters from the rent sysvar account.
func RequireRentSysvar(account entities.AccountInfo) (entities.Rent, error) {
	if account.Key != entities.RentSysvarID {
		return entities.Rent{}, fmt.Errorf("%w: expected rent sysvar, got %s",
			domainerrors.ErrInvalidAccountData, account.Key)
	}
	return entities.UnmarshalRent(account.Data)
}

// RequireRentExempt checks the account balance against the size of the data
// that will be committed.
func RequireRentExempt(rent entities.Rent, account entities.Account) error {
	if !rent.IsExempt(account.Lamports, len(account.Data)) {
		return fmt.Errorf("%w: %s holds %d lamports, needs %d",
			domainerrors.ErrRentExemptionViolation, account.Address,
			account.Lamports, rent.MinimumBalance(len(account.Data)))
	}
	return nil
}

func RequireMatch(got entities.Pubkey, want entities.Pubkey, role string) error {
	if got != want {
		return fmt.Errorf("%w: %s %s does not match %s", domainerrors.ErrUnauthorized, role, got, want)
	}
	return nil
}
