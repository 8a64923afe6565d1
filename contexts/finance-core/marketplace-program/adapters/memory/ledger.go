package memory

import (
	"context"
	"fmt"
	"sync"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

// Ledger is an in-memory LedgerService. Token accounts that receive tokens
// before they exist are opened with themselves as owner.
type Ledger struct {
	mu       sync.Mutex
	accounts map[entities.Pubkey]ports.TokenBalance
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[entities.Pubkey]ports.TokenBalance)}
}

// OpenAccount creates or replaces a token account with the given owner and mint.
func (l *Ledger) OpenAccount(account entities.Pubkey, owner entities.Pubkey, mint entities.Pubkey, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[account] = ports.TokenBalance{Account: account, Owner: owner, Mint: mint, Amount: amount}
}

func (l *Ledger) Balance(_ context.Context, account entities.Pubkey) (ports.TokenBalance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.accounts[account]
	if !ok {
		return ports.TokenBalance{}, fmt.Errorf("%w: token account %s", domainerrors.ErrAccountNotFound, account)
	}
	return balance, nil
}

func (l *Ledger) Mint(_ context.Context, _ entities.Pubkey, mint entities.Pubkey, destination entities.Pubkey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	to, err := l.credit(destination, mint, amount)
	if err != nil {
		return err
	}
	l.accounts[destination] = to
	return nil
}

func (l *Ledger) Burn(_ context.Context, owner entities.Pubkey, mint entities.Pubkey, source entities.Pubkey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from, err := l.debit(owner, source, amount)
	if err != nil {
		return err
	}
	if from.Mint != mint {
		return fmt.Errorf("%w: token account %s holds mint %s, expected %s",
			domainerrors.ErrInvalidAccountData, source, from.Mint, mint)
	}
	l.accounts[source] = from
	return nil
}

func (l *Ledger) Transfer(ctx context.Context, authority entities.Pubkey, from entities.Pubkey, to entities.Pubkey, amount uint64) error {
	return l.Settle(ctx, ports.Settlement{
		Authority: authority,
		Source:    from,
		Legs:      []ports.TransferLeg{{To: to, Amount: amount}},
	})
}

// Settle validates the debit and every credit before applying any of them.
func (l *Ledger) Settle(_ context.Context, settlement ports.Settlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total uint64
	for _, leg := range settlement.Legs {
		next, err := services.CheckedAdd(total, leg.Amount)
		if err != nil {
			return err
		}
		total = next
	}
	from, err := l.debit(settlement.Authority, settlement.Source, total)
	if err != nil {
		return err
	}
	if !settlement.Mint.IsZero() && from.Mint != settlement.Mint {
		return fmt.Errorf("%w: token account %s holds mint %s, expected %s",
			domainerrors.ErrInvalidAccountData, settlement.Source, from.Mint, settlement.Mint)
	}

	staged := map[entities.Pubkey]ports.TokenBalance{settlement.Source: from}
	for _, leg := range settlement.Legs {
		current, ok := staged[leg.To]
		if !ok {
			current, ok = l.accounts[leg.To]
		}
		if !ok {
			current = ports.TokenBalance{Account: leg.To, Owner: leg.To, Mint: from.Mint}
		}
		if current.Mint != from.Mint {
			return fmt.Errorf("%w: token account %s holds mint %s, expected %s",
				domainerrors.ErrInvalidAccountData, leg.To, current.Mint, from.Mint)
		}
		if current.Amount, err = services.CheckedAdd(current.Amount, leg.Amount); err != nil {
			return err
		}
		staged[leg.To] = current
	}
	for account, balance := range staged {
		l.accounts[account] = balance
	}
	return nil
}

func (l *Ledger) debit(owner entities.Pubkey, source entities.Pubkey, amount uint64) (ports.TokenBalance, error) {
	from, ok := l.accounts[source]
	if !ok {
		return ports.TokenBalance{}, fmt.Errorf("%w: token account %s does not exist", domainerrors.ErrInsufficientFunds, source)
	}
	if from.Owner != owner {
		return ports.TokenBalance{}, fmt.Errorf("%w: %s does not own token account %s", domainerrors.ErrUnauthorized, owner, source)
	}
	if from.Amount < amount {
		return ports.TokenBalance{}, fmt.Errorf("%w: token account %s holds %d, needs %d",
			domainerrors.ErrInsufficientFunds, source, from.Amount, amount)
	}
	from.Amount -= amount
	return from, nil
}

func (l *Ledger) credit(destination entities.Pubkey, mint entities.Pubkey, amount uint64) (ports.TokenBalance, error) {
	to, ok := l.accounts[destination]
	if !ok {
		to = ports.TokenBalance{Account: destination, Owner: destination, Mint: mint}
	}
	if to.Mint != mint {
		return ports.TokenBalance{}, fmt.Errorf("%w: token account %s holds mint %s, expected %s",
			domainerrors.ErrInvalidAccountData, destination, to.Mint, mint)
	}
	next, err := services.CheckedAdd(to.Amount, amount)
	if err != nil {
		return ports.TokenBalance{}, err
	}
	to.Amount = next
	return to, nil
}
