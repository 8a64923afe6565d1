package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
	"metamarket/contexts/finance-core/marketplace-program/ports"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is a LedgerService over the ledger_token_accounts table. Every
// movement locks the touched rows FOR UPDATE in address order.
type Ledger struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewLedger(db *gorm.DB, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{db: db, logger: logger}
}

func (l *Ledger) Balance(ctx context.Context, account entities.Pubkey) (ports.TokenBalance, error) {
	var row tokenAccountModel
	err := l.db.WithContext(ctx).
		Where("account = ?", account.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.TokenBalance{}, fmt.Errorf("%w: token account %s", domainerrors.ErrAccountNotFound, account)
		}
		return ports.TokenBalance{}, err
	}
	return row.toPort()
}

func (l *Ledger) Mint(ctx context.Context, _ entities.Pubkey, mint entities.Pubkey, destination entities.Pubkey, amount uint64) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockTokenAccounts(tx, []entities.Pubkey{destination})
		if err != nil {
			return err
		}
		to, exists := locked[destination]
		if !exists {
			to = ports.TokenBalance{Account: destination, Owner: destination, Mint: mint}
		}
		if to.Mint != mint {
			return fmt.Errorf("%w: token account %s holds mint %s, expected %s",
				domainerrors.ErrInvalidAccountData, destination, to.Mint, mint)
		}
		if to.Amount, err = services.CheckedAdd(to.Amount, amount); err != nil {
			return err
		}
		return saveTokenAccount(tx, to, exists)
	})
}

func (l *Ledger) Burn(ctx context.Context, owner entities.Pubkey, mint entities.Pubkey, source entities.Pubkey, amount uint64) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockTokenAccounts(tx, []entities.Pubkey{source})
		if err != nil {
			return err
		}
		from, err := debit(locked, owner, source, amount)
		if err != nil {
			return err
		}
		if from.Mint != mint {
			return fmt.Errorf("%w: token account %s holds mint %s, expected %s",
				domainerrors.ErrInvalidAccountData, source, from.Mint, mint)
		}
		return saveTokenAccount(tx, from, true)
	})
}

func (l *Ledger) Transfer(ctx context.Context, authority entities.Pubkey, from entities.Pubkey, to entities.Pubkey, amount uint64) error {
	return l.Settle(ctx, ports.Settlement{
		Authority: authority,
		Source:    from,
		Legs:      []ports.TransferLeg{{To: to, Amount: amount}},
	})
}

func (l *Ledger) Settle(ctx context.Context, settlement ports.Settlement) error {
	keys := []entities.Pubkey{settlement.Source}
	var total uint64
	for _, leg := range settlement.Legs {
		next, err := services.CheckedAdd(total, leg.Amount)
		if err != nil {
			return err
		}
		total = next
		keys = append(keys, leg.To)
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockTokenAccounts(tx, keys)
		if err != nil {
			return err
		}
		from, err := debit(locked, settlement.Authority, settlement.Source, total)
		if err != nil {
			return err
		}
		if !settlement.Mint.IsZero() && from.Mint != settlement.Mint {
			return fmt.Errorf("%w: token account %s holds mint %s, expected %s",
				domainerrors.ErrInvalidAccountData, settlement.Source, from.Mint, settlement.Mint)
		}
		locked[settlement.Source] = from

		created := make(map[entities.Pubkey]bool)
		for _, leg := range settlement.Legs {
			to, exists := locked[leg.To]
			if !exists {
				to = ports.TokenBalance{Account: leg.To, Owner: leg.To, Mint: from.Mint}
				created[leg.To] = true
			}
			if to.Mint != from.Mint {
				return fmt.Errorf("%w: token account %s holds mint %s, expected %s",
					domainerrors.ErrInvalidAccountData, leg.To, to.Mint, from.Mint)
			}
			if to.Amount, err = services.CheckedAdd(to.Amount, leg.Amount); err != nil {
				return err
			}
			locked[leg.To] = to
		}

		for _, key := range uniqueSorted(keys) {
			if err := saveTokenAccount(tx, locked[key], !created[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.logger.Warn("ledger settlement failed",
			"event", "marketplace_program_ledger_settle_failed",
			"module", "finance-core/marketplace-program",
			"layer", "adapter",
			"source", settlement.Source.String(),
			"legs", len(settlement.Legs),
			"error", err.Error(),
		)
	}
	return err
}

// OpenAccount inserts a token account row; it is the ledger-side analogue of
// creating an associated token account.
func (l *Ledger) OpenAccount(ctx context.Context, account entities.Pubkey, owner entities.Pubkey, mint entities.Pubkey) error {
	row := tokenAccountModel{
		Account:   account.String(),
		Owner:     owner.String(),
		Mint:      mint.String(),
		Amount:    decimal.Zero,
		UpdatedAt: time.Now().UTC(),
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: token account %s", domainerrors.ErrAccountExists, account)
		}
		return err
	}
	return nil
}

func lockTokenAccounts(tx *gorm.DB, keys []entities.Pubkey) (map[entities.Pubkey]ports.TokenBalance, error) {
	ordered := uniqueSorted(keys)
	addresses := make([]string, 0, len(ordered))
	for _, key := range ordered {
		addresses = append(addresses, key.String())
	}

	var rows []tokenAccountModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account IN ?", addresses).
		Order("account ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	locked := make(map[entities.Pubkey]ports.TokenBalance, len(rows))
	for _, row := range rows {
		balance, err := row.toPort()
		if err != nil {
			return nil, err
		}
		locked[balance.Account] = balance
	}
	return locked, nil
}

func debit(
	locked map[entities.Pubkey]ports.TokenBalance,
	owner entities.Pubkey,
	source entities.Pubkey,
	amount uint64,
) (ports.TokenBalance, error) {
	from, ok := locked[source]
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

func saveTokenAccount(tx *gorm.DB, balance ports.TokenBalance, exists bool) error {
	now := time.Now().UTC()
	if !exists {
		row := tokenAccountModel{
			Account:   balance.Account.String(),
			Owner:     balance.Owner.String(),
			Mint:      balance.Mint.String(),
			Amount:    decimalFromU64(balance.Amount),
			UpdatedAt: now,
		}
		return tx.Create(&row).Error
	}
	return tx.Model(&tokenAccountModel{}).
		Where("account = ?", balance.Account.String()).
		Updates(map[string]any{
			"amount":     decimalFromU64(balance.Amount),
			"updated_at": now,
		}).
		Error
}

func uniqueSorted(keys []entities.Pubkey) []entities.Pubkey {
	ordered := make([]string, 0, len(keys))
	byString := make(map[string]entities.Pubkey, len(keys))
	for _, key := range keys {
		value := key.String()
		if _, seen := byString[value]; seen {
			continue
		}
		byString[value] = key
		ordered = append(ordered, value)
	}
	slices.Sort(ordered)
	result := make([]entities.Pubkey, 0, len(ordered))
	for _, value := range ordered {
		result = append(result, byString[value])
	}
	return result
}

type tokenAccountModel struct {
	Account   string          `gorm:"column:account;primaryKey"`
	Owner     string          `gorm:"column:owner"`
	Mint      string          `gorm:"column:mint"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(20,0)"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (tokenAccountModel) TableName() string {
	return "ledger_token_accounts"
}

func (m tokenAccountModel) toPort() (ports.TokenBalance, error) {
	account, err := entities.ParsePubkey(m.Account)
	if err != nil {
		return ports.TokenBalance{}, err
	}
	owner, err := entities.ParsePubkey(m.Owner)
	if err != nil {
		return ports.TokenBalance{}, err
	}
	mint, err := entities.ParsePubkey(m.Mint)
	if err != nil {
		return ports.TokenBalance{}, err
	}
	amount, err := u64FromDecimal(m.Amount)
	if err != nil {
		return ports.TokenBalance{}, err
	}
	return ports.TokenBalance{Account: account, Owner: owner, Mint: mint, Amount: amount}, nil
}
