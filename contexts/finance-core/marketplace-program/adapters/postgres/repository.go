package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// Repository persists program accounts, the event outbox and idempotency
// records. Account writes and outbox rows share one transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the program and ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&accountModel{}, &outboxModel{}, &idempotencyModel{}, &tokenAccountModel{})
}

func (r *Repository) LoadAccounts(ctx context.Context, addresses []entities.Pubkey) ([]entities.Account, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(addresses))
	for _, address := range addresses {
		keys = append(keys, address.String())
	}

	var rows []accountModel
	if err := r.db.WithContext(ctx).
		Where("address IN ?", keys).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	byAddress := make(map[string]accountModel, len(rows))
	for _, row := range rows {
		byAddress[row.Address] = row
	}
	loaded := make([]entities.Account, 0, len(addresses))
	for _, address := range addresses {
		row, ok := byAddress[address.String()]
		if !ok {
			loaded = append(loaded, entities.Account{Address: address, Owner: entities.SystemProgramID})
			continue
		}
		account, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, account)
	}
	return loaded, nil
}

// Commit writes every account with a compare-and-set on version and appends
// the outbox rows, all in one transaction.
func (r *Repository) Commit(ctx context.Context, writes []entities.Account, events []ports.EventEnvelope) error {
	outboxRows := make([]outboxModel, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		outboxRows = append(outboxRows, outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    event.OccurredAt.UTC(),
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, write := range writes {
			if write.Version == 0 {
				row := accountModelFromEntity(write, now)
				row.Version = 1
				result := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "address"}},
					DoNothing: true,
				}).Create(&row)
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return fmt.Errorf("%w: %s created concurrently", domainerrors.ErrConcurrentModification, write.Address)
				}
				continue
			}

			result := tx.Model(&accountModel{}).
				Where("address = ? AND version = ?", write.Address.String(), int64(write.Version)).
				Updates(map[string]any{
					"owner":      write.Owner.String(),
					"lamports":   decimalFromU64(write.Lamports),
					"data":       write.Data,
					"version":    int64(write.Version) + 1,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s changed since version %d",
					domainerrors.ErrConcurrentModification, write.Address, write.Version)
			}
		}

		for i := range outboxRows {
			if err := tx.Create(&outboxRows[i]).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: duplicate outbox event %s", domainerrors.ErrConcurrentModification, outboxRows[i].OutboxID)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("program account commit failed",
			"event", "marketplace_program_postgres_commit_failed",
			"module", "finance-core/marketplace-program",
			"layer", "adapter",
			"writes", len(writes),
			"events", len(events),
			"error", err.Error(),
		)
	}
	return err
}

func (r *Repository) CreateAccount(ctx context.Context, account entities.Account) error {
	row := accountModelFromEntity(account, time.Now().UTC())
	row.Version = 1
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domainerrors.ErrAccountExists, account.Address)
		}
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", key).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return row.toPort(), true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModelFromPort(record)
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", record.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: outbox message %s", domainerrors.ErrAccountNotFound, outboxID)
	}
	return nil
}

type accountModel struct {
	Address   string          `gorm:"column:address;primaryKey"`
	Owner     string          `gorm:"column:owner"`
	Lamports  decimal.Decimal `gorm:"column:lamports;type:numeric(20,0)"`
	Data      []byte          `gorm:"column:data"`
	Version   int64           `gorm:"column:version"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "program_accounts"
}

func accountModelFromEntity(account entities.Account, now time.Time) accountModel {
	return accountModel{
		Address:   account.Address.String(),
		Owner:     account.Owner.String(),
		Lamports:  decimalFromU64(account.Lamports),
		Data:      append([]byte(nil), account.Data...),
		Version:   int64(account.Version),
		UpdatedAt: now,
	}
}

func (m accountModel) toEntity() (entities.Account, error) {
	address, err := entities.ParsePubkey(m.Address)
	if err != nil {
		return entities.Account{}, err
	}
	owner, err := entities.ParsePubkey(m.Owner)
	if err != nil {
		return entities.Account{}, err
	}
	lamports, err := u64FromDecimal(m.Lamports)
	if err != nil {
		return entities.Account{}, err
	}
	return entities.Account{
		Address:  address,
		Owner:    owner,
		Lamports: lamports,
		Data:     append([]byte(nil), m.Data...),
		Version:  uint64(m.Version),
	}, nil
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "program_idempotency"
}

func idempotencyModelFromPort(record ports.IdempotencyRecord) idempotencyModel {
	return idempotencyModel{
		Key:             record.Key,
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
}

func (m idempotencyModel) toPort() ports.IdempotencyRecord {
	return ports.IdempotencyRecord{
		Key:             m.Key,
		RequestHash:     m.RequestHash,
		ResponsePayload: append([]byte(nil), m.ResponsePayload...),
		ExpiresAt:       m.ExpiresAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "program_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
