package queries_test

import (
	"context"
	"errors"
	"testing"

	"metamarket/contexts/finance-core/marketplace-program/adapters/memory"
	"metamarket/contexts/finance-core/marketplace-program/application/queries"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

func TestRecordQueries(t *testing.T) {
	programID := entities.Pubkey{200}
	marketplaceKey, mintKey, foreignKey, emptyKey := entities.Pubkey{1}, entities.Pubkey{2}, entities.Pubkey{3}, entities.Pubkey{4}

	marketplaceData, _ := entities.Marketplace{IsInitialized: true, Authority: entities.Pubkey{9}, FeePercentage: 7}.MarshalBinary()
	mintData, _ := entities.Mint{IsInitialized: true, Authority: entities.Pubkey{9}, Decimals: 9}.MarshalBinary()
	store := memory.NewStore([]entities.Account{
		{Address: marketplaceKey, Owner: programID, Data: marketplaceData},
		{Address: mintKey, Owner: programID, Data: mintData},
		{Address: foreignKey, Owner: entities.Pubkey{77}, Data: marketplaceData},
		{Address: emptyKey, Owner: programID, Data: make([]byte, entities.MarketplaceSize)},
	}, nil)
	ctx := context.Background()

	getMarketplace := queries.GetMarketplaceUseCase{ProgramID: programID, Accounts: store}
	marketplace, err := getMarketplace.Execute(ctx, queries.GetRecordQuery{Address: marketplaceKey})
	if err != nil {
		t.Fatalf("get marketplace: %v", err)
	}
	if marketplace.FeePercentage != 7 {
		t.Fatalf("unexpected marketplace %#v", marketplace)
	}

	for name, address := range map[string]entities.Pubkey{
		"foreign owner": foreignKey,
		"uninitialized": emptyKey,
		"missing":       {5},
	} {
		if _, err := getMarketplace.Execute(ctx, queries.GetRecordQuery{Address: address}); !errors.Is(err, domainerrors.ErrAccountNotFound) {
			t.Fatalf("%s: expected ErrAccountNotFound, got %v", name, err)
		}
	}

	mint, err := queries.GetMintUseCase{ProgramID: programID, Accounts: store}.Execute(ctx, queries.GetRecordQuery{Address: mintKey})
	if err != nil || mint.Decimals != 9 {
		t.Fatalf("unexpected mint %#v err=%v", mint, err)
	}
	if _, err := (queries.GetModuleUseCase{ProgramID: programID, Accounts: store}).Execute(ctx, queries.GetRecordQuery{Address: mintKey}); err == nil {
		t.Fatalf("expected reading a mint as a module to fail")
	}
}

func TestGetBalance(t *testing.T) {
	ledger := memory.NewLedger()
	ledger.OpenAccount(entities.Pubkey{1}, entities.Pubkey{2}, entities.Pubkey{3}, 250)

	balance, err := queries.GetBalanceUseCase{Ledger: ledger}.Execute(context.Background(), queries.GetBalanceQuery{Account: entities.Pubkey{1}})
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.Amount != 250 || balance.Owner != (entities.Pubkey{2}) {
		t.Fatalf("unexpected balance %#v", balance)
	}
	if _, err := (queries.GetBalanceUseCase{Ledger: ledger}).Execute(context.Background(), queries.GetBalanceQuery{Account: entities.Pubkey{9}}); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
