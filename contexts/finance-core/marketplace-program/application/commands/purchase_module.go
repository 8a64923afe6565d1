package commands

import (
	"context"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
	"metamarket/contexts/finance-core/marketplace-program/ports"
)

const modulePurchasedEventType = "module.purchased"

// PurchaseModuleUseCase settles one purchase through the ledger and records it.
// Accounts: [buyer (signer), marketplace, module, creator, platform,
// buyer token account, mint].
type PurchaseModuleUseCase struct {
	Ledger ports.LedgerService
	Logger *slog.Logger
}

// Execute runs the purchase in this order:
// 1) authorization and record validation
// 2) post-state computation with checked arithmetic
// 3) ledger settlement of both payment legs
// 4) record writes handed back for the atomic commit.
func (u PurchaseModuleUseCase) Execute(
	ctx context.Context,
	inv Invocation,
	_ instruction.PurchaseModule,
) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 7, "purchase_module"); err != nil {
		return Result{}, err
	}
	buyer := inv.Accounts[0]
	marketplaceAccount := inv.Accounts[1]
	moduleAccount := inv.Accounts[2]
	creatorAccount := inv.Accounts[3]
	platformAccount := inv.Accounts[4]
	buyerTokenAccount := inv.Accounts[5]
	mintAccount := inv.Accounts[6]

	if err := services.RequireSigner(buyer, "buyer"); err != nil {
		return Result{}, err
	}
	marketplace, err := loadActiveMarketplace(inv, marketplaceAccount)
	if err != nil {
		return Result{}, err
	}
	module, err := loadListedModule(inv, moduleAccount)
	if err != nil {
		return Result{}, err
	}
	if err := services.RequireMatch(marketplaceAccount.Key, module.Marketplace, "module marketplace"); err != nil {
		return Result{}, err
	}
	if err := services.RequireMatch(creatorAccount.Key, module.Creator, "creator"); err != nil {
		return Result{}, err
	}
	if err := services.RequireMatch(platformAccount.Key, marketplace.Authority, "platform"); err != nil {
		return Result{}, err
	}
	if err := services.RequireMatch(mintAccount.Key, module.Mint, "mint"); err != nil {
		return Result{}, err
	}

	outcome, err := services.ApplyPurchase(marketplace, module)
	if err != nil {
		return Result{}, err
	}

	settlement := ports.Settlement{
		Authority: buyer.Key,
		Source:    buyerTokenAccount.Key,
		Mint:      mintAccount.Key,
	}
	if outcome.Split.CreatorAmount > 0 {
		settlement.Legs = append(settlement.Legs, ports.TransferLeg{To: creatorAccount.Key, Amount: outcome.Split.CreatorAmount})
	}
	if outcome.Split.PlatformFee > 0 {
		settlement.Legs = append(settlement.Legs, ports.TransferLeg{To: platformAccount.Key, Amount: outcome.Split.PlatformFee})
	}
	if len(settlement.Legs) > 0 {
		if err := u.Ledger.Settle(ctx, settlement); err != nil {
			logger.Warn("purchase settlement rejected",
				"event", "marketplace_program_purchase_settlement_rejected",
				"module", application.ModuleName,
				"layer", "application",
				"listing", moduleAccount.Key.String(),
				"buyer", buyer.Key.String(),
				"price", module.Price,
				"error", err.Error(),
			)
			return Result{}, err
		}
	}

	moduleWrite, err := writeRecord(moduleAccount, outcome.Module)
	if err != nil {
		return Result{}, err
	}
	marketplaceWrite, err := writeRecord(marketplaceAccount, outcome.Marketplace)
	if err != nil {
		return Result{}, err
	}

	logger.Info("module purchased",
		"event", "marketplace_program_module_purchased",
		"module", application.ModuleName,
		"layer", "application",
		"marketplace", marketplaceAccount.Key.String(),
		"listing", moduleAccount.Key.String(),
		"buyer", buyer.Key.String(),
		"price", outcome.Split.Price,
		"platform_fee", outcome.Split.PlatformFee,
		"creator_amount", outcome.Split.CreatorAmount,
	)

	return Result{
		Writes: []entities.Account{moduleWrite, marketplaceWrite},
		Events: []Event{{
			Type:             modulePurchasedEventType,
			PartitionKeyPath: "module",
			PartitionKey:     moduleAccount.Key.String(),
			Data: map[string]any{
				"marketplace":        marketplaceAccount.Key.String(),
				"module":             moduleAccount.Key.String(),
				"buyer":              buyer.Key.String(),
				"creator":            creatorAccount.Key.String(),
				"price":              outcome.Split.Price,
				"platform_fee":       outcome.Split.PlatformFee,
				"creator_amount":     outcome.Split.CreatorAmount,
				"total_sales":        outcome.Module.TotalSales,
				"total_modules_sold": outcome.Marketplace.TotalModulesSold,
			},
		}},
	}, nil
}
