package commands

import (
	"context"
	"fmt"
	"log/slog"

	application "metamarket/contexts/finance-core/marketplace-program/application"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	"metamarket/contexts/finance-core/marketplace-program/domain/services"
)

const revenueCollectedEventType = "revenue.collected"

// CollectRevenueUseCase collects a source's uncollected share and records it
// on the collector's revenue account. The watermark is kept on the source
// record itself: the marketplace for platform fees, the module for the
// creator share.
//
// Accounts: [collector (signer), marketplace, revenue account, module?].
// Without a module the collector must be the marketplace authority and
// collects platform fees; with one the collector must be its creator.
type CollectRevenueUseCase struct {
	Logger *slog.Logger
}

func (u CollectRevenueUseCase) Execute(
	_ context.Context,
	inv Invocation,
	_ instruction.CollectRevenue,
) (Result, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := services.RequireAccounts(inv.Accounts, 3, "collect_revenue"); err != nil {
		return Result{}, err
	}
	collector, marketplaceAccount, revenueAccount := inv.Accounts[0], inv.Accounts[1], inv.Accounts[2]

	if err := services.RequireSigner(collector, "collector"); err != nil {
		return Result{}, err
	}
	marketplace, err := loadActiveMarketplace(inv, marketplaceAccount)
	if err != nil {
		return Result{}, err
	}

	var (
		source      = marketplaceAccount.Key
		amount      uint64
		watermark   uint64
		sourceWrite func() (entities.Account, error)
	)
	if len(inv.Accounts) > 3 {
		moduleAccount := inv.Accounts[3]
		module, err := loadListedModule(inv, moduleAccount)
		if err != nil {
			return Result{}, err
		}
		if err := services.RequireMatch(marketplaceAccount.Key, module.Marketplace, "module marketplace"); err != nil {
			return Result{}, err
		}
		if err := services.RequireMatch(collector.Key, module.Creator, "collector"); err != nil {
			return Result{}, err
		}
		source = moduleAccount.Key
		amount = module.UncollectedRevenue()
		watermark = module.CreatorRevenue
		module.CreatorCollected = module.CreatorRevenue
		sourceWrite = func() (entities.Account, error) { return writeRecord(moduleAccount, module) }
	} else {
		if err := services.RequireMatch(collector.Key, marketplace.Authority, "collector"); err != nil {
			return Result{}, err
		}
		amount = marketplace.UncollectedFees()
		watermark = marketplace.PlatformFeeRevenue
		marketplace.PlatformFeeCollected = marketplace.PlatformFeeRevenue
		sourceWrite = func() (entities.Account, error) { return writeRecord(marketplaceAccount, marketplace) }
	}

	if err := services.RequireOwnedBy(revenueAccount, inv.ProgramID, "revenue account"); err != nil {
		return Result{}, err
	}
	revenue, err := entities.UnmarshalRevenueAccount(revenueAccount.Data)
	if err != nil {
		return Result{}, fmt.Errorf("revenue account %s: %w", revenueAccount.Key, err)
	}
	if revenue.IsInitialized {
		if err := services.RequireMatch(collector.Key, revenue.Owner, "revenue account owner"); err != nil {
			return Result{}, err
		}
		if err := services.RequireMatch(marketplaceAccount.Key, revenue.Marketplace, "revenue account marketplace"); err != nil {
			return Result{}, err
		}
		if err := services.RequireMatch(source, revenue.Source, "revenue account source"); err != nil {
			return Result{}, err
		}
	}

	if amount == 0 {
		logger.Info("revenue collection found nothing to collect",
			"event", "marketplace_program_revenue_nothing_to_collect",
			"module", application.ModuleName,
			"layer", "application",
			"revenue_account", revenueAccount.Key.String(),
			"source", source.String(),
		)
		return Result{}, nil
	}

	collected, err := services.CheckedAdd(revenue.Collected, amount)
	if err != nil {
		return Result{}, err
	}
	collections, err := services.CheckedAdd(revenue.Collections, 1)
	if err != nil {
		return Result{}, err
	}
	statement, err := writeRecord(revenueAccount, entities.RevenueAccount{
		IsInitialized: true,
		Owner:         collector.Key,
		Marketplace:   marketplaceAccount.Key,
		Source:        source,
		Collected:     collected,
		Collections:   collections,
		LastCollected: amount,
	})
	if err != nil {
		return Result{}, err
	}
	sourceAccount, err := sourceWrite()
	if err != nil {
		return Result{}, err
	}

	logger.Info("revenue collected",
		"event", "marketplace_program_revenue_collected",
		"module", application.ModuleName,
		"layer", "application",
		"revenue_account", revenueAccount.Key.String(),
		"source", source.String(),
		"collector", collector.Key.String(),
		"amount", amount,
	)

	return Result{
		Writes: []entities.Account{sourceAccount, statement},
		Events: []Event{{
			Type:             revenueCollectedEventType,
			PartitionKeyPath: "source",
			PartitionKey:     source.String(),
			Data: map[string]any{
				"marketplace":     marketplaceAccount.Key.String(),
				"source":          source.String(),
				"collector":       collector.Key.String(),
				"revenue_account": revenueAccount.Key.String(),
				"amount":          amount,
				"collected_total": watermark,
			},
		}},
	}, nil
}
