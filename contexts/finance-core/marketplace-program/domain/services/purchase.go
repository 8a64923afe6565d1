package services

import (
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
)

// PurchaseOutcome is the fully computed post-state of one purchase. It is
// produced before any funds move so an overflow aborts with nothing changed.
type PurchaseOutcome struct {
	Split       FeeSplit
	Marketplace entities.Marketplace
	Module      entities.Module
}

func ApplyPurchase(marketplace entities.Marketplace, module entities.Module) (PurchaseOutcome, error) {
	split, err := SplitPrice(module.Price, marketplace.FeePercentage)
	if err != nil {
		return PurchaseOutcome{}, err
	}

	nextModule := module
	if nextModule.TotalSales, err = CheckedAdd(module.TotalSales, 1); err != nil {
		return PurchaseOutcome{}, err
	}
	if nextModule.TotalRevenue, err = CheckedAdd(module.TotalRevenue, module.Price); err != nil {
		return PurchaseOutcome{}, err
	}
	if nextModule.CreatorRevenue, err = CheckedAdd(module.CreatorRevenue, split.CreatorAmount); err != nil {
		return PurchaseOutcome{}, err
	}

	nextMarketplace := marketplace
	if nextMarketplace.TotalRevenue, err = CheckedAdd(marketplace.TotalRevenue, module.Price); err != nil {
		return PurchaseOutcome{}, err
	}
	if nextMarketplace.TotalModulesSold, err = CheckedAdd(marketplace.TotalModulesSold, 1); err != nil {
		return PurchaseOutcome{}, err
	}
	if nextMarketplace.PlatformFeeRevenue, err = CheckedAdd(marketplace.PlatformFeeRevenue, split.PlatformFee); err != nil {
		return PurchaseOutcome{}, err
	}

	return PurchaseOutcome{
		Split:       split,
		Marketplace: nextMarketplace,
		Module:      nextModule,
	}, nil
}
