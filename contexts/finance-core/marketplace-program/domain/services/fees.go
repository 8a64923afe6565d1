package services

import (
	"math/bits"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

// FeeSplit divides one purchase price between the platform and the creator.
// PlatformFee + CreatorAmount == Price always holds.
type FeeSplit struct {
	Price         uint64
	PlatformFee   uint64
	CreatorAmount uint64
}

// SplitPrice computes floor(price * feePercentage / 100) with a 128-bit
// intermediate, so large prices cannot overflow the product.
func SplitPrice(price uint64, feePercentage uint8) (FeeSplit, error) {
	if err := ValidateFeePercentage(feePercentage); err != nil {
		return FeeSplit{}, err
	}
	hi, lo := bits.Mul64(price, uint64(feePercentage))
	fee, _ := bits.Div64(hi, lo, 100)
	return FeeSplit{
		Price:         price,
		PlatformFee:   fee,
		CreatorAmount: price - fee,
	}, nil
}

func ValidateFeePercentage(feePercentage uint8) error {
	if feePercentage > entities.MaxFeePercentage {
		return domainerrors.ErrInvalidFeePercentage
	}
	return nil
}

// ValidateListing enforces price > 0 unless the module is free issuance.
func ValidateListing(price uint64, isFreeIssuance bool) error {
	if price == 0 && !isFreeIssuance {
		return domainerrors.ErrInvalidPrice
	}
	return nil
}
