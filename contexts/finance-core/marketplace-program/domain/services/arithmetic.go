package services

import (
	"math/bits"

	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

func CheckedAdd(a uint64, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, domainerrors.ErrArithmeticOverflow
	}
	return sum, nil
}
