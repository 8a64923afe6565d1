package postgresadapter

import (
	"fmt"
	"math/big"

	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"

	"github.com/shopspring/decimal"
)

// u64 columns are stored as NUMERIC(20,0); BIGINT cannot hold the upper half.
func decimalFromU64(value uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), 0)
}

func u64FromDecimal(value decimal.Decimal) (uint64, error) {
	n := value.BigInt()
	if n.Sign() < 0 || !n.IsUint64() || !value.Equal(decimal.NewFromBigInt(n, 0)) {
		return 0, fmt.Errorf("%w: stored amount %s is not a u64", domainerrors.ErrInvalidAccountData, value)
	}
	return n.Uint64(), nil
}
