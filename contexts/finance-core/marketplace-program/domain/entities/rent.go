package entities

import (
	"encoding/binary"
	"math"
	"math/bits"

	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

// AccountStorageOverhead is charged on top of the data length of every account.
const AccountStorageOverhead = 128

const rentSysvarSize = 16

// Rent is the rent sysvar content.
type Rent struct {
	LamportsPerByteYear     uint64
	ExemptionThresholdYears uint64
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear:     3480,
		ExemptionThresholdYears: 2,
	}
}

// MinimumBalance saturates at MaxUint64 instead of wrapping.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	size := uint64(AccountStorageOverhead + dataLen)
	hi, perYear := bits.Mul64(size, r.LamportsPerByteYear)
	if hi != 0 {
		return math.MaxUint64
	}
	hi, total := bits.Mul64(perYear, r.ExemptionThresholdYears)
	if hi != 0 {
		return math.MaxUint64
	}
	return total
}

func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

func (r Rent) MarshalBinary() ([]byte, error) {
	out := make([]byte, rentSysvarSize)
	binary.LittleEndian.PutUint64(out[0:8], r.LamportsPerByteYear)
	binary.LittleEndian.PutUint64(out[8:16], r.ExemptionThresholdYears)
	return out, nil
}

func UnmarshalRent(data []byte) (Rent, error) {
	if len(data) < rentSysvarSize {
		return Rent{}, domainerrors.ErrInvalidAccountData
	}
	return Rent{
		LamportsPerByteYear:     binary.LittleEndian.Uint64(data[0:8]),
		ExemptionThresholdYears: binary.LittleEndian.Uint64(data[8:16]),
	}, nil
}
