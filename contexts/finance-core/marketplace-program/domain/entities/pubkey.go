package entities

import (
	"fmt"

	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"

	"github.com/mr-tron/base58"
)

const PubkeySize = 32

// Pubkey identifies an account, a signer, or a program namespace.
type Pubkey [PubkeySize]byte

var (
	// SystemProgramID owns every account that has not been assigned to a program.
	SystemProgramID = Pubkey{}
	RentSysvarID    = MustParsePubkey("SysvarRent111111111111111111111111111111111")
)

func ParsePubkey(value string) (Pubkey, error) {
	raw, err := base58.Decode(value)
	if err != nil {
		return Pubkey{}, fmt.Errorf("%w: %q: %v", domainerrors.ErrInvalidPubkey, value, err)
	}
	if len(raw) != PubkeySize {
		return Pubkey{}, fmt.Errorf("%w: %q decodes to %d bytes, want %d", domainerrors.ErrInvalidPubkey, value, len(raw), PubkeySize)
	}
	var key Pubkey
	copy(key[:], raw)
	return key, nil
}

func MustParsePubkey(value string) Pubkey {
	key, err := ParsePubkey(value)
	if err != nil {
		panic(err)
	}
	return key
}

func PubkeyFromBytes(raw []byte) (Pubkey, error) {
	if len(raw) != PubkeySize {
		return Pubkey{}, fmt.Errorf("%w: %d bytes, want %d", domainerrors.ErrInvalidPubkey, len(raw), PubkeySize)
	}
	var key Pubkey
	copy(key[:], raw)
	return key, nil
}

func (k Pubkey) String() string {
	return base58.Encode(k[:])
}

func (k Pubkey) IsZero() bool {
	return k == Pubkey{}
}

func (k Pubkey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Pubkey) UnmarshalText(text []byte) error {
	key, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*k = key
	return nil
}
