package entities

// MintSize is the serialized length of a Mint record.
const MintSize = recordHeaderSize + PubkeySize + 1

// SettlementDecimals is the fixed precision of the settlement token.
const SettlementDecimals uint8 = 9

// Mint is the program-side record of the settlement currency and its issuer.
type Mint struct {
	IsInitialized bool
	Authority     Pubkey
	Decimals      uint8
}

func (m Mint) MarshalBinary() ([]byte, error) {
	w := newRecordWriter(KindMint, m.IsInitialized, MintSize)
	w.pubkey(m.Authority)
	w.u8(m.Decimals)
	return w.bytes(), nil
}

func UnmarshalMint(data []byte) (Mint, error) {
	r, initialized, empty, err := openRecord(data, KindMint)
	if err != nil || empty {
		return Mint{}, err
	}
	m := Mint{
		IsInitialized: initialized,
		Authority:     r.pubkey(),
		Decimals:      r.u8(),
	}
	if r.err != nil {
		return Mint{}, r.err
	}
	return m, nil
}
