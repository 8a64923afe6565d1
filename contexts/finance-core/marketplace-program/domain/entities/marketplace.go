package entities

// MarketplaceSize is the serialized length of a Marketplace record.
const MarketplaceSize = recordHeaderSize + PubkeySize + 1 + 8 + 8 + 8 + 8

// MaxFeePercentage bounds Marketplace.FeePercentage.
const MaxFeePercentage = 100

// Marketplace holds fee configuration and aggregate platform revenue.
// TotalRevenue is gross sales; PlatformFeeRevenue is the platform's share of
// it, and PlatformFeeCollected is how much of that share the authority has
// already collected.
type Marketplace struct {
	IsInitialized        bool
	Authority            Pubkey
	FeePercentage        uint8
	TotalRevenue         uint64
	TotalModulesSold     uint64
	PlatformFeeRevenue   uint64
	PlatformFeeCollected uint64
}

// UncollectedFees is the platform fee share not yet collected.
func (m Marketplace) UncollectedFees() uint64 {
	if m.PlatformFeeRevenue <= m.PlatformFeeCollected {
		return 0
	}
	return m.PlatformFeeRevenue - m.PlatformFeeCollected
}

func (m Marketplace) MarshalBinary() ([]byte, error) {
	w := newRecordWriter(KindMarketplace, m.IsInitialized, MarketplaceSize)
	w.pubkey(m.Authority)
	w.u8(m.FeePercentage)
	w.u64(m.TotalRevenue)
	w.u64(m.TotalModulesSold)
	w.u64(m.PlatformFeeRevenue)
	w.u64(m.PlatformFeeCollected)
	return w.bytes(), nil
}

func UnmarshalMarketplace(data []byte) (Marketplace, error) {
	r, initialized, empty, err := openRecord(data, KindMarketplace)
	if err != nil || empty {
		return Marketplace{}, err
	}
	m := Marketplace{
		IsInitialized:        initialized,
		Authority:            r.pubkey(),
		FeePercentage:        r.u8(),
		TotalRevenue:         r.u64(),
		TotalModulesSold:     r.u64(),
		PlatformFeeRevenue:   r.u64(),
		PlatformFeeCollected: r.u64(),
	}
	if r.err != nil {
		return Marketplace{}, r.err
	}
	return m, nil
}
