package entities

// RevenueAccountSize is the serialized length of a RevenueAccount record.
const RevenueAccountSize = recordHeaderSize + 3*PubkeySize + 8 + 8 + 8

// RevenueAccount is a collector's statement for one revenue source (a
// Marketplace or a Module). The collection watermark lives on the source
// record, so a second statement for the same source sees nothing left.
// Collected is the total collected through this statement.
type RevenueAccount struct {
	IsInitialized bool
	Owner         Pubkey
	Marketplace   Pubkey
	Source        Pubkey
	Collected     uint64
	Collections   uint64
	LastCollected uint64
}

func (a RevenueAccount) MarshalBinary() ([]byte, error) {
	w := newRecordWriter(KindRevenueAccount, a.IsInitialized, RevenueAccountSize)
	w.pubkey(a.Owner)
	w.pubkey(a.Marketplace)
	w.pubkey(a.Source)
	w.u64(a.Collected)
	w.u64(a.Collections)
	w.u64(a.LastCollected)
	return w.bytes(), nil
}

func UnmarshalRevenueAccount(data []byte) (RevenueAccount, error) {
	r, initialized, empty, err := openRecord(data, KindRevenueAccount)
	if err != nil || empty {
		return RevenueAccount{}, err
	}
	a := RevenueAccount{
		IsInitialized: initialized,
		Owner:         r.pubkey(),
		Marketplace:   r.pubkey(),
		Source:        r.pubkey(),
		Collected:     r.u64(),
		Collections:   r.u64(),
		LastCollected: r.u64(),
	}
	if r.err != nil {
		return RevenueAccount{}, r.err
	}
	return a, nil
}
