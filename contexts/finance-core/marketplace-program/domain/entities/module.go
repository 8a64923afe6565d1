package entities

const moduleFixedSize = recordHeaderSize + 3*PubkeySize + 8 + 1 + 8 + 8 + 8 + 8 + 4

// Module is one listed, purchasable item. Creator, Marketplace, Mint, Price
// and IsFreeIssuance never change after listing; only the counters move.
// CreatorRevenue is the creator's share of TotalRevenue after platform fees.
type Module struct {
	IsInitialized    bool
	Creator          Pubkey
	Marketplace      Pubkey
	Mint             Pubkey
	Price            uint64
	IsFreeIssuance   bool
	URI              string
	TotalSales       uint64
	TotalRevenue     uint64
	CreatorRevenue   uint64
	CreatorCollected uint64
}

// UncollectedRevenue is the creator share not yet collected.
func (m Module) UncollectedRevenue() uint64 {
	if m.CreatorRevenue <= m.CreatorCollected {
		return 0
	}
	return m.CreatorRevenue - m.CreatorCollected
}

func (m Module) MarshalBinary() ([]byte, error) {
	w := newRecordWriter(KindModule, m.IsInitialized, moduleFixedSize+len(m.URI))
	w.pubkey(m.Creator)
	w.pubkey(m.Marketplace)
	w.pubkey(m.Mint)
	w.u64(m.Price)
	w.boolean(m.IsFreeIssuance)
	w.u64(m.TotalSales)
	w.u64(m.TotalRevenue)
	w.u64(m.CreatorRevenue)
	w.u64(m.CreatorCollected)
	w.str(m.URI)
	return w.bytes(), nil
}

func UnmarshalModule(data []byte) (Module, error) {
	r, initialized, empty, err := openRecord(data, KindModule)
	if err != nil || empty {
		return Module{}, err
	}
	m := Module{IsInitialized: initialized}
	m.Creator = r.pubkey()
	m.Marketplace = r.pubkey()
	m.Mint = r.pubkey()
	m.Price = r.u64()
	m.IsFreeIssuance = r.boolean()
	m.TotalSales = r.u64()
	m.TotalRevenue = r.u64()
	m.CreatorRevenue = r.u64()
	m.CreatorCollected = r.u64()
	m.URI = r.str()
	if r.err != nil {
		return Module{}, r.err
	}
	return m, nil
}
