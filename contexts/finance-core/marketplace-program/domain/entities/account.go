package entities

// Account is the host storage unit. Data holds one serialized record.
type Account struct {
	Address  Pubkey
	Owner    Pubkey
	Lamports uint64
	Data     []byte
	// Version increases on every committed write and guards concurrent commits.
	Version uint64
}

// AccountMeta is one positional account reference of an instruction.
type AccountMeta struct {
	Address    Pubkey
	IsSigner   bool
	IsWritable bool
}

// AccountInfo is an AccountMeta resolved against host storage.
type AccountInfo struct {
	Key        Pubkey
	IsSigner   bool
	IsWritable bool
	Owner      Pubkey
	Lamports   uint64
	Data       []byte
	Version    uint64
}

func NewAccountInfo(meta AccountMeta, account Account) AccountInfo {
	return AccountInfo{
		Key:        meta.Address,
		IsSigner:   meta.IsSigner,
		IsWritable: meta.IsWritable,
		Owner:      account.Owner,
		Lamports:   account.Lamports,
		Data:       append([]byte(nil), account.Data...),
		Version:    account.Version,
	}
}

// WithData returns the account write that replaces this account's record.
// The allocated space is kept when the record fits; the tail is zeroed.
func (a AccountInfo) WithData(record []byte) Account {
	data := record
	if len(record) < len(a.Data) {
		data = make([]byte, len(a.Data))
		copy(data, record)
	}
	return Account{
		Address:  a.Key,
		Owner:    a.Owner,
		Lamports: a.Lamports,
		Data:     data,
		Version:  a.Version,
	}
}
