// Package instruction defines the closed set of program instructions and
// their fixed-width wire format: one tag byte followed by the variant's
// fields in declared order, integers little-endian.
package instruction

import "fmt"

// Tag selects the instruction variant.
type Tag uint8

const (
	TagInitializeMarketplace Tag = iota
	TagListModule
	TagPurchaseModule
	TagCollectRevenue
	TagInitializeMint
	TagMintTokens
	TagBurnTokens
	TagTransferTokens
)

func (t Tag) String() string {
	switch t {
	case TagInitializeMarketplace:
		return "initialize_marketplace"
	case TagListModule:
		return "list_module"
	case TagPurchaseModule:
		return "purchase_module"
	case TagCollectRevenue:
		return "collect_revenue"
	case TagInitializeMint:
		return "initialize_mint"
	case TagMintTokens:
		return "mint_tokens"
	case TagBurnTokens:
		return "burn_tokens"
	case TagTransferTokens:
		return "transfer_tokens"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Instruction is implemented only by the variants in this package.
type Instruction interface {
	Tag() Tag
	sealed()
}

// InitializeMarketplace accounts: [authority(signer), marketplace(writable), rent sysvar].
type InitializeMarketplace struct {
	FeePercentage uint8
}

// ListModule accounts: [creator(signer), marketplace, module(writable), mint].
type ListModule struct {
	Price          uint64
	IsFreeIssuance bool
}

// PurchaseModule accounts: [buyer(signer), marketplace, module(writable),
// creator(writable), platform(writable), buyer token account(writable), mint].
type PurchaseModule struct{}

// CollectRevenue accounts: [collector(signer), marketplace,
// revenue account(writable), module (optional)].
type CollectRevenue struct{}

// InitializeMint accounts: [authority(signer), mint(writable), rent sysvar, token program].
type InitializeMint struct{}

// MintTokens accounts: [authority(signer), mint, destination(writable), token program].
type MintTokens struct {
	Amount uint64
}

// BurnTokens accounts: [owner(signer), source(writable), mint, token program].
type BurnTokens struct {
	Amount uint64
}

// TransferTokens accounts: [owner(signer), source(writable), destination(writable), token program].
type TransferTokens struct {
	Amount uint64
}

func (InitializeMarketplace) Tag() Tag { return TagInitializeMarketplace }
func (ListModule) Tag() Tag            { return TagListModule }
func (PurchaseModule) Tag() Tag        { return TagPurchaseModule }
func (CollectRevenue) Tag() Tag        { return TagCollectRevenue }
func (InitializeMint) Tag() Tag        { return TagInitializeMint }
func (MintTokens) Tag() Tag            { return TagMintTokens }
func (BurnTokens) Tag() Tag            { return TagBurnTokens }
func (TransferTokens) Tag() Tag        { return TagTransferTokens }

func (InitializeMarketplace) sealed() {}
func (ListModule) sealed()            {}
func (PurchaseModule) sealed()        {}
func (CollectRevenue) sealed()        {}
func (InitializeMint) sealed()        {}
func (MintTokens) sealed()            {}
func (BurnTokens) sealed()            {}
func (TransferTokens) sealed()        {}
