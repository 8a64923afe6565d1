package entities

import (
	"errors"
	"math"
	"testing"

	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

func testKey(seed byte) Pubkey {
	var k Pubkey
	for i := range k {
		k[i] = seed
	}
	return k
}

func TestMarketplaceRecordRoundTrip(t *testing.T) {
	want := Marketplace{
		IsInitialized:    true,
		Authority:        testKey(1),
		FeePercentage:    10,
		TotalRevenue:     1000,
		TotalModulesSold: 1,

		PlatformFeeRevenue:   100,
		PlatformFeeCollected: 40,
	}
	data, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal marketplace: %v", err)
	}
	if len(data) != MarketplaceSize {
		t.Fatalf("expected %d bytes, got %d", MarketplaceSize, len(data))
	}
	got, err := UnmarshalMarketplace(data)
	if err != nil {
		t.Fatalf("unmarshal marketplace: %v", err)
	}
	if got != want {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestModuleRecordKeepsURIAndCounters(t *testing.T) {
	want := Module{
		IsInitialized:  true,
		Creator:        testKey(2),
		Marketplace:    testKey(3),
		Mint:           testKey(4),
		Price:          math.MaxUint64,
		IsFreeIssuance: true,
		URI:            "ipfs://module",
		TotalSales:     5,
		TotalRevenue:   6,

		CreatorRevenue:   5,
		CreatorCollected: 2,
	}
	data, _ := want.MarshalBinary()
	got, err := UnmarshalModule(data)
	if err != nil {
		t.Fatalf("unmarshal module: %v", err)
	}
	if got != want {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestZeroedAccountDecodesAsUninitialized(t *testing.T) {
	got, err := UnmarshalRevenueAccount(make([]byte, RevenueAccountSize))
	if err != nil {
		t.Fatalf("unmarshal zeroed: %v", err)
	}
	if got.IsInitialized {
		t.Fatalf("expected uninitialized record")
	}
	mint, err := UnmarshalMint(nil)
	if err != nil || mint.IsInitialized {
		t.Fatalf("expected empty mint record, got %#v err=%v", mint, err)
	}
}

func TestRecordKindMismatchIsRejected(t *testing.T) {
	data, _ := Mint{IsInitialized: true, Authority: testKey(9), Decimals: 9}.MarshalBinary()
	if _, err := UnmarshalMarketplace(data); !errors.Is(err, domainerrors.ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData, got %v", err)
	}
}

func TestTruncatedRecordIsRejected(t *testing.T) {
	data, _ := Marketplace{IsInitialized: true, Authority: testKey(1)}.MarshalBinary()
	if _, err := UnmarshalMarketplace(data[:MarketplaceSize-1]); !errors.Is(err, domainerrors.ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData, got %v", err)
	}
}

func TestUncollectedRevenueTracksSourceWatermark(t *testing.T) {
	marketplace := Marketplace{PlatformFeeRevenue: 300, PlatformFeeCollected: 100}
	if got := marketplace.UncollectedFees(); got != 200 {
		t.Fatalf("expected 200 uncollected fees, got %d", got)
	}
	marketplace.PlatformFeeCollected = marketplace.PlatformFeeRevenue
	if got := marketplace.UncollectedFees(); got != 0 {
		t.Fatalf("expected no uncollected fees, got %d", got)
	}

	module := Module{CreatorRevenue: 1800, CreatorCollected: 900}
	if got := module.UncollectedRevenue(); got != 900 {
		t.Fatalf("expected 900 uncollected, got %d", got)
	}
	module.CreatorCollected = 2000
	if got := module.UncollectedRevenue(); got != 0 {
		t.Fatalf("expected watermark past revenue to yield 0, got %d", got)
	}
}

func TestRentMinimumBalance(t *testing.T) {
	rent := DefaultRent()
	if got := rent.MinimumBalance(MarketplaceSize); got != (AccountStorageOverhead+MarketplaceSize)*3480*2 {
		t.Fatalf("unexpected minimum balance %d", got)
	}
	if !rent.IsExempt(rent.MinimumBalance(10), 10) {
		t.Fatalf("expected exact minimum to be exempt")
	}
	if rent.IsExempt(rent.MinimumBalance(10)-1, 10) {
		t.Fatalf("expected one lamport short to fail")
	}
	huge := Rent{LamportsPerByteYear: math.MaxUint64, ExemptionThresholdYears: 2}
	if got := huge.MinimumBalance(1); got != math.MaxUint64 {
		t.Fatalf("expected saturation, got %d", got)
	}

	data, _ := rent.MarshalBinary()
	decoded, err := UnmarshalRent(data)
	if err != nil || decoded != rent {
		t.Fatalf("unexpected rent decode %#v err=%v", decoded, err)
	}
}

func TestPubkeyParsing(t *testing.T) {
	key := testKey(7)
	parsed, err := ParsePubkey(key.String())
	if err != nil || parsed != key {
		t.Fatalf("expected round trip, got %s err=%v", parsed, err)
	}
	if _, err := ParsePubkey("not-base58-0OIl"); !errors.Is(err, domainerrors.ErrInvalidPubkey) {
		t.Fatalf("expected ErrInvalidPubkey, got %v", err)
	}
	if _, err := ParsePubkey("1111"); !errors.Is(err, domainerrors.ErrInvalidPubkey) {
		t.Fatalf("expected ErrInvalidPubkey for short key, got %v", err)
	}
}

func TestWithDataKeepsAllocatedSpace(t *testing.T) {
	info := AccountInfo{Key: testKey(1), Owner: testKey(2), Lamports: 5, Data: make([]byte, 100), Version: 3}
	out := info.WithData([]byte{1, 2, 3})
	if len(out.Data) != 100 || out.Data[2] != 3 || out.Data[3] != 0 {
		t.Fatalf("unexpected data layout: len=%d", len(out.Data))
	}
	if out.Version != 3 || out.Owner != testKey(2) {
		t.Fatalf("expected version and owner to carry over: %#v", out)
	}
}
