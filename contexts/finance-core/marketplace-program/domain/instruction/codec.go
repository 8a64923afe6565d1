package instruction

import (
	"encoding/binary"
	"fmt"

	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

// Decode parses exactly one instruction. Unknown tags, short or oversized
// payloads, and non-canonical booleans are rejected.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty instruction data", domainerrors.ErrMalformedInstruction)
	}
	tag := Tag(data[0])
	payload := data[1:]

	var (
		ix   Instruction
		want int
	)
	switch tag {
	case TagInitializeMarketplace:
		want = 1
		if len(payload) == want {
			ix = InitializeMarketplace{FeePercentage: payload[0]}
		}
	case TagListModule:
		want = 9
		if len(payload) == want {
			free, ok := decodeBool(payload[8])
			if !ok {
				return nil, fmt.Errorf("%w: is_free_issuance must be 0 or 1", domainerrors.ErrMalformedInstruction)
			}
			ix = ListModule{
				Price:          binary.LittleEndian.Uint64(payload[:8]),
				IsFreeIssuance: free,
			}
		}
	case TagPurchaseModule:
		want = 0
		ix = PurchaseModule{}
	case TagCollectRevenue:
		want = 0
		ix = CollectRevenue{}
	case TagInitializeMint:
		want = 0
		ix = InitializeMint{}
	case TagMintTokens, TagBurnTokens, TagTransferTokens:
		want = 8
		if len(payload) == want {
			ix = amountInstruction(tag, binary.LittleEndian.Uint64(payload))
		}
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", domainerrors.ErrMalformedInstruction, uint8(tag))
	}

	if len(payload) != want {
		return nil, fmt.Errorf("%w: %s expects %d payload bytes, got %d",
			domainerrors.ErrMalformedInstruction, tag, want, len(payload))
	}
	return ix, nil
}

// Encode is the inverse of Decode.
func Encode(ix Instruction) []byte {
	out := []byte{byte(ix.Tag())}
	switch v := ix.(type) {
	case InitializeMarketplace:
		out = append(out, v.FeePercentage)
	case ListModule:
		out = binary.LittleEndian.AppendUint64(out, v.Price)
		out = append(out, encodeBool(v.IsFreeIssuance))
	case PurchaseModule, CollectRevenue, InitializeMint:
	case MintTokens:
		out = binary.LittleEndian.AppendUint64(out, v.Amount)
	case BurnTokens:
		out = binary.LittleEndian.AppendUint64(out, v.Amount)
	case TransferTokens:
		out = binary.LittleEndian.AppendUint64(out, v.Amount)
	}
	return out
}

func amountInstruction(tag Tag, amount uint64) Instruction {
	switch tag {
	case TagMintTokens:
		return MintTokens{Amount: amount}
	case TagBurnTokens:
		return BurnTokens{Amount: amount}
	default:
		return TransferTokens{Amount: amount}
	}
}

func decodeBool(b byte) (bool, bool) {
	switch b {
	case 0:
		return false, true
	case 1:
		return true, true
	default:
		return false, false
	}
}

func encodeBool(v bool) byte {
	if v {
		return 1
	}
	return 0
}
