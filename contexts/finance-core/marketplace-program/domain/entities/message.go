package entities

import "encoding/binary"

// SigningMessage is the canonical byte string a signer authorizes: program
// id, the positional account metas, then the instruction data.
func SigningMessage(programID Pubkey, accounts []AccountMeta, data []byte) []byte {
	out := make([]byte, 0, PubkeySize+2+len(accounts)*(PubkeySize+1)+4+len(data))
	out = append(out, programID[:]...)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(accounts)))
	for _, meta := range accounts {
		out = append(out, meta.Address[:]...)
		var flags byte
		if meta.IsSigner {
			flags |= 1
		}
		if meta.IsWritable {
			flags |= 2
		}
		out = append(out, flags)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	return append(out, data...)
}
