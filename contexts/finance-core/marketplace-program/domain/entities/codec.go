package entities

import (
	"encoding/binary"

	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
)

// RecordVersion is the layout version written as the first byte of every record.
const RecordVersion byte = 1

const recordHeaderSize = 3

// RecordKind is the second byte of every record and prevents reading one
// record type as another.
type RecordKind byte

const (
	KindMarketplace    RecordKind = 1
	KindModule         RecordKind = 2
	KindMint           RecordKind = 3
	KindRevenueAccount RecordKind = 4
)

type recordWriter struct {
	buf []byte
}

func newRecordWriter(kind RecordKind, initialized bool, size int) *recordWriter {
	w := &recordWriter{buf: make([]byte, 0, size)}
	w.u8(RecordVersion)
	w.u8(byte(kind))
	w.boolean(initialized)
	return w
}

func (w *recordWriter) u8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *recordWriter) boolean(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *recordWriter) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *recordWriter) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *recordWriter) pubkey(k Pubkey) {
	w.buf = append(w.buf, k[:]...)
}

func (w *recordWriter) str(v string) {
	w.u32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *recordWriter) bytes() []byte {
	return w.buf
}

type recordReader struct {
	data []byte
	off  int
	err  error
}

// openRecord validates the header. empty reports a never-written account,
// which decodes as the zero (uninitialized) record.
func openRecord(data []byte, kind RecordKind) (r *recordReader, initialized bool, empty bool, err error) {
	if isZeroed(data) {
		return nil, false, true, nil
	}
	if len(data) < recordHeaderSize || data[0] != RecordVersion || RecordKind(data[1]) != kind {
		return nil, false, false, domainerrors.ErrInvalidAccountData
	}
	r = &recordReader{data: data, off: recordHeaderSize}
	switch data[2] {
	case 0:
		return r, false, false, nil
	case 1:
		return r, true, false, nil
	default:
		return nil, false, false, domainerrors.ErrInvalidAccountData
	}
}

func (r *recordReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.off < n {
		r.err = domainerrors.ErrInvalidAccountData
		return nil
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out
}

func (r *recordReader) u8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *recordReader) boolean() bool {
	switch r.u8() {
	case 0:
		return false
	case 1:
		return true
	default:
		if r.err == nil {
			r.err = domainerrors.ErrInvalidAccountData
		}
		return false
	}
}

func (r *recordReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *recordReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *recordReader) pubkey() Pubkey {
	var k Pubkey
	copy(k[:], r.take(PubkeySize))
	return k
}

func (r *recordReader) str() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(len(r.data)-r.off) {
		r.err = domainerrors.ErrInvalidAccountData
		return ""
	}
	return string(r.take(int(n)))
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
