// Package borsh implements the subset of the Borsh binary format used by the
// NEAR wire protocol: fixed-width little-endian integers, u32 length-prefixed
// strings and byte vectors, single-byte option tags and enum discriminants.
// Encoding is fully deterministic; there is no reflection and no map support.
package borsh

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
)

// Encoder accumulates Borsh-encoded output in an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with a small preallocated buffer.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Bytes returns the encoded output accumulated so far.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// U8 writes a single byte.
func (e *Encoder) U8(v uint8) {
	e.buf = append(e.buf, v)
}

// U16 writes a little-endian uint16.
func (e *Encoder) U16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

// U32 writes a little-endian uint32.
func (e *Encoder) U32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// U64 writes a little-endian uint64.
func (e *Encoder) U64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// U128 writes a 16-byte little-endian unsigned integer. The value must be
// non-negative and fit in 128 bits.
func (e *Encoder) U128(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return errors.New("u128 value must be non-negative")
	}
	if v.BitLen() > 128 {
		return errors.New("value exceeds u128 range")
	}

	var word [16]byte
	v.FillBytes(word[:]) // big-endian
	for i, j := 0, 15; i < j; i, j = i+1, j-1 {
		word[i], word[j] = word[j], word[i]
	}
	e.buf = append(e.buf, word[:]...)

	return nil
}

// Bool writes a single 0/1 byte.
func (e *Encoder) Bool(v bool) {
	if v {
		e.U8(1)
	} else {
		e.U8(0)
	}
}

// FixedBytes writes raw bytes without a length prefix. Used for hashes,
// public keys and signatures whose length is implied by a preceding tag.
func (e *Encoder) FixedBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// Bytes32 writes a u32 length prefix followed by the raw bytes.
func (e *Encoder) Bytes32(b []byte) {
	e.U32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

// String writes a UTF-8 string with a u32 length prefix.
func (e *Encoder) String(s string) {
	e.U32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

// OptionTag writes the presence byte of an Option. The caller writes the
// payload after a true tag.
func (e *Encoder) OptionTag(present bool) {
	e.Bool(present)
}

// VecLen writes the u32 element count of a vector. The caller writes each
// element afterwards.
func (e *Encoder) VecLen(n int) {
	e.U32(uint32(n))
}
