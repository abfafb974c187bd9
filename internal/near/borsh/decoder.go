package borsh

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
)

// Decoder reads Borsh-encoded data from a byte slice. Every read is
// bounds-checked; errors carry the byte offset at which decoding failed.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder creates a decoder over b. The slice is not copied.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{data: b}
}

// Offset returns the current read position.
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// Done returns an error unless the input has been fully consumed. Call after
// decoding a top-level value to reject trailing garbage.
func (d *Decoder) Done() error {
	if d.off != len(d.data) {
		return errors.Errorf("borsh: %d trailing bytes at offset %d", len(d.data)-d.off, d.off)
	}
	return nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, errors.Errorf("borsh: unexpected end of input at offset %d (need %d bytes, have %d)", d.off, n, d.Remaining())
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

// U8 reads a single byte.
func (d *Decoder) U8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (d *Decoder) U16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (d *Decoder) U64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U128 reads a 16-byte little-endian unsigned integer.
func (d *Decoder) U128() (*big.Int, error) {
	b, err := d.take(16)
	if err != nil {
		return nil, err
	}

	var word [16]byte
	for i := range word {
		word[i] = b[15-i]
	}

	return new(big.Int).SetBytes(word[:]), nil
}

// Bool reads a single 0/1 byte.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("borsh: invalid bool byte 0x%02x at offset %d", v, d.off-1)
	}
}

// FixedBytes reads exactly n raw bytes. The returned slice is a copy.
func (d *Decoder) FixedBytes(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Bytes32 reads a u32 length prefix followed by that many raw bytes.
func (d *Decoder) Bytes32() ([]byte, error) {
	n, err := d.U32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(d.Remaining()) {
		return nil, errors.Errorf("borsh: byte vector length %d exceeds remaining input %d at offset %d", n, d.Remaining(), d.off)
	}
	return d.FixedBytes(int(n))
}

// String reads a u32 length-prefixed UTF-8 string.
func (d *Decoder) String() (string, error) {
	b, err := d.Bytes32()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OptionTag reads the presence byte of an Option.
func (d *Decoder) OptionTag() (bool, error) {
	return d.Bool()
}

// VecLen reads the u32 element count of a vector and bounds it against the
// remaining input (each element occupies at least one byte).
func (d *Decoder) VecLen() (int, error) {
	n, err := d.U32()
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(d.Remaining()) {
		return 0, errors.Errorf("borsh: vector length %d exceeds remaining input %d at offset %d", n, d.Remaining(), d.off)
	}
	return int(n), nil
}
