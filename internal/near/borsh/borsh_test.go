package borsh_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/near/borsh"
)

func TestIntegerLayout(t *testing.T) {
	e := borsh.NewEncoder()
	e.U8(0xab)
	e.U16(0x0102)
	e.U32(0x01020304)
	e.U64(0x0102030405060708)

	assert.Equal(t, []byte{
		0xab,
		0x02, 0x01,
		0x04, 0x03, 0x02, 0x01,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}, e.Bytes())
}

func TestU128RoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).SetUint64(^uint64(0)),
		// 10^24, one NEAR in yocto
		new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil),
		// 2^128 - 1
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
	}

	for _, v := range cases {
		e := borsh.NewEncoder()
		require.NoError(t, e.U128(v))
		require.Len(t, e.Bytes(), 16)

		d := borsh.NewDecoder(e.Bytes())
		got, err := d.U128()
		require.NoError(t, err)
		assert.Zero(t, v.Cmp(got), "value %s", v)
		assert.NoError(t, d.Done())
	}
}

func TestU128RangeChecks(t *testing.T) {
	e := borsh.NewEncoder()
	assert.Error(t, e.U128(big.NewInt(-1)))
	assert.Error(t, e.U128(new(big.Int).Lsh(big.NewInt(1), 128)))
}

func TestU128LittleEndian(t *testing.T) {
	e := borsh.NewEncoder()
	require.NoError(t, e.U128(big.NewInt(0x0102)))

	want := make([]byte, 16)
	want[0] = 0x02
	want[1] = 0x01
	assert.Equal(t, want, e.Bytes())
}

func TestStringAndBytes(t *testing.T) {
	e := borsh.NewEncoder()
	e.String("bob")
	e.Bytes32([]byte{0xde, 0xad})

	assert.Equal(t, []byte{
		0x03, 0x00, 0x00, 0x00, 'b', 'o', 'b',
		0x02, 0x00, 0x00, 0x00, 0xde, 0xad,
	}, e.Bytes())

	d := borsh.NewDecoder(e.Bytes())
	s, err := d.String()
	require.NoError(t, err)
	assert.Equal(t, "bob", s)
	b, err := d.Bytes32()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, b)
	assert.NoError(t, d.Done())
}

func TestOptionTag(t *testing.T) {
	e := borsh.NewEncoder()
	e.OptionTag(false)
	e.OptionTag(true)
	e.U64(7)

	d := borsh.NewDecoder(e.Bytes())
	present, err := d.OptionTag()
	require.NoError(t, err)
	assert.False(t, present)
	present, err = d.OptionTag()
	require.NoError(t, err)
	assert.True(t, present)
	v, err := d.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
}

func TestDecoderTruncatedInput(t *testing.T) {
	d := borsh.NewDecoder([]byte{0x01, 0x02})
	_, err := d.U64()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected end of input")
}

func TestDecoderRejectsOversizedLength(t *testing.T) {
	// Claims 2^31 bytes but carries none.
	d := borsh.NewDecoder([]byte{0x00, 0x00, 0x00, 0x80})
	_, err := d.Bytes32()
	require.Error(t, err)
}

func TestDecoderRejectsTrailingBytes(t *testing.T) {
	d := borsh.NewDecoder([]byte{0x01, 0x00})
	_, err := d.U8()
	require.NoError(t, err)
	assert.Error(t, d.Done())
}

func TestInvalidBool(t *testing.T) {
	d := borsh.NewDecoder([]byte{0x02})
	_, err := d.Bool()
	assert.Error(t, err)
}
