package types

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/borsh"
)

var (
	// yoctoPerNear is 10^24, the smallest indivisible unit per NEAR.
	yoctoPerNear = new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
	// yoctoPerMilliNear is 10^21.
	yoctoPerMilliNear = new(big.Int).Exp(big.NewInt(10), big.NewInt(21), nil)
	// maxU128 is 2^128 - 1, the upper bound of an on-chain balance.
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// ErrAmbiguousAmount is returned when an amount string carries no unit. A
// bare number is never accepted since "5" could mean NEAR or yocto.
var ErrAmbiguousAmount = errors.New("amount has no unit; write e.g. \"5 NEAR\", \"500 mNEAR\" or \"1 yocto\"")

// Balance is a token amount with yoctoNEAR precision (10^-24 NEAR). The zero
// value is zero NEAR. Amounts are unsigned and bounded to 128 bits, matching
// the on-chain representation.
type Balance struct {
	yocto *big.Int // nil means zero
}

// NearToken creates a Balance of n whole NEAR.
func NearToken(n uint64) Balance {
	return Balance{yocto: new(big.Int).Mul(new(big.Int).SetUint64(n), yoctoPerNear)}
}

// MilliNear creates a Balance of n milliNEAR (10^-3 NEAR).
func MilliNear(n uint64) Balance {
	return Balance{yocto: new(big.Int).Mul(new(big.Int).SetUint64(n), yoctoPerMilliNear)}
}

// YoctoNear creates a Balance of n yoctoNEAR.
func YoctoNear(n uint64) Balance {
	return Balance{yocto: new(big.Int).SetUint64(n)}
}

// BalanceFromBigInt creates a Balance from a raw yoctoNEAR value. The value
// must be non-negative and fit in 128 bits.
func BalanceFromBigInt(yocto *big.Int) (Balance, error) {
	if yocto == nil {
		return Balance{}, nil
	}
	if yocto.Sign() < 0 {
		return Balance{}, errors.New("balance must be non-negative")
	}
	if yocto.Cmp(maxU128) > 0 {
		return Balance{}, errors.New("balance exceeds u128 range")
	}
	return Balance{yocto: new(big.Int).Set(yocto)}, nil
}

// ParseBalance parses an amount with an explicit unit:
//
//	"5 NEAR", "1.5 near"        whole or decimal NEAR
//	"500 milliNEAR", "500 mNEAR" milliNEAR
//	"1000 yoctoNEAR", "1000 yocto" raw yocto
//
// A bare number yields ErrAmbiguousAmount.
func ParseBalance(s string) (Balance, error) {
	s = strings.TrimSpace(s)

	if v, ok := cutSuffixAny(s, " NEAR", " near"); ok {
		return parseDecimalNear(strings.TrimSpace(v))
	}
	if v, ok := cutSuffixAny(s, " milliNEAR", " mNEAR"); ok {
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok || n.Sign() < 0 {
			return Balance{}, errors.Errorf("invalid amount %q", s)
		}
		return BalanceFromBigInt(n.Mul(n, yoctoPerMilliNear))
	}
	if v, ok := cutSuffixAny(s, " yoctoNEAR", " yocto"); ok {
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok || n.Sign() < 0 {
			return Balance{}, errors.Errorf("invalid amount %q", s)
		}
		return BalanceFromBigInt(n)
	}

	if s != "" && strings.IndexFunc(s, func(c rune) bool {
		return !(c >= '0' && c <= '9' || c == '.')
	}) < 0 {
		return Balance{}, errors.Wrapf(ErrAmbiguousAmount, "%q", s)
	}

	return Balance{}, errors.Errorf("unrecognized amount %q", s)
}

func cutSuffixAny(s string, suffixes ...string) (string, bool) {
	for _, suffix := range suffixes {
		if v, ok := strings.CutSuffix(s, suffix); ok {
			return v, true
		}
	}
	return s, false
}

func parseDecimalNear(s string) (Balance, error) {
	intPart, fracPart, hasDot := strings.Cut(s, ".")

	whole := big.NewInt(0)
	if intPart != "" {
		var ok bool
		whole, ok = new(big.Int).SetString(intPart, 10)
		if !ok || whole.Sign() < 0 {
			return Balance{}, errors.Errorf("invalid amount %q", s)
		}
	}

	yocto := new(big.Int).Mul(whole, yoctoPerNear)

	if hasDot && fracPart != "" {
		// At most 24 fractional digits carry information.
		if len(fracPart) > 24 {
			fracPart = fracPart[:24]
		}
		frac, ok := new(big.Int).SetString(fracPart, 10)
		if !ok || frac.Sign() < 0 {
			return Balance{}, errors.Errorf("invalid amount %q", s)
		}
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(24-len(fracPart))), nil)
		yocto.Add(yocto, frac.Mul(frac, scale))
	}

	return BalanceFromBigInt(yocto)
}

func (b Balance) raw() *big.Int {
	if b.yocto == nil {
		return big.NewInt(0)
	}
	return b.yocto
}

// BigInt returns the raw yoctoNEAR value as a fresh big.Int.
func (b Balance) BigInt() *big.Int {
	return new(big.Int).Set(b.raw())
}

// IsZero reports whether b is zero.
func (b Balance) IsZero() bool {
	return b.raw().Sign() == 0
}

// Cmp compares two balances, returning -1, 0 or +1.
func (b Balance) Cmp(other Balance) int {
	return b.raw().Cmp(other.raw())
}

// Add returns b + other. Errors if the sum leaves the u128 range.
func (b Balance) Add(other Balance) (Balance, error) {
	return BalanceFromBigInt(new(big.Int).Add(b.raw(), other.raw()))
}

// Sub returns b - other. Errors if other exceeds b.
func (b Balance) Sub(other Balance) (Balance, error) {
	diff := new(big.Int).Sub(b.raw(), other.raw())
	if diff.Sign() < 0 {
		return Balance{}, errors.New("balance subtraction underflow")
	}
	return Balance{yocto: diff}, nil
}

// SaturatingSub returns b - other, clamped at zero.
func (b Balance) SaturatingSub(other Balance) Balance {
	diff := new(big.Int).Sub(b.raw(), other.raw())
	if diff.Sign() < 0 {
		return Balance{}
	}
	return Balance{yocto: diff}
}

// String formats the amount in NEAR: exact whole values as "N NEAR",
// fractional values with up to five decimals, trailing zeros trimmed.
func (b Balance) String() string {
	v := b.raw()
	if v.Sign() == 0 {
		return "0 NEAR"
	}

	whole, rem := new(big.Int).QuoRem(v, yoctoPerNear, new(big.Int))
	if rem.Sign() == 0 {
		return whole.String() + " NEAR"
	}

	frac := rem.String()
	frac = strings.Repeat("0", 24-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")
	if len(frac) > 5 {
		frac = frac[:5]
	}
	return whole.String() + "." + frac + " NEAR"
}

// MarshalJSON encodes the amount as a decimal yoctoNEAR string, matching the
// RPC schema.
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.raw().String())
}

// UnmarshalJSON decodes a decimal yoctoNEAR string or bare number.
func (b *Balance) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return errors.Errorf("invalid balance %q", s)
	}
	parsed, err := BalanceFromBigInt(v)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b Balance) borshEncode(e *borsh.Encoder) error {
	if err := e.U128(b.raw()); err != nil {
		return &EncodingError{Reason: err.Error()}
	}
	return nil
}

func balanceFromBorsh(d *borsh.Decoder) (Balance, error) {
	v, err := d.U128()
	if err != nil {
		return Balance{}, err
	}
	return Balance{yocto: v}, nil
}

// Gas measures computation on chain. Raw unit is 1 gas; convenience
// constructors exist for giga-, tera- and petagas.
type Gas uint64

const (
	gasPerGgas Gas = 1_000_000_000
	gasPerTgas Gas = 1_000_000_000_000
	gasPerPgas Gas = 1_000_000_000_000_000

	// DefaultFunctionCallGas is the default attached gas for function
	// calls, 30 Tgas.
	DefaultFunctionCallGas = 30 * gasPerTgas

	// MaxGasPerTransaction is the protocol ceiling, 1 Pgas.
	MaxGasPerTransaction = gasPerPgas
)

// Tgas creates a Gas amount of n teragas (10^12).
func Tgas(n uint64) Gas {
	return Gas(n) * gasPerTgas
}

// Ggas creates a Gas amount of n gigagas (10^9).
func Ggas(n uint64) Gas {
	return Gas(n) * gasPerGgas
}

// ParseGas parses a gas amount with an explicit unit: "30 Tgas", "5 Ggas" or
// "1000000 gas".
func ParseGas(s string) (Gas, error) {
	s = strings.TrimSpace(s)

	parse := func(v string, mult Gas) (Gas, error) {
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok || n.Sign() < 0 {
			return 0, errors.Errorf("invalid gas amount %q", s)
		}
		n.Mul(n, new(big.Int).SetUint64(uint64(mult)))
		if !n.IsUint64() {
			return 0, errors.Errorf("gas amount %q overflows", s)
		}
		return Gas(n.Uint64()), nil
	}

	if v, ok := cutSuffixAny(s, " Tgas", " tgas", " TGas"); ok {
		return parse(v, gasPerTgas)
	}
	if v, ok := cutSuffixAny(s, " Ggas", " ggas", " GGas"); ok {
		return parse(v, gasPerGgas)
	}
	if v, ok := cutSuffixAny(s, " gas"); ok {
		return parse(v, 1)
	}

	return 0, errors.Errorf("unrecognized gas amount %q (write e.g. \"30 Tgas\")", s)
}

// AsTgas returns the truncated teragas value.
func (g Gas) AsTgas() uint64 {
	return uint64(g / gasPerTgas)
}

func (g Gas) String() string {
	if g >= gasPerTgas && g%gasPerTgas == 0 {
		return new(big.Int).SetUint64(g.AsTgas()).String() + " Tgas"
	}
	return new(big.Int).SetUint64(uint64(g)).String() + " gas"
}

// MarshalJSON encodes gas as a JSON number, matching the RPC schema.
func (g Gas) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(g))
}

// UnmarshalJSON accepts both a JSON number and a decimal string.
func (g *Gas) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || !v.IsUint64() {
		return errors.Errorf("invalid gas value %q", s)
	}
	*g = Gas(v.Uint64())
	return nil
}
