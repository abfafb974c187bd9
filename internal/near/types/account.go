// Package types defines the primitive and wire-level types of the NEAR
// protocol: account identifiers, token and gas amounts, hashes, keys and
// signatures, actions and the transaction envelope, together with their
// canonical binary and textual encodings.
package types

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/borsh"
)

// AccountID is a validated NEAR account identifier. The zero value is
// invalid; construct via ParseAccountID. Validation happens exactly once at
// construction, nothing downstream re-validates.
type AccountID struct {
	id string
}

// MaxAccountIDLen is the protocol limit on account identifier length.
const MaxAccountIDLen = 64

// ParseAccountID validates s against the protocol's naming rules and returns
// it as an AccountID. Accepted forms: implicit accounts (64 hex chars),
// EVM implicit accounts ("0x" + 40 hex chars) and named accounts (lowercase
// alphanumerics with '_', '-' and '.' separators).
func ParseAccountID(s string) (AccountID, error) {
	if err := validateAccountID(s); err != nil {
		return AccountID{}, err
	}
	return AccountID{id: s}, nil
}

// MustParseAccountID is ParseAccountID that panics on invalid input. For
// statically known identifiers in tests and wiring code.
func MustParseAccountID(s string) AccountID {
	a, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return a
}

func validateAccountID(s string) error {
	if s == "" {
		return errors.New("account id is empty")
	}
	if len(s) > MaxAccountIDLen {
		return errors.Errorf("account id %q exceeds %d characters", s, MaxAccountIDLen)
	}

	if strings.HasPrefix(s, "0x") {
		if len(s) != 42 {
			return errors.Errorf("EVM implicit account %q must be 0x followed by 40 hex characters", s)
		}
		for _, c := range s[2:] {
			if !isHexDigit(c) {
				return errors.Errorf("account id %q contains invalid hex character %q", s, c)
			}
		}
		return nil
	}

	if len(s) == 64 && allHexDigits(s) {
		return nil
	}

	if len(s) < 2 {
		return errors.Errorf("account id %q is too short", s)
	}
	for _, c := range s {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.') {
			return errors.Errorf("account id %q contains invalid character %q", s, c)
		}
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, "..") {
		return errors.Errorf("account id %q has a malformed separator", s)
	}
	for _, part := range strings.Split(s, ".") {
		if strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") ||
			strings.HasPrefix(part, "_") || strings.HasSuffix(part, "_") {
			return errors.Errorf("account id %q has a segment starting or ending with a separator", s)
		}
	}

	return nil
}

func isHexDigit(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func allHexDigits(s string) bool {
	for _, c := range s {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func (a AccountID) String() string {
	return a.id
}

// IsZero reports whether a is the (invalid) zero value.
func (a AccountID) IsZero() bool {
	return a.id == ""
}

// IsImplicit reports whether a is an implicit account (64 hex characters
// derived from an ed25519 public key).
func (a AccountID) IsImplicit() bool {
	return len(a.id) == 64 && allHexDigits(a.id)
}

// IsEVMImplicit reports whether a is an EVM implicit account (0x-prefixed
// 20-byte address).
func (a AccountID) IsEVMImplicit() bool {
	return strings.HasPrefix(a.id, "0x") && len(a.id) == 42
}

// IsNamed reports whether a is a human-registered named account.
func (a AccountID) IsNamed() bool {
	return !a.IsImplicit() && !a.IsEVMImplicit()
}

// IsTopLevel reports whether a is a named account without a parent, such as
// "near" or "testnet".
func (a AccountID) IsTopLevel() bool {
	return a.IsNamed() && !strings.Contains(a.id, ".")
}

// IsSubAccountOf reports whether a is a direct or indirect subaccount of
// parent, e.g. "app.alice.near" is a subaccount of "alice.near".
func (a AccountID) IsSubAccountOf(parent AccountID) bool {
	if !a.IsNamed() || !parent.IsNamed() {
		return false
	}
	return strings.HasSuffix(a.id, "."+parent.id) && len(a.id) > len(parent.id)+1
}

// Parent returns the immediate parent of a named account, e.g.
// "sub.alice.near" yields "alice.near". Returns the zero AccountID when a
// has no parent.
func (a AccountID) Parent() AccountID {
	if !a.IsNamed() {
		return AccountID{}
	}
	i := strings.Index(a.id, ".")
	if i < 0 {
		return AccountID{}
	}
	return AccountID{id: a.id[i+1:]}
}

// MarshalJSON encodes the account id as a JSON string.
func (a AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.id)
}

// UnmarshalJSON decodes and validates a JSON string account id.
func (a *AccountID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseAccountID(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a AccountID) borshEncode(e *borsh.Encoder) {
	e.String(a.id)
}

func accountIDFromBorsh(d *borsh.Decoder) (AccountID, error) {
	s, err := d.String()
	if err != nil {
		return AccountID{}, err
	}
	return ParseAccountID(s)
}
