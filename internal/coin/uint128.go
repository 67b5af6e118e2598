// Package coin provides the Coin and Uint128 value types carried by bank
// query responses.
package coin

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// maxUint128Digits is len("340282366920938463463374607431768211455").
const maxUint128Digits = 39

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// MaxUint128 is 2^128 - 1.
var MaxUint128 = Uint128{
	v:   sdkmath.NewUintFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))),
	set: true,
}

// Errors returned when parsing or combining Uint128 values.
var (
	ErrInvalidUint128 = errors.New("not a valid uint128")
	ErrOverflow       = errors.New("exceeds uint128 range")
)

// Uint128 is an unsigned 128-bit integer encoded on the wire as a decimal string.
// The zero value is 0.
type Uint128 struct {
	v   sdkmath.Uint
	set bool
}

// NewUint128 returns a Uint128 holding n.
func NewUint128(n uint64) Uint128 {
	return Uint128{v: sdkmath.NewUint(n), set: true}
}

// ParseUint128 parses a decimal digit string. Leading zeros are accepted.
func ParseUint128(s string) (Uint128, error) {
	if !IsDigits(s) {
		return Uint128{}, fmt.Errorf("%w: %q", ErrInvalidUint128, s)
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return Uint128{}, nil
	}
	if len(trimmed) > maxUint128Digits {
		return Uint128{}, ErrOverflow
	}
	b, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return Uint128{}, fmt.Errorf("%w: %q", ErrInvalidUint128, s)
	}
	if b.BitLen() > 128 {
		return Uint128{}, ErrOverflow
	}
	return Uint128{v: sdkmath.NewUintFromBigInt(b), set: true}, nil
}

// MustParseUint128 is ParseUint128 that panics on error. Intended for constants and tests.
func MustParseUint128(s string) Uint128 {
	u, err := ParseUint128(s)
	if err != nil {
		panic(err)
	}
	return u
}

// IsDigits reports whether s is a non-empty string of ASCII decimal digits.
func IsDigits(s string) bool {
	return digitsOnly.MatchString(s)
}

func (u Uint128) value() sdkmath.Uint {
	if !u.set {
		return sdkmath.ZeroUint()
	}
	return u.v
}

// IsZero reports whether u is 0.
func (u Uint128) IsZero() bool {
	return u.value().IsZero()
}

// Equal reports whether u and o hold the same value.
func (u Uint128) Equal(o Uint128) bool {
	return u.value().Equal(o.value())
}

// GT reports whether u > o.
func (u Uint128) GT(o Uint128) bool {
	return u.value().GT(o.value())
}

// Add returns u + o, or ErrOverflow if the sum does not fit in 128 bits.
func (u Uint128) Add(o Uint128) (Uint128, error) {
	sum := u.value().Add(o.value())
	if sum.GT(MaxUint128.v) {
		return Uint128{}, ErrOverflow
	}
	return Uint128{v: sum, set: true}, nil
}

// BigInt returns a copy of u as a big.Int.
func (u Uint128) BigInt() *big.Int {
	return u.value().BigInt()
}

func (u Uint128) String() string {
	return u.value().String()
}

// MarshalJSON encodes u as a quoted decimal string.
func (u Uint128) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// UnmarshalJSON accepts only a quoted decimal string within range.
func (u *Uint128) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: expected JSON string, got %s", ErrInvalidUint128, s)
	}
	parsed, err := ParseUint128(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
