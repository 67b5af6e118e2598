package coin

import (
	"fmt"
	"regexp"
)

// coinPattern matches the "<amount><denom>" notation, e.g. "12345uatom".
var coinPattern = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/:._-]*)$`)

// Coin is a denomination-amount pair of a fungible asset.
type Coin struct {
	Denom  string  `json:"denom"`
	Amount Uint128 `json:"amount"`
}

// New returns a Coin of amount n in denom.
func New(n uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: NewUint128(n)}
}

// ParseCoin parses the "<amount><denom>" notation produced by Coin.String.
func ParseCoin(s string) (Coin, error) {
	m := coinPattern.FindStringSubmatch(s)
	if m == nil {
		return Coin{}, fmt.Errorf("invalid coin expression %q", s)
	}
	amount, err := ParseUint128(m[1])
	if err != nil {
		return Coin{}, fmt.Errorf("invalid coin expression %q: %w", s, err)
	}
	return Coin{Denom: m[2], Amount: amount}, nil
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// Coins is a list of coins, as returned by an all-balances query.
type Coins []Coin

// AmountOf sums the amounts of every entry with the given denom.
func (cs Coins) AmountOf(denom string) (Uint128, error) {
	var total Uint128
	for _, c := range cs {
		if c.Denom != denom {
			continue
		}
		sum, err := total.Add(c.Amount)
		if err != nil {
			return Uint128{}, fmt.Errorf("summing %s: %w", denom, err)
		}
		total = sum
	}
	return total, nil
}

// Total folds the list into one amount per denom, in first-seen order.
func (cs Coins) Total() (Coins, error) {
	index := make(map[string]int, len(cs))
	out := make(Coins, 0, len(cs))
	for _, c := range cs {
		i, ok := index[c.Denom]
		if !ok {
			index[c.Denom] = len(out)
			out = append(out, c)
			continue
		}
		sum, err := out[i].Amount.Add(c.Amount)
		if err != nil {
			return nil, fmt.Errorf("summing %s: %w", c.Denom, err)
		}
		out[i].Amount = sum
	}
	return out, nil
}
