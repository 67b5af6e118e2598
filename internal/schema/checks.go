package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"balance-schema-service/internal/coin"
)

type checkFunc func(doc any, o *options) []Violation

// ValidateBalanceResponse checks doc against the BalanceResponse shape:
// an object whose "amount" is a Coin with a string denom and a uint128 amount.
// It returns nil when doc conforms.
func ValidateBalanceResponse(doc any) []Violation {
	return checkSingleCoinResponse(doc, nil)
}

func checkSingleCoinResponse(doc any, _ *options) []Violation {
	obj, ok := doc.(map[string]any)
	if !ok {
		return []Violation{typeViolation("", "object", doc)}
	}
	raw, ok := obj["amount"]
	if !ok {
		return []Violation{requiredViolation("/amount")}
	}
	return checkCoin("/amount", raw)
}

func checkCoinListResponse(doc any, o *options) []Violation {
	obj, ok := doc.(map[string]any)
	if !ok {
		return []Violation{typeViolation("", "object", doc)}
	}
	raw, ok := obj["amount"]
	if !ok {
		return []Violation{requiredViolation("/amount")}
	}
	list, ok := raw.([]any)
	if !ok {
		return []Violation{typeViolation("/amount", "array", raw)}
	}
	if o != nil && o.maxCoins > 0 && len(list) > o.maxCoins {
		return []Violation{{
			Path:   "/amount",
			Reason: fmt.Sprintf("too many coins: %d > %d", len(list), o.maxCoins),
			Code:   CodeLimit,
		}}
	}

	var out []Violation
	for i, c := range list {
		out = append(out, checkCoin(JoinPointer("/amount", strconv.Itoa(i)), c)...)
	}
	return out
}

// checkCoin reports every problem with one coin: denom first, then amount.
func checkCoin(path string, v any) []Violation {
	obj, ok := v.(map[string]any)
	if !ok {
		return []Violation{typeViolation(path, "object", v)}
	}

	var out []Violation
	denomPath := JoinPointer(path, "denom")
	if d, ok := obj["denom"]; !ok {
		out = append(out, requiredViolation(denomPath))
	} else if _, isString := d.(string); !isString {
		out = append(out, typeViolation(denomPath, "string", d))
	}

	amountPath := JoinPointer(path, "amount")
	a, ok := obj["amount"]
	if !ok {
		return append(out, requiredViolation(amountPath))
	}
	s, isString := a.(string)
	if !isString {
		return append(out, typeViolation(amountPath, "string", a))
	}
	if _, err := coin.ParseUint128(s); err != nil {
		if errors.Is(err, coin.ErrOverflow) {
			out = append(out, Violation{Path: amountPath, Reason: coin.ErrOverflow.Error(), Code: CodeUint128Overflow})
		} else {
			out = append(out, Violation{Path: amountPath, Reason: coin.ErrInvalidUint128.Error(), Code: CodeInvalidUint128})
		}
	}
	return out
}

func requiredViolation(path string) Violation {
	return Violation{Path: path, Reason: "missing required property", Code: CodeRequired}
}

func typeViolation(path, want string, got any) Violation {
	return Violation{
		Path:   path,
		Reason: fmt.Sprintf("expected %s, got %s", want, typeName(got)),
		Code:   CodeType,
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32, uint64, uint32:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
