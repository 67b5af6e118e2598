package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsNumbers(t *testing.T) {
	doc, err := Decode([]byte(`{"n": 340282366920938463463374607431768211456}`))
	require.NoError(t, err)

	obj, ok := doc.(map[string]any)
	require.True(t, ok)
	n, ok := obj["n"].(json.Number)
	require.True(t, ok, "expected json.Number, got %T", obj["n"])
	assert.Equal(t, "340282366920938463463374607431768211456", n.String())
}

func TestDecode_ParseError(t *testing.T) {
	for _, input := range []string{``, `{`, `{"amount":}`, `{"amount" "x"}`, `nope`} {
		t.Run(input, func(t *testing.T) {
			_, err := Decode([]byte(input))
			require.Error(t, err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
			_, isViolation := AsViolations(err)
			assert.False(t, isViolation)
		})
	}
}

func TestJoinPointer(t *testing.T) {
	assert.Equal(t, "/amount", JoinPointer("", "amount"))
	assert.Equal(t, "/amount/0/denom", JoinPointer(JoinPointer("/amount", "0"), "denom"))
	assert.Equal(t, "/a~1b/c~0d", JoinPointer(JoinPointer("", "a/b"), "c~d"))
}
