package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance-schema-service/internal/schema"
)

const threeCoins = `{"amount":[{"denom":"a","amount":"1"},{"denom":"b","amount":"2"},{"denom":"c","amount":"3"}]}`

func TestValidateLocal_MaxCoins(t *testing.T) {
	violations, err := validateLocal("", 2, schema.KindAllBalances, []byte(threeCoins))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "/amount", violations[0].Path)
	assert.Equal(t, schema.CodeLimit, violations[0].Code)

	violations, err = validateLocal("", 0, schema.KindAllBalances, []byte(threeCoins))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateLocal_Errors(t *testing.T) {
	_, err := validateLocal("", 0, schema.KindBalance, []byte(`{"amount":`))
	var pe *schema.ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = validateLocal("", 0, "delegation", []byte(`{}`))
	assert.ErrorIs(t, err, schema.ErrUnknownKind)
}
