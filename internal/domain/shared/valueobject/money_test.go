package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(100), USD)
	require.NoError(t, err)
	assert.Equal(t, USD, m.Currency())

	_, err = NewMoney(decimal.NewFromInt(100), "")
	assert.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyCNYFromFloat(100.50)
	b := NewMoneyCNYFromFloat(49.50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(NewMoneyCNYFromFloat(150)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(NewMoneyCNYFromFloat(51)))

	usd, _ := NewMoney(decimal.NewFromInt(1), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
	_, err = a.Subtract(usd)
	assert.Error(t, err)
}

func TestMoneyComparisons(t *testing.T) {
	a := NewMoneyCNYFromFloat(10)
	b := NewMoneyCNYFromFloat(20)

	assert.True(t, a.LessThan(b))
	assert.False(t, b.LessThan(a))

	usd, _ := NewMoney(decimal.NewFromInt(100), USD)
	assert.False(t, a.LessThan(usd))
	assert.False(t, a.Equal(usd))

	assert.True(t, ZeroCNY().IsZero())
	assert.True(t, a.IsPositive())
	assert.True(t, NewMoneyCNYFromFloat(-1).IsNegative())
}

func TestMoneyFromString(t *testing.T) {
	m, err := NewMoneyCNYFromString("1234.5678")
	require.NoError(t, err)
	assert.Equal(t, "1234.57 CNY", m.Round(2).String())

	_, err = NewMoneyCNYFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyCNYFromFloat(99.99)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equal(decoded))
}
