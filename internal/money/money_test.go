package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		{"12.34", 1234},
		{"12,34", 1234},
		{"1000", 100000},
		{"0.5", 50},
		{" 7.10 ", 710},
		{"12.345", 1235},
		{"12.344", 1234},
		{"-20", -2000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "12..0"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestParsePositive(t *testing.T) {
	_, err := ParsePositive("0")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParsePositive("-1")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	a, err := ParsePositive("150.00")
	require.NoError(t, err)
	assert.Equal(t, Amount(15000), a)
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "850.00", Amount(85000).String())
	assert.Equal(t, "-20.00", Amount(-2000).String())
	assert.Equal(t, "0.05", Amount(5).String())
}

func TestAmount_Decimal(t *testing.T) {
	assert.True(t, Amount(12345).Decimal().Equal(decimal.RequireFromString("123.45")))
	a, err := FromDecimal(Amount(12345).Decimal())
	require.NoError(t, err)
	assert.Equal(t, Amount(12345), a)
}

func TestFromFloat(t *testing.T) {
	a, err := FromFloat(100.3)
	require.NoError(t, err)
	assert.Equal(t, Amount(10030), a)

	a, err = FromFloat(-0.015)
	require.NoError(t, err)
	assert.Equal(t, Amount(-2), a)

	_, err = FromFloat(1e20)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParse_Range(t *testing.T) {
	a, err := ParsePositive("92233720368547758.07")
	require.NoError(t, err)
	assert.Equal(t, Amount(math.MaxInt64), a)

	a, err = Parse("-92233720368547758.08")
	require.NoError(t, err)
	assert.Equal(t, Amount(math.MinInt64), a)

	for _, in := range []string{
		"92233720368547758.08",
		"-92233720368547758.09",
		"184467440737095516.17",
		"1e20",
	} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}

	var in struct {
		Amount Amount `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":92233720368547758.07}`), &in))
	assert.Equal(t, Amount(math.MaxInt64), in.Amount)

	in.Amount = 0
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"amount":184467440737095516.17}`), &in), ErrInvalidAmount)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"amount":"1e20"}`), &in), ErrInvalidAmount)
	assert.Equal(t, Amount(0), in.Amount)
}

func TestAmount_Add(t *testing.T) {
	sum, ok := Amount(150).Add(-50)
	assert.True(t, ok)
	assert.Equal(t, Amount(100), sum)

	_, ok = Amount(math.MaxInt64).Add(1)
	assert.False(t, ok)

	_, ok = Amount(math.MinInt64).Add(-1)
	assert.False(t, ok)
}

func TestAmount_Format(t *testing.T) {
	assert.Equal(t, "$1,000.00", Amount(100000).Format("USD"))
	assert.Equal(t, "$1.50", Amount(150).Format(""))
}

func TestSum(t *testing.T) {
	assert.Equal(t, Amount(0), Sum())
	assert.Equal(t, Amount(32000), Sum(20000, 12000))
}

func TestAmountJSON(t *testing.T) {
	type payload struct {
		Amount Amount `json:"amount"`
	}

	out, err := json.Marshal(payload{Amount: -2000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":-20.00}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":150.5}`), &in))
	assert.Equal(t, Amount(15050), in.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.34"}`), &in))
	assert.Equal(t, Amount(1234), in.Amount)

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc"}`), &in))
}
