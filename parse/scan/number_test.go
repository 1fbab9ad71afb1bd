package scan

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypedNumber(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"42", 42},
		{"-7", -7},
		{"42u", uint(42)},
		{"42U", uint(42)},
		{"0xFF", 255},
		{"0Xff", 255},
		{"-0x10", -16},
		{"-1s", int16(-1)},
		{"7us", uint16(7)},
		{"12l", int64(12)},
		{"12ul", uint64(12)},
		{"200b", uint8(200)},
		{"1.5f", float32(1.5)},
		{"2d", float64(2)},
		{"10e10d", float64(1e11)},
		{"1.25", 1.25},
		{"1e3", 1000.0},
		{"-2.5E-1", -0.25},
	}
	for _, tt := range tests {
		got, err := ParseTypedNumber(tt.text)
		require.NoError(t, err, tt.text)
		assert.IsType(t, tt.want, got, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestParseTypedNumberDecimal(t *testing.T) {
	got, err := ParseTypedNumber("19.99m")
	require.NoError(t, err)
	d, ok := got.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("19.99")))
}

func TestParseTypedNumberErrors(t *testing.T) {
	_, err := ParseTypedNumber("12q")
	assert.ErrorIs(t, err, ErrUnrecognizedSuffix)

	_, err = ParseTypedNumber("1x")
	assert.ErrorIs(t, err, ErrUnrecognizedSuffix)

	_, err = ParseTypedNumber("300b")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseTypedNumber("-1u")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseTypedNumber("1.5l")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseTypedNumber("")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseTypedNumber("f")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseTypedNumber("1.5", Int, Long)
	assert.ErrorIs(t, err, ErrDisallowedType)

	v, err := ParseTypedNumber("3", Int, Long)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestDetectNumberType(t *testing.T) {
	tests := []struct {
		text string
		typ  NumberType
		body string
	}{
		{"1", Int, "1"},
		{"1.0", Double, "1.0"},
		{"1f", Float, "1"},
		{"1us", Ushort, "1"},
		{"1UL", Ulong, "1"},
		{"0x1f", Hex, "0x1f"},
		{"5m", Decimal, "5"},
	}
	for _, tt := range tests {
		typ, body, err := DetectNumberType(tt.text)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.typ, typ, tt.text)
		assert.Equal(t, tt.body, body, tt.text)
	}
	assert.Equal(t, "ushort", Ushort.String())
}

func TestParseTypedNumberHexRange(t *testing.T) {
	v, err := ParseTypedNumber("0x7FFFFFFFFFFFFFFF")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, v)

	v, err = ParseTypedNumber("-0x8000000000000000")
	require.NoError(t, err)
	assert.Equal(t, math.MinInt, v)

	_, err = ParseTypedNumber("0xFFFFFFFFFFFFFFFF")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseTypedNumber("0x8000000000000000")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}
