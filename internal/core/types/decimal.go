// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Percent is a rate expressed in percent (8.5 means 8.5%).
type Percent = decimal.Decimal

// DisplayPlaces is the number of fractional digits used when money leaves the API.
const DisplayPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// PercentOf returns amount * rate / 100.
func PercentOf(amount Money, rate Percent) Money {
	return amount.Mul(rate).Div(hundred)
}

// Display rounds a value half-away-from-zero to two places for presentation.
func Display(m Money) Money {
	return m.Round(DisplayPlaces)
}

// ParseDecimal accepts a JSON number or a JSON string holding a number.
// Empty strings and null are rejected.
func ParseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return decimal.Zero, fmt.Errorf("empty number")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return decimal.Zero, err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			return decimal.Zero, fmt.Errorf("empty number")
		}
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse number: %w", err)
	}
	return d, nil
}
