package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// amountPlaces is the fixed decimal precision carried by every Amount.
const amountPlaces = 4

// Amount is a monetary value with its ISO-4217 currency. It is immutable:
// arithmetic returns a new Amount and fails when currencies differ.
type Amount struct {
	value    decimal.Decimal
	currency string
}

// NewAmount builds an Amount from a decimal value and a currency code.
// The value is normalised to four decimal places; the currency must be a
// three-letter uppercase code.
func NewAmount(value decimal.Decimal, currency string) (Amount, error) {
	if currency == "" {
		return Amount{}, fmt.Errorf("%w: amount currency is empty", ErrInvalidInput)
	}
	if len(currency) != 3 {
		return Amount{}, fmt.Errorf("%w: currency %q is not a three-letter code", ErrInvalidInput, currency)
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return Amount{}, fmt.Errorf("%w: currency %q is not uppercase ISO-4217", ErrInvalidInput, currency)
		}
	}
	return Amount{value: value.Round(amountPlaces), currency: currency}, nil
}

// MustAmount is a test/fixture helper that panics on a bad amount.
func MustAmount(value string, currency string) Amount {
	a, err := NewAmount(decimal.RequireFromString(value), currency)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Value() decimal.Decimal { return a.value }

func (a Amount) Currency() string { return a.currency }

// IsZero reports whether the Amount was never constructed.
func (a Amount) IsZero() bool { return a.currency == "" }

func (a Amount) IsPositive() bool { return a.value.IsPositive() }

// Add returns a+b or fails when the currencies differ.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{value: a.value.Add(b.value), currency: a.currency}, nil
}

// Sub returns a-b or fails when the currencies differ.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{value: a.value.Sub(b.value), currency: a.currency}, nil
}

// Negate flips the sign, keeping the currency.
func (a Amount) Negate() Amount {
	return Amount{value: a.value.Neg(), currency: a.currency}
}

// Equal compares value and currency.
func (a Amount) Equal(b Amount) bool {
	return a.currency == b.currency && a.value.Equal(b.value)
}

// String renders the value at fixed precision, e.g. "100.5000 BRL".
func (a Amount) String() string {
	return a.value.StringFixed(amountPlaces) + " " + a.currency
}

func (a Amount) sameCurrency(b Amount) error {
	if a.currency != b.currency {
		return fmt.Errorf("%w: currency mismatch %s vs %s", ErrInvalidInput, a.currency, b.currency)
	}
	return nil
}
