package domain

import "fmt"

// Identifiers are opaque to this service: the upstream data layer mints them
// and callers pass them back verbatim. Construction only checks shape so a
// malformed value is caught at the boundary instead of deep in a query.

const maxIdentifierLen = 100

// AccountID identifies an account. Equality is value equality.
type AccountID struct {
	value string
}

// NewAccountID validates the raw value and wraps it.
func NewAccountID(raw string) (AccountID, error) {
	if err := checkIdentifier("account id", raw); err != nil {
		return AccountID{}, err
	}
	return AccountID{value: raw}, nil
}

func (id AccountID) String() string { return id.value }

// IsZero reports whether the id was never constructed.
func (id AccountID) IsZero() bool { return id.value == "" }

// TransactionID identifies a transaction. Equality is value equality.
type TransactionID struct {
	value string
}

// NewTransactionID validates the raw value and wraps it.
func NewTransactionID(raw string) (TransactionID, error) {
	if err := checkIdentifier("transaction id", raw); err != nil {
		return TransactionID{}, err
	}
	return TransactionID{value: raw}, nil
}

func (id TransactionID) String() string { return id.value }

func (id TransactionID) IsZero() bool { return id.value == "" }

func checkIdentifier(label, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidInput, label)
	}
	if len(raw) > maxIdentifierLen {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, label, maxIdentifierLen)
	}
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("%w: %s contains invalid character %q", ErrInvalidInput, label, r)
		}
	}
	return nil
}
