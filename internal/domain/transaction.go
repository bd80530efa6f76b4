package domain

import (
	"fmt"
	"time"
)

// CreditDebitType says which direction a transaction moves money.
type CreditDebitType string

const (
	Credit CreditDebitType = "CREDIT"
	Debit  CreditDebitType = "DEBIT"
)

// ParseCreditDebitType validates a raw record value.
func ParseCreditDebitType(raw string) (CreditDebitType, error) {
	switch CreditDebitType(raw) {
	case Credit, Debit:
		return CreditDebitType(raw), nil
	}
	return "", fmt.Errorf("%w: unknown credit/debit type %q", ErrInvalidInput, raw)
}

// TransactionStatus is the completion state of a transaction.
//
// Identity is only stable while a transaction is effective: the upstream
// system may replace a processing or future-dated transaction with a new
// identity once it settles. That is an upstream contract, not enforced here.
type TransactionStatus string

const (
	StatusEffective   TransactionStatus = "effective"
	StatusProcessing  TransactionStatus = "processing"
	StatusFutureDated TransactionStatus = "future-dated"
)

// ParseTransactionStatus validates a raw record value.
func ParseTransactionStatus(raw string) (TransactionStatus, error) {
	switch TransactionStatus(raw) {
	case StatusEffective, StatusProcessing, StatusFutureDated:
		return TransactionStatus(raw), nil
	}
	return "", fmt.Errorf("%w: unknown transaction status %q", ErrInvalidInput, raw)
}

// TransactionType is the business kind of movement. Only payroll carries a
// hard counterparty requirement; the rest are pass-through labels.
type TransactionType string

const (
	TypeTransfer   TransactionType = "transfer"
	TypePayment    TransactionType = "payment"
	TypePayroll    TransactionType = "payroll"
	TypeFee        TransactionType = "fee"
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

// PersonType distinguishes natural persons (CPF) from legal entities (CNPJ).
type PersonType string

const (
	NaturalPerson PersonType = "natural"
	LegalEntity   PersonType = "legal"
)

// Counterparty is the optional other side of a transaction.
type Counterparty struct {
	TaxID      string
	PersonType PersonType
	BankCode   string
	BranchCode string
	Number     string
}

// Transaction is an immutable transaction record created once from the
// upstream data source. Build one with NewTransaction.
type Transaction struct {
	id           TransactionID
	creditDebit  CreditDebitType
	status       TransactionStatus
	txType       TransactionType
	amount       Amount
	timestamp    time.Time
	counterparty *Counterparty
}

// TransactionParams carries the raw attributes for NewTransaction.
type TransactionParams struct {
	ID           TransactionID
	CreditDebit  CreditDebitType
	Status       TransactionStatus
	Type         TransactionType
	Amount       Amount
	Timestamp    time.Time
	Counterparty *Counterparty
}

// NewTransaction validates and builds a Transaction.
//
// The amount is always strictly positive; direction lives in the
// credit/debit indicator, not in the sign. Payroll transactions must name a
// counterparty tax id, and the tax id length fixes the person type: 11
// digits is a CPF (natural person), 14 digits is a CNPJ (legal entity).
func NewTransaction(p TransactionParams) (Transaction, error) {
	if p.ID.IsZero() {
		return Transaction{}, fmt.Errorf("%w: transaction id is required", ErrInvalidInput)
	}
	if _, err := ParseCreditDebitType(string(p.CreditDebit)); err != nil {
		return Transaction{}, err
	}
	if _, err := ParseTransactionStatus(string(p.Status)); err != nil {
		return Transaction{}, err
	}
	if p.Type == "" {
		return Transaction{}, fmt.Errorf("%w: transaction type is required", ErrInvalidInput)
	}
	if p.Amount.IsZero() {
		return Transaction{}, fmt.Errorf("%w: transaction amount is required", ErrInvalidInput)
	}
	if !p.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: transaction amount must be strictly positive, got %s", ErrInvalidInput, p.Amount)
	}
	if p.Timestamp.IsZero() {
		return Transaction{}, fmt.Errorf("%w: transaction timestamp is required", ErrInvalidInput)
	}
	if p.Type == TypePayroll && (p.Counterparty == nil || p.Counterparty.TaxID == "") {
		return Transaction{}, fmt.Errorf("%w: payroll transaction %s requires a counterparty tax id", ErrInvalidInput, p.ID)
	}
	if p.Counterparty != nil && p.Counterparty.TaxID != "" {
		if err := checkCounterparty(*p.Counterparty); err != nil {
			return Transaction{}, err
		}
	}

	var cp *Counterparty
	if p.Counterparty != nil {
		c := *p.Counterparty
		cp = &c
	}
	return Transaction{
		id:           p.ID,
		creditDebit:  p.CreditDebit,
		status:       p.Status,
		txType:       p.Type,
		amount:       p.Amount,
		timestamp:    p.Timestamp,
		counterparty: cp,
	}, nil
}

func checkCounterparty(c Counterparty) error {
	switch {
	case isDigits(c.TaxID, 11):
		if c.PersonType != NaturalPerson {
			return fmt.Errorf("%w: 11-digit tax id implies a natural person, got %q", ErrInvalidInput, c.PersonType)
		}
	case isDigits(c.TaxID, 14):
		if c.PersonType != LegalEntity {
			return fmt.Errorf("%w: 14-digit tax id implies a legal entity, got %q", ErrInvalidInput, c.PersonType)
		}
	default:
		return fmt.Errorf("%w: counterparty tax id must be 11 (CPF) or 14 (CNPJ) digits", ErrInvalidInput)
	}
	return nil
}

func (t Transaction) ID() TransactionID            { return t.id }
func (t Transaction) CreditDebit() CreditDebitType { return t.creditDebit }
func (t Transaction) Status() TransactionStatus    { return t.status }
func (t Transaction) Type() TransactionType        { return t.txType }
func (t Transaction) Amount() Amount               { return t.amount }
func (t Transaction) Timestamp() time.Time         { return t.timestamp }

// Counterparty returns a copy of the counterparty, or nil when absent.
func (t Transaction) Counterparty() *Counterparty {
	if t.counterparty == nil {
		return nil
	}
	c := *t.counterparty
	return &c
}

// EffectiveAmount is the amount signed by direction: positive for credits,
// negative for debits.
func (t Transaction) EffectiveAmount() Amount {
	if t.creditDebit == Debit {
		return t.amount.Negate()
	}
	return t.amount
}
