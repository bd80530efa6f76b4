package domain

import "fmt"

// AccountType is the mutually exclusive account category.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypePrepaid  AccountType = "prepaid"
)

// ParseAccountType validates a raw filter/record value.
func ParseAccountType(raw string) (AccountType, error) {
	switch AccountType(raw) {
	case AccountTypeChecking, AccountTypeSavings, AccountTypePrepaid:
		return AccountType(raw), nil
	}
	return "", fmt.Errorf("%w: unknown account type %q", ErrInvalidInput, raw)
}

// AccountSubtype distinguishes individual from joint ownership.
type AccountSubtype string

const (
	AccountSubtypeIndividual AccountSubtype = "individual"
	AccountSubtypeJoint      AccountSubtype = "joint"
)

// ParseAccountSubtype validates a raw record value.
func ParseAccountSubtype(raw string) (AccountSubtype, error) {
	switch AccountSubtype(raw) {
	case AccountSubtypeIndividual, AccountSubtypeJoint:
		return AccountSubtype(raw), nil
	}
	return "", fmt.Errorf("%w: unknown account subtype %q", ErrInvalidInput, raw)
}

// Account is an immutable account record. Build one with NewAccount; the
// constructor rejects records that violate the branch-code rule so an
// invalid account can never reach a response.
type Account struct {
	id          AccountID
	accountType AccountType
	subtype     AccountSubtype
	branchCode  string
	number      string
	checkDigit  string
	companyCNPJ string
}

// AccountParams carries the raw attributes for NewAccount.
type AccountParams struct {
	ID          AccountID
	Type        AccountType
	Subtype     AccountSubtype
	BranchCode  string
	Number      string
	CheckDigit  string
	CompanyCNPJ string
}

// NewAccount validates and builds an Account.
//
// Branch-code rule: prepaid accounts must not carry a branch code, every
// other type must.
func NewAccount(p AccountParams) (Account, error) {
	if p.ID.IsZero() {
		return Account{}, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	if _, err := ParseAccountType(string(p.Type)); err != nil {
		return Account{}, err
	}
	if _, err := ParseAccountSubtype(string(p.Subtype)); err != nil {
		return Account{}, err
	}
	if p.Type == AccountTypePrepaid && p.BranchCode != "" {
		return Account{}, fmt.Errorf("%w: prepaid account %s must not carry a branch code", ErrInvalidInput, p.ID)
	}
	if p.Type != AccountTypePrepaid && p.BranchCode == "" {
		return Account{}, fmt.Errorf("%w: %s account %s requires a branch code", ErrInvalidInput, p.Type, p.ID)
	}
	if p.Number == "" {
		return Account{}, fmt.Errorf("%w: account number is required", ErrInvalidInput)
	}
	if p.CompanyCNPJ != "" && !isDigits(p.CompanyCNPJ, 14) {
		return Account{}, fmt.Errorf("%w: company CNPJ must be 14 digits", ErrInvalidInput)
	}
	return Account{
		id:          p.ID,
		accountType: p.Type,
		subtype:     p.Subtype,
		branchCode:  p.BranchCode,
		number:      p.Number,
		checkDigit:  p.CheckDigit,
		companyCNPJ: p.CompanyCNPJ,
	}, nil
}

func (a Account) ID() AccountID           { return a.id }
func (a Account) Type() AccountType       { return a.accountType }
func (a Account) Subtype() AccountSubtype { return a.subtype }
func (a Account) BranchCode() string      { return a.branchCode }
func (a Account) Number() string          { return a.number }
func (a Account) CheckDigit() string      { return a.checkDigit }
func (a Account) CompanyCNPJ() string     { return a.companyCNPJ }

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
