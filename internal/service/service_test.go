package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/openfin/accounts-api/internal/consent"
	"github.com/openfin/accounts-api/internal/domain"
	"github.com/openfin/accounts-api/internal/events"
)

const testBaseURL = "https://api.bank.example/open-banking/accounts/v2"

// ---- mock implementations ----

type mockLimiter struct {
	withinFn    func(identifier, endpoint string) bool
	recordErr   error
	checkCalls  int
	recordCalls int
	recorded    []string
}

func (m *mockLimiter) IsWithinLimit(_ context.Context, identifier, endpoint string) bool {
	m.checkCalls++
	if m.withinFn != nil {
		return m.withinFn(identifier, endpoint)
	}
	return true
}

func (m *mockLimiter) Record(_ context.Context, identifier, endpoint string) error {
	m.recordCalls++
	m.recorded = append(m.recorded, identifier+" "+endpoint)
	return m.recordErr
}

func (m *mockLimiter) Remaining(_ context.Context, _, _ string) int { return 100 }

type mockConsents struct {
	validFn    func(consentID string) bool
	permFn     func(consentID string, p consent.Permission) bool
	validCalls int
	permCalls  int
}

func (m *mockConsents) IsValid(_ context.Context, consentID string) bool {
	m.validCalls++
	if m.validFn != nil {
		return m.validFn(consentID)
	}
	return true
}

func (m *mockConsents) HasPermission(_ context.Context, consentID string, p consent.Permission) bool {
	m.permCalls++
	if m.permFn != nil {
		return m.permFn(consentID, p)
	}
	return true
}

type mockKeys struct {
	validFn       func(key string) bool
	generateCalls int
}

func (m *mockKeys) IsValid(_ context.Context, key string) bool {
	if m.validFn != nil {
		return m.validFn(key)
	}
	return false
}

func (m *mockKeys) Generate(_ context.Context) (string, error) {
	m.generateCalls++
	return "pk-fresh", nil
}

type mockAccounts struct {
	fetchFn    func(consentID string, accountType domain.AccountType, page, pageSize int) ([]domain.Account, error)
	countFn    func(consentID string, accountType domain.AccountType) (int64, error)
	getFn      func(consentID string, id domain.AccountID) (domain.Account, error)
	fetchCalls int
}

func (m *mockAccounts) Fetch(_ context.Context, consentID string, accountType domain.AccountType, page, pageSize int) ([]domain.Account, error) {
	m.fetchCalls++
	if m.fetchFn != nil {
		return m.fetchFn(consentID, accountType, page, pageSize)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccounts) Count(_ context.Context, consentID string, accountType domain.AccountType) (int64, error) {
	if m.countFn != nil {
		return m.countFn(consentID, accountType)
	}
	return 0, fmt.Errorf("not configured")
}

func (m *mockAccounts) GetByID(_ context.Context, consentID string, id domain.AccountID) (domain.Account, error) {
	if m.getFn != nil {
		return m.getFn(consentID, id)
	}
	return domain.Account{}, fmt.Errorf("not configured")
}

type mockTransactions struct {
	fetchFn    func(consentID string, accountID domain.AccountID, page, pageSize int) ([]domain.Transaction, error)
	countFn    func(consentID string, accountID domain.AccountID) (int64, error)
	fetchCalls int
}

func (m *mockTransactions) Fetch(_ context.Context, consentID string, accountID domain.AccountID, page, pageSize int) ([]domain.Transaction, error) {
	m.fetchCalls++
	if m.fetchFn != nil {
		return m.fetchFn(consentID, accountID, page, pageSize)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTransactions) Count(_ context.Context, consentID string, accountID domain.AccountID) (int64, error) {
	if m.countFn != nil {
		return m.countFn(consentID, accountID)
	}
	return 0, fmt.Errorf("not configured")
}

type publishedEvent struct {
	eventType string
	access    events.AccessEvent
}

type mockSink struct {
	publishErr error
	published  []publishedEvent
}

func (m *mockSink) PublishAccess(_ context.Context, eventType string, access events.AccessEvent) error {
	m.published = append(m.published, publishedEvent{eventType: eventType, access: access})
	return m.publishErr
}

// ---- fixtures ----

type testDeps struct {
	limiter      *mockLimiter
	consents     *mockConsents
	keys         *mockKeys
	accounts     *mockAccounts
	transactions *mockTransactions
	sink         *mockSink
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		limiter:      &mockLimiter{},
		consents:     &mockConsents{},
		keys:         &mockKeys{},
		accounts:     &mockAccounts{},
		transactions: &mockTransactions{},
		sink:         &mockSink{},
	}
	svc := New(deps.limiter, deps.consents, deps.keys, deps.accounts, deps.transactions, deps.sink, testBaseURL)
	return svc, deps
}

func makeAccounts(t *testing.T, n int) []domain.Account {
	t.Helper()
	accounts := make([]domain.Account, 0, n)
	for i := 0; i < n; i++ {
		id, err := domain.NewAccountID(fmt.Sprintf("acc-%03d", i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		account, err := domain.NewAccount(domain.AccountParams{
			ID:         id,
			Type:       domain.AccountTypeChecking,
			Subtype:    domain.AccountSubtypeIndividual,
			BranchCode: "0001",
			Number:     fmt.Sprintf("%07d", i),
			CheckDigit: "1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		accounts = append(accounts, account)
	}
	return accounts
}

func makeTransactions(t *testing.T, n int) []domain.Transaction {
	t.Helper()
	ts, _ := time.Parse(time.RFC3339, "2026-01-15T10:30:00Z")
	transactions := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		id, err := domain.NewTransactionID(fmt.Sprintf("txn-%03d", i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tx, err := domain.NewTransaction(domain.TransactionParams{
			ID:          id,
			CreditDebit: domain.Credit,
			Status:      domain.StatusEffective,
			Type:        domain.TypeTransfer,
			Amount:      domain.MustAmount("10.00", "BRL"),
			Timestamp:   ts.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions
}
