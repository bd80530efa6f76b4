package provider

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openfin/accounts-api/internal/domain"
)

// PostgresTransactions serves transaction pages for one account, scoped by
// consent. Amounts are stored as NUMERIC and read through shopspring/decimal
// so no precision is lost in transit.
type PostgresTransactions struct {
	db *sql.DB
}

func NewPostgresTransactions(db *sql.DB) *PostgresTransactions {
	return &PostgresTransactions{db: db}
}

// Fetch returns one page of the account's transactions, newest first.
// page is zero-based.
func (p *PostgresTransactions) Fetch(ctx context.Context, consentID string, accountID domain.AccountID, page, pageSize int) ([]domain.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.credit_debit, t.status, t.type,
		       t.amount, t.currency, t.occurred_at,
		       t.cp_tax_id, t.cp_person_type, t.cp_bank_code, t.cp_branch_code, t.cp_number
		FROM transactions t
		JOIN consent_accounts ca ON ca.account_id = t.account_id
		WHERE ca.consent_id = $1 AND t.account_id = $2
		ORDER BY t.occurred_at DESC, t.transaction_id
		LIMIT $3 OFFSET $4
	`
	rows, err := p.db.QueryContext(ctx, query, consentID, accountID.String(), pageSize, page*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// Count returns the total number of transactions matching the same filter
// Fetch uses.
func (p *PostgresTransactions) Count(ctx context.Context, consentID string, accountID domain.AccountID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions t
		JOIN consent_accounts ca ON ca.account_id = t.account_id
		WHERE ca.consent_id = $1 AND t.account_id = $2
	`
	var count int64
	if err := p.db.QueryRowContext(ctx, query, consentID, accountID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var (
		id, creditDebit, status, txType string
		rawAmount, currency             string
		occurredAt                      time.Time
		cpTaxID, cpPersonType           sql.NullString
		cpBankCode, cpBranchCode        sql.NullString
		cpNumber                        sql.NullString
	)
	if err := rows.Scan(
		&id, &creditDebit, &status, &txType,
		&rawAmount, &currency, &occurredAt,
		&cpTaxID, &cpPersonType, &cpBankCode, &cpBranchCode, &cpNumber,
	); err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to scan transaction row: %w", err)
	}

	value, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction row %s has a bad amount: %w", id, err)
	}
	amount, err := domain.NewAmount(value, currency)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction row %s is invalid: %w", id, err)
	}
	txID, err := domain.NewTransactionID(id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction row %s is invalid: %w", id, err)
	}

	var cp *domain.Counterparty
	if cpTaxID.Valid && cpTaxID.String != "" {
		cp = &domain.Counterparty{
			TaxID:      cpTaxID.String,
			PersonType: domain.PersonType(cpPersonType.String),
			BankCode:   cpBankCode.String,
			BranchCode: cpBranchCode.String,
			Number:     cpNumber.String,
		}
	}

	tx, err := domain.NewTransaction(domain.TransactionParams{
		ID:           txID,
		CreditDebit:  domain.CreditDebitType(creditDebit),
		Status:       domain.TransactionStatus(status),
		Type:         domain.TransactionType(txType),
		Amount:       amount,
		Timestamp:    occurredAt,
		Counterparty: cp,
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction row %s is invalid: %w", id, err)
	}
	return tx, nil
}
