// Package provider implements the external data-provider contracts against
// PostgreSQL. A page fetch and its total count always share the same WHERE
// clause: the count must reflect the same filter as the fetch, and the
// total is never inferred from the size of the returned page.
package provider

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openfin/accounts-api/internal/domain"
)

// PostgresAccounts serves account pages scoped by consent.
type PostgresAccounts struct {
	db *sql.DB
}

func NewPostgresAccounts(db *sql.DB) *PostgresAccounts {
	return &PostgresAccounts{db: db}
}

// Fetch returns one page of accounts visible to the consent, ordered by
// account id. page is zero-based.
func (p *PostgresAccounts) Fetch(ctx context.Context, consentID string, accountType domain.AccountType, page, pageSize int) ([]domain.Account, error) {
	query := `
		SELECT a.account_id, a.account_type, a.account_subtype, a.branch_code, a.number, a.check_digit, a.company_cnpj
		FROM accounts a
		JOIN consent_accounts ca ON ca.account_id = a.account_id
		WHERE ca.consent_id = $1
		  AND ($2 = '' OR a.account_type = $2)
		ORDER BY a.account_id
		LIMIT $3 OFFSET $4
	`
	rows, err := p.db.QueryContext(ctx, query, consentID, string(accountType), pageSize, page*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var (
			id, accType, subtype           string
			branchCode, number, checkDigit sql.NullString
			companyCNPJ                    sql.NullString
		)
		if err := rows.Scan(&id, &accType, &subtype, &branchCode, &number, &checkDigit, &companyCNPJ); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		account, err := buildAccount(id, accType, subtype, branchCode.String, number.String, checkDigit.String, companyCNPJ.String)
		if err != nil {
			return nil, fmt.Errorf("account row %s is invalid: %w", id, err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// Count returns the total number of accounts matching the same filter Fetch
// uses.
func (p *PostgresAccounts) Count(ctx context.Context, consentID string, accountType domain.AccountType) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM accounts a
		JOIN consent_accounts ca ON ca.account_id = a.account_id
		WHERE ca.consent_id = $1
		  AND ($2 = '' OR a.account_type = $2)
	`
	var count int64
	if err := p.db.QueryRowContext(ctx, query, consentID, string(accountType)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// GetByID returns a single account, provided the consent can see it.
func (p *PostgresAccounts) GetByID(ctx context.Context, consentID string, id domain.AccountID) (domain.Account, error) {
	query := `
		SELECT a.account_id, a.account_type, a.account_subtype, a.branch_code, a.number, a.check_digit, a.company_cnpj
		FROM accounts a
		JOIN consent_accounts ca ON ca.account_id = a.account_id
		WHERE ca.consent_id = $1 AND a.account_id = $2
	`
	var (
		rawID, accType, subtype        string
		branchCode, number, checkDigit sql.NullString
		companyCNPJ                    sql.NullString
	)
	err := p.db.QueryRowContext(ctx, query, consentID, id.String()).Scan(
		&rawID, &accType, &subtype, &branchCode, &number, &checkDigit, &companyCNPJ,
	)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	account, err := buildAccount(rawID, accType, subtype, branchCode.String, number.String, checkDigit.String, companyCNPJ.String)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account row %s is invalid: %w", rawID, err)
	}
	return account, nil
}

func buildAccount(id, accType, subtype, branchCode, number, checkDigit, companyCNPJ string) (domain.Account, error) {
	accountID, err := domain.NewAccountID(id)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.NewAccount(domain.AccountParams{
		ID:          accountID,
		Type:        domain.AccountType(accType),
		Subtype:     domain.AccountSubtype(subtype),
		BranchCode:  branchCode,
		Number:      number,
		CheckDigit:  checkDigit,
		CompanyCNPJ: companyCNPJ,
	})
}
