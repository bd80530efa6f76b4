// Package consent validates the authorization grants that scope what an
// organisation may read. Consent issuance and storage live in a separate
// system; this package only consumes the records it publishes.
package consent

import (
	"context"
	"time"
)

// Permission is a data-access scope carried by a consent.
type Permission string

const (
	PermissionAccountsRead     Permission = "ACCOUNTS_READ"
	PermissionTransactionsRead Permission = "TRANSACTIONS_READ"
	PermissionBalancesRead     Permission = "BALANCES_READ"
)

// Statuses a consent record can be in. Only authorised consents pass the
// consent gate.
const (
	StatusAuthorised = "AUTHORISED"
	StatusRejected   = "REJECTED"
	StatusRevoked    = "REVOKED"
)

// Validator is the consent contract consumed by the orchestrators. A false
// from IsValid aborts the request as unauthorized; a false from
// HasPermission aborts it as forbidden.
type Validator interface {
	IsValid(ctx context.Context, consentID string) bool
	HasPermission(ctx context.Context, consentID string, p Permission) bool
}

// Record is the consent snapshot published by the consent system.
type Record struct {
	ConsentID      string       `json:"consentId"`
	OrganizationID string       `json:"organizationId"`
	Status         string       `json:"status"`
	Permissions    []Permission `json:"permissions"`
	ExpiresAt      time.Time    `json:"expiresAt"`
}

// Valid reports whether the record is authorised and unexpired at now.
func (r Record) Valid(now time.Time) bool {
	if r.Status != StatusAuthorised {
		return false
	}
	return now.Before(r.ExpiresAt)
}

// Grants reports whether the record carries the permission.
func (r Record) Grants(p Permission) bool {
	for _, got := range r.Permissions {
		if got == p {
			return true
		}
	}
	return false
}
