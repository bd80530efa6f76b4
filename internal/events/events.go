package events

import "time"

// Event types
const (
	AccountsListed     = "accounts.listed"
	AccountRead        = "account.read"
	TransactionsListed = "transactions.listed"
)

// Stream names
const (
	AccessEventsStream = "access.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// AccessEvent is the audit record emitted for every successful data access.
//
// List operations carry no account-identifying payload; only single-resource
// reads set AccountID.
type AccessEvent struct {
	ConsentID      string `json:"consentId"`
	OrganizationID string `json:"organizationId"`
	InteractionID  string `json:"interactionId"`
	Operation      string `json:"operation"`
	AccountID      string `json:"accountId,omitempty"`
}
