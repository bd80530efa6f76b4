// Package service contains the listing orchestrators. Every request runs a
// fixed, ordered pipeline of stages over a request-scoped context value:
// gates first (rate limit, consent, permission), then pagination-key
// validation, data fetch, pagination computation, link construction, usage
// recording and access-event emission. A failed stage aborts the whole
// request; stages past the gates surface as upstream failures.
package service

import (
	"context"
	"fmt"

	"github.com/openfin/accounts-api/internal/consent"
	"github.com/openfin/accounts-api/internal/domain"
	"github.com/openfin/accounts-api/internal/events"
	"github.com/openfin/accounts-api/internal/page"
	"github.com/openfin/accounts-api/internal/ratelimit"
)

// Endpoints used as rate-limit buckets.
const (
	EndpointAccounts     = "/accounts"
	EndpointTransactions = "/transactions"
)

// AccountProvider is the external account source. Fetch pages are
// zero-based; Count must apply exactly the same filter as Fetch.
type AccountProvider interface {
	Fetch(ctx context.Context, consentID string, accountType domain.AccountType, page, pageSize int) ([]domain.Account, error)
	Count(ctx context.Context, consentID string, accountType domain.AccountType) (int64, error)
	GetByID(ctx context.Context, consentID string, id domain.AccountID) (domain.Account, error)
}

// TransactionProvider is the external transaction source for one account.
type TransactionProvider interface {
	Fetch(ctx context.Context, consentID string, accountID domain.AccountID, page, pageSize int) ([]domain.Transaction, error)
	Count(ctx context.Context, consentID string, accountID domain.AccountID) (int64, error)
}

// Service wires the pipelines to their collaborators. All per-request state
// lives in the stage context values, so one Service serves concurrent
// requests without shared mutable state.
type Service struct {
	limiter      ratelimit.Limiter
	consents     consent.Validator
	keys         page.KeyService
	accounts     AccountProvider
	transactions TransactionProvider
	sink         events.Sink
	baseURL      string
}

// New creates a Service. baseURL is the public prefix links are built on,
// e.g. "https://api.bank.example/open-banking/accounts/v2".
func New(
	limiter ratelimit.Limiter,
	consents consent.Validator,
	keys page.KeyService,
	accounts AccountProvider,
	transactions TransactionProvider,
	sink events.Sink,
	baseURL string,
) *Service {
	return &Service{
		limiter:      limiter,
		consents:     consents,
		keys:         keys,
		accounts:     accounts,
		transactions: transactions,
		sink:         sink,
		baseURL:      baseURL,
	}
}

// stage is one step of a pipeline. Stages run in slice order and the first
// error aborts the request.
type stage[C any] struct {
	name string
	run  func(ctx context.Context, c C) error
}

func runStages[C any](ctx context.Context, stages []stage[C], c C) error {
	for _, s := range stages {
		if err := s.run(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
