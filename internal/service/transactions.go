package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openfin/accounts-api/internal/consent"
	"github.com/openfin/accounts-api/internal/domain"
	"github.com/openfin/accounts-api/internal/events"
	"github.com/openfin/accounts-api/internal/page"
)

// ListTransactionsInput is the request for the transaction listing pipeline.
type ListTransactionsInput struct {
	ConsentID      string
	OrganizationID string
	InteractionID  string
	AccountID      string
	Page           int // 1-based; 0 means default (1)
	PageSize       int // 0 means default (25)
	PaginationKey  string
}

// ListTransactionsOutput is the pipeline's result before wire mapping.
type ListTransactionsOutput struct {
	Transactions []domain.Transaction
	Page         page.Info
	RequestedAt  time.Time
}

type listTransactionsContext struct {
	in           ListTransactionsInput
	accountID    domain.AccountID
	key          string
	transactions []domain.Transaction
	totalRecords int64
	totalPages   int
	links        page.Links
	requestedAt  time.Time
}

// ListTransactions runs the same gate-fetch-paginate pipeline as account
// listing, scoped to one account and gated on the transactions permission.
func (s *Service) ListTransactions(ctx context.Context, in ListTransactionsInput) (*ListTransactionsOutput, error) {
	in = withTxListDefaults(in)
	accountID, err := validateTxListInput(in)
	if err != nil {
		return nil, err
	}

	lc := &listTransactionsContext{in: in, accountID: accountID, requestedAt: time.Now().UTC()}
	if err := runStages(ctx, s.transactionListStages(), lc); err != nil {
		return nil, err
	}

	return &ListTransactionsOutput{
		Transactions: lc.transactions,
		Page: page.Info{
			TotalRecords: lc.totalRecords,
			TotalPages:   lc.totalPages,
			Page:         in.Page,
			PageSize:     in.PageSize,
			Links:        lc.links,
			Key:          lc.key,
		},
		RequestedAt: lc.requestedAt,
	}, nil
}

func (s *Service) transactionListStages() []stage[*listTransactionsContext] {
	return []stage[*listTransactionsContext]{
		{"rate-limit gate", s.txRateLimitGate},
		{"consent gate", s.txConsentGate},
		{"permission gate", s.txPermissionGate},
		{"pagination-key check", s.txKeyCheck},
		{"fetch", s.txFetch},
		{"pagination", s.txPaginate},
		{"links", s.txLinks},
		{"usage recording", s.txRecordUsage},
		{"access event", s.txPublishAccess},
	}
}

func (s *Service) txRateLimitGate(ctx context.Context, lc *listTransactionsContext) error {
	if !s.limiter.IsWithinLimit(ctx, lc.in.OrganizationID, EndpointTransactions) {
		return fmt.Errorf("organisation %s: %w", lc.in.OrganizationID, domain.ErrRateLimitExceeded)
	}
	return nil
}

func (s *Service) txConsentGate(ctx context.Context, lc *listTransactionsContext) error {
	if !s.consents.IsValid(ctx, lc.in.ConsentID) {
		return fmt.Errorf("consent %s: %w", lc.in.ConsentID, domain.ErrUnauthorized)
	}
	return nil
}

func (s *Service) txPermissionGate(ctx context.Context, lc *listTransactionsContext) error {
	if !s.consents.HasPermission(ctx, lc.in.ConsentID, consent.PermissionTransactionsRead) {
		return fmt.Errorf("consent %s lacks %s: %w", lc.in.ConsentID, consent.PermissionTransactionsRead, domain.ErrForbidden)
	}
	return nil
}

func (s *Service) txKeyCheck(ctx context.Context, lc *listTransactionsContext) error {
	if lc.in.PaginationKey == "" {
		return nil
	}
	if !s.keys.IsValid(ctx, lc.in.PaginationKey) {
		log.Printf("pagination key %s for consent %s is expired or unknown, using first-page semantics", lc.in.PaginationKey, lc.in.ConsentID)
		return nil
	}
	lc.key = lc.in.PaginationKey
	return nil
}

func (s *Service) txFetch(ctx context.Context, lc *listTransactionsContext) error {
	transactions, err := s.transactions.Fetch(ctx, lc.in.ConsentID, lc.accountID, lc.in.Page-1, lc.in.PageSize)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	total, err := s.transactions.Count(ctx, lc.in.ConsentID, lc.accountID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	lc.transactions = transactions
	lc.totalRecords = total
	return nil
}

func (s *Service) txPaginate(_ context.Context, lc *listTransactionsContext) error {
	lc.totalPages = page.TotalPages(lc.totalRecords, lc.in.PageSize)
	return nil
}

func (s *Service) txLinks(ctx context.Context, lc *listTransactionsContext) error {
	if lc.key == "" && lc.totalPages > 1 {
		key, err := s.keys.Generate(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
		}
		lc.key = key
	}
	lc.links = page.BuildLinks(page.LinkParams{
		Base:       s.baseURL + EndpointAccounts + "/" + lc.accountID.String() + EndpointTransactions,
		Page:       lc.in.Page,
		PageSize:   lc.in.PageSize,
		Key:        lc.key,
		TotalPages: lc.totalPages,
	})
	return nil
}

func (s *Service) txRecordUsage(ctx context.Context, lc *listTransactionsContext) error {
	if err := s.limiter.Record(ctx, lc.in.OrganizationID, EndpointTransactions); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	return nil
}

// txPublishAccess emits the audit event. List operations never carry the
// account id in the event payload.
func (s *Service) txPublishAccess(ctx context.Context, lc *listTransactionsContext) error {
	err := s.sink.PublishAccess(ctx, events.TransactionsListed, events.AccessEvent{
		ConsentID:      lc.in.ConsentID,
		OrganizationID: lc.in.OrganizationID,
		InteractionID:  lc.in.InteractionID,
		Operation:      "list-transactions",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	return nil
}

func withTxListDefaults(in ListTransactionsInput) ListTransactionsInput {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.PageSize == 0 {
		in.PageSize = page.DefaultSize
	}
	return in
}

func validateTxListInput(in ListTransactionsInput) (domain.AccountID, error) {
	if in.ConsentID == "" {
		return domain.AccountID{}, fmt.Errorf("%w: consent id is required", domain.ErrInvalidInput)
	}
	if in.OrganizationID == "" {
		return domain.AccountID{}, fmt.Errorf("%w: organization id is required", domain.ErrInvalidInput)
	}
	if in.Page < 1 {
		return domain.AccountID{}, fmt.Errorf("%w: page must be >= 1", domain.ErrInvalidInput)
	}
	if in.PageSize < 1 || in.PageSize > page.MaxSize {
		return domain.AccountID{}, fmt.Errorf("%w: page size must be between 1 and %d", domain.ErrInvalidInput, page.MaxSize)
	}
	return domain.NewAccountID(in.AccountID)
}
