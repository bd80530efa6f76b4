package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/openfin/accounts-api/internal/consent"
	"github.com/openfin/accounts-api/internal/domain"
	"github.com/openfin/accounts-api/internal/events"
	"github.com/openfin/accounts-api/internal/page"
)

// ListAccountsInput is the request for the account listing pipeline.
type ListAccountsInput struct {
	ConsentID      string
	OrganizationID string
	InteractionID  string
	Page           int    // 1-based; 0 means default (1)
	PageSize       int    // 0 means default (25)
	AccountType    string // optional filter; empty means all types
	PaginationKey  string // optional opaque key
}

// ListAccountsOutput is the pipeline's result before wire mapping.
type ListAccountsOutput struct {
	Accounts    []domain.Account
	Page        page.Info
	RequestedAt time.Time
}

// listAccountsContext is the request-scoped state threaded through the
// stages. It is exclusively owned by one request.
type listAccountsContext struct {
	in           ListAccountsInput
	filter       domain.AccountType
	key          string
	accounts     []domain.Account
	totalRecords int64
	totalPages   int
	links        page.Links
	requestedAt  time.Time
}

// ListAccounts runs the ten-step listing pipeline.
func (s *Service) ListAccounts(ctx context.Context, in ListAccountsInput) (*ListAccountsOutput, error) {
	in = withListDefaults(in)
	filter, err := validateListInput(in)
	if err != nil {
		return nil, err
	}

	lc := &listAccountsContext{in: in, filter: filter, requestedAt: time.Now().UTC()}
	if err := runStages(ctx, s.accountListStages(), lc); err != nil {
		return nil, err
	}

	return &ListAccountsOutput{
		Accounts: lc.accounts,
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

func (s *Service) accountListStages() []stage[*listAccountsContext] {
	return []stage[*listAccountsContext]{
		{"rate-limit gate", s.accountsRateLimitGate},
		{"consent gate", s.accountsConsentGate},
		{"permission gate", s.accountsPermissionGate},
		{"pagination-key check", s.accountsKeyCheck},
		{"fetch", s.accountsFetch},
		{"pagination", s.accountsPaginate},
		{"links", s.accountsLinks},
		{"usage recording", s.accountsRecordUsage},
		{"access event", s.accountsPublishAccess},
	}
}

// Gates. Nothing is fetched and no usage is recorded when one fails.

func (s *Service) accountsRateLimitGate(ctx context.Context, lc *listAccountsContext) error {
	if !s.limiter.IsWithinLimit(ctx, lc.in.OrganizationID, EndpointAccounts) {
		return fmt.Errorf("organisation %s: %w", lc.in.OrganizationID, domain.ErrRateLimitExceeded)
	}
	return nil
}

func (s *Service) accountsConsentGate(ctx context.Context, lc *listAccountsContext) error {
	if !s.consents.IsValid(ctx, lc.in.ConsentID) {
		return fmt.Errorf("consent %s: %w", lc.in.ConsentID, domain.ErrUnauthorized)
	}
	return nil
}

func (s *Service) accountsPermissionGate(ctx context.Context, lc *listAccountsContext) error {
	if !s.consents.HasPermission(ctx, lc.in.ConsentID, consent.PermissionAccountsRead) {
		return fmt.Errorf("consent %s lacks %s: %w", lc.in.ConsentID, consent.PermissionAccountsRead, domain.ErrForbidden)
	}
	return nil
}

// accountsKeyCheck degrades rather than fails: a supplied key that no longer
// validates is dropped and link building falls back to first-page semantics.
func (s *Service) accountsKeyCheck(ctx context.Context, lc *listAccountsContext) error {
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

// accountsFetch retrieves the page and the total count. The count always
// comes from the provider's count query with the same filter; it is never
// inferred from the size of the returned page.
func (s *Service) accountsFetch(ctx context.Context, lc *listAccountsContext) error {
	accounts, err := s.accounts.Fetch(ctx, lc.in.ConsentID, lc.filter, lc.in.Page-1, lc.in.PageSize)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	total, err := s.accounts.Count(ctx, lc.in.ConsentID, lc.filter)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	lc.accounts = accounts
	lc.totalRecords = total
	return nil
}

func (s *Service) accountsPaginate(_ context.Context, lc *listAccountsContext) error {
	lc.totalPages = page.TotalPages(lc.totalRecords, lc.in.PageSize)
	return nil
}

// accountsLinks mints a fresh pagination key when none survived validation
// and the result spans more than one page, then builds the link set.
func (s *Service) accountsLinks(ctx context.Context, lc *listAccountsContext) error {
	if lc.key == "" && lc.totalPages > 1 {
		key, err := s.keys.Generate(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
		}
		lc.key = key
	}
	lc.links = page.BuildLinks(page.LinkParams{
		Base:        s.baseURL + EndpointAccounts,
		Page:        lc.in.Page,
		PageSize:    lc.in.PageSize,
		AccountType: lc.in.AccountType,
		Key:         lc.key,
		TotalPages:  lc.totalPages,
	})
	return nil
}

func (s *Service) accountsRecordUsage(ctx context.Context, lc *listAccountsContext) error {
	if err := s.limiter.Record(ctx, lc.in.OrganizationID, EndpointAccounts); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	return nil
}

func (s *Service) accountsPublishAccess(ctx context.Context, lc *listAccountsContext) error {
	err := s.sink.PublishAccess(ctx, events.AccountsListed, events.AccessEvent{
		ConsentID:      lc.in.ConsentID,
		OrganizationID: lc.in.OrganizationID,
		InteractionID:  lc.in.InteractionID,
		Operation:      "list-accounts",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	return nil
}

func withListDefaults(in ListAccountsInput) ListAccountsInput {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.PageSize == 0 {
		in.PageSize = page.DefaultSize
	}
	return in
}

func validateListInput(in ListAccountsInput) (domain.AccountType, error) {
	if in.ConsentID == "" {
		return "", fmt.Errorf("%w: consent id is required", domain.ErrInvalidInput)
	}
	if in.OrganizationID == "" {
		return "", fmt.Errorf("%w: organization id is required", domain.ErrInvalidInput)
	}
	if in.Page < 1 {
		return "", fmt.Errorf("%w: page must be >= 1", domain.ErrInvalidInput)
	}
	if in.PageSize < 1 || in.PageSize > page.MaxSize {
		return "", fmt.Errorf("%w: page size must be between 1 and %d", domain.ErrInvalidInput, page.MaxSize)
	}
	if in.AccountType == "" {
		return "", nil
	}
	filter, err := domain.ParseAccountType(in.AccountType)
	if err != nil {
		return "", err
	}
	return filter, nil
}

// GetAccountInput is the request for a single account read.
type GetAccountInput struct {
	ConsentID      string
	OrganizationID string
	InteractionID  string
	AccountID      string
}

// GetAccountOutput is the single-account result before wire mapping.
type GetAccountOutput struct {
	Account     domain.Account
	SelfLink    string
	RequestedAt time.Time
}

// GetAccount runs the gate sequence and fetches one account. Unlike list
// operations, the emitted access event names the account that was read.
func (s *Service) GetAccount(ctx context.Context, in GetAccountInput) (*GetAccountOutput, error) {
	requestedAt := time.Now().UTC()

	accountID, err := domain.NewAccountID(in.AccountID)
	if err != nil {
		return nil, err
	}
	if !s.limiter.IsWithinLimit(ctx, in.OrganizationID, EndpointAccounts) {
		return nil, fmt.Errorf("organisation %s: %w", in.OrganizationID, domain.ErrRateLimitExceeded)
	}
	if !s.consents.IsValid(ctx, in.ConsentID) {
		return nil, fmt.Errorf("consent %s: %w", in.ConsentID, domain.ErrUnauthorized)
	}
	if !s.consents.HasPermission(ctx, in.ConsentID, consent.PermissionAccountsRead) {
		return nil, fmt.Errorf("consent %s lacks %s: %w", in.ConsentID, consent.PermissionAccountsRead, domain.ErrForbidden)
	}

	account, err := s.accounts.GetByID(ctx, in.ConsentID, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	if err := s.limiter.Record(ctx, in.OrganizationID, EndpointAccounts); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	err = s.sink.PublishAccess(ctx, events.AccountRead, events.AccessEvent{
		ConsentID:      in.ConsentID,
		OrganizationID: in.OrganizationID,
		InteractionID:  in.InteractionID,
		Operation:      "get-account",
		AccountID:      accountID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	return &GetAccountOutput{
		Account:     account,
		SelfLink:    s.baseURL + EndpointAccounts + "/" + accountID.String(),
		RequestedAt: requestedAt,
	}, nil
}
