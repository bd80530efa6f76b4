package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openfin/accounts-api/internal/consent"
	"github.com/openfin/accounts-api/internal/domain"
	"github.com/openfin/accounts-api/internal/events"
)

func baseListInput() ListAccountsInput {
	return ListAccountsInput{
		ConsentID:      "c1",
		OrganizationID: "o1",
		InteractionID:  "int-001",
	}
}

func TestListAccountsEndToEnd(t *testing.T) {
	svc, deps := newTestService(t)
	deps.accounts.fetchFn = func(_ string, _ domain.AccountType, page, pageSize int) ([]domain.Account, error) {
		if page != 1 {
			t.Errorf("expected zero-based page 1 for request page 2, got %d", page)
		}
		if pageSize != 10 {
			t.Errorf("expected page size 10, got %d", pageSize)
		}
		return makeAccounts(t, 10), nil
	}
	deps.accounts.countFn = func(_ string, _ domain.AccountType) (int64, error) { return 25, nil }

	in := baseListInput()
	in.Page = 2
	in.PageSize = 10
	out, err := svc.ListAccounts(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Page.TotalRecords != 25 {
		t.Errorf("expected 25 total records, got %d", out.Page.TotalRecords)
	}
	if out.Page.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", out.Page.TotalPages)
	}
	if len(out.Accounts) != 10 {
		t.Errorf("expected 10 accounts on the page, got %d", len(out.Accounts))
	}

	links := out.Page.Links
	assertLink := func(name, link, fragment string) {
		t.Helper()
		if link == "" {
			t.Errorf("expected %s link to be present", name)
			return
		}
		if !strings.Contains(link, fragment) {
			t.Errorf("expected %s link to contain %q, got %q", name, fragment, link)
		}
	}
	assertLink("self", links.Self, "page=2")
	assertLink("first", links.First, "page=1")
	assertLink("prev", links.Prev, "page=1")
	assertLink("next", links.Next, "page=3")
	assertLink("last", links.Last, "page=3")

	if deps.limiter.recordCalls != 1 {
		t.Errorf("expected usage recorded exactly once, got %d", deps.limiter.recordCalls)
	}
	if len(deps.sink.published) != 1 {
		t.Fatalf("expected exactly one access event, got %d", len(deps.sink.published))
	}
	ev := deps.sink.published[0]
	if ev.eventType != events.AccountsListed {
		t.Errorf("expected %s event, got %s", events.AccountsListed, ev.eventType)
	}
	if ev.access.AccountID != "" {
		t.Errorf("list access event must not identify accounts, got %s", ev.access.AccountID)
	}
	if ev.access.ConsentID != "c1" || ev.access.OrganizationID != "o1" || ev.access.InteractionID != "int-001" {
		t.Errorf("access event is missing identifiers: %+v", ev.access)
	}
}

func TestListAccountsNoRecords(t *testing.T) {
	svc, deps := newTestService(t)
	deps.accounts.fetchFn = func(string, domain.AccountType, int, int) ([]domain.Account, error) { return nil, nil }
	deps.accounts.countFn = func(string, domain.AccountType) (int64, error) { return 0, nil }

	out, err := svc.ListAccounts(context.Background(), baseListInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Page.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", out.Page.TotalPages)
	}
	if len(out.Accounts) != 0 {
		t.Errorf("expected empty account list, got %d", len(out.Accounts))
	}
	links := out.Page.Links
	if links.Self == "" {
		t.Errorf("expected self link")
	}
	if links.First != "" || links.Prev != "" || links.Next != "" || links.Last != "" {
		t.Errorf("expected only self link when there are no records, got %+v", links)
	}
	if deps.keys.generateCalls != 0 {
		t.Errorf("expected no pagination key for a single-page result, got %d generations", deps.keys.generateCalls)
	}
}

func TestListAccountsGateRejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(deps *testDeps)
		wantErr error
	}{
		{
			name: "rate limit exceeded",
			setup: func(deps *testDeps) {
				deps.limiter.withinFn = func(string, string) bool { return false }
			},
			wantErr: domain.ErrRateLimitExceeded,
		},
		{
			name: "invalid consent",
			setup: func(deps *testDeps) {
				deps.consents.validFn = func(string) bool { return false }
			},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name: "missing permission",
			setup: func(deps *testDeps) {
				deps.consents.permFn = func(string, consent.Permission) bool { return false }
			},
			wantErr: domain.ErrForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService(t)
			tt.setup(deps)

			_, err := svc.ListAccounts(context.Background(), baseListInput())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			// A rejected request fetches nothing, records no usage and
			// publishes no event.
			if deps.accounts.fetchCalls != 0 {
				t.Errorf("expected no fetch, got %d calls", deps.accounts.fetchCalls)
			}
			if deps.limiter.recordCalls != 0 {
				t.Errorf("expected no usage recorded, got %d calls", deps.limiter.recordCalls)
			}
			if len(deps.sink.published) != 0 {
				t.Errorf("expected no access event, got %d", len(deps.sink.published))
			}
		})
	}
}

func TestListAccountsGateOrder(t *testing.T) {
	// The rate-limit gate runs before the consent gates: when it rejects,
	// the consent service must not have been consulted at all.
	svc, deps := newTestService(t)
	deps.limiter.withinFn = func(string, string) bool { return false }

	_, err := svc.ListAccounts(context.Background(), baseListInput())
	if !errors.Is(err, domain.ErrRateLimitExceeded) {
		t.Fatalf("expected rate-limit rejection, got %v", err)
	}
	if deps.consents.validCalls != 0 || deps.consents.permCalls != 0 {
		t.Errorf("consent service consulted despite rate-limit rejection: valid=%d perm=%d",
			deps.consents.validCalls, deps.consents.permCalls)
	}
}

func TestListAccountsExpiredKeyDegrades(t *testing.T) {
	svc, deps := newTestService(t)
	deps.keys.validFn = func(string) bool { return false }
	deps.accounts.fetchFn = func(string, domain.AccountType, int, int) ([]domain.Account, error) {
		return makeAccounts(t, 10), nil
	}
	deps.accounts.countFn = func(string, domain.AccountType) (int64, error) { return 25, nil }

	in := baseListInput()
	in.PageSize = 10
	in.PaginationKey = "pk-expired"
	out, err := svc.ListAccounts(context.Background(), in)
	if err != nil {
		t.Fatalf("expired pagination key must not fail the request, got %v", err)
	}

	if strings.Contains(out.Page.Links.Self, "pk-expired") {
		t.Errorf("expired key leaked into links: %s", out.Page.Links.Self)
	}
	// A fresh key is minted for the multi-page result.
	if deps.keys.generateCalls != 1 {
		t.Errorf("expected one fresh key, got %d generations", deps.keys.generateCalls)
	}
	if !strings.Contains(out.Page.Links.Self, "pagination-key=pk-fresh") {
		t.Errorf("expected fresh key in links: %s", out.Page.Links.Self)
	}
}

func TestListAccountsValidKeyIsReused(t *testing.T) {
	svc, deps := newTestService(t)
	deps.keys.validFn = func(key string) bool { return key == "pk-live" }
	deps.accounts.fetchFn = func(string, domain.AccountType, int, int) ([]domain.Account, error) {
		return makeAccounts(t, 10), nil
	}
	deps.accounts.countFn = func(string, domain.AccountType) (int64, error) { return 25, nil }

	in := baseListInput()
	in.PageSize = 10
	in.PaginationKey = "pk-live"
	out, err := svc.ListAccounts(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.keys.generateCalls != 0 {
		t.Errorf("expected no key generation when a valid key is supplied, got %d", deps.keys.generateCalls)
	}
	if !strings.Contains(out.Page.Links.Next, "pagination-key=pk-live") {
		t.Errorf("expected supplied key to be reused in links: %s", out.Page.Links.Next)
	}
}

func TestListAccountsCountIsAuthoritative(t *testing.T) {
	// The page slice has 10 records but the count query says 25: total
	// pagination state must come from the count, never the slice length.
	svc, deps := newTestService(t)
	deps.accounts.fetchFn = func(string, domain.AccountType, int, int) ([]domain.Account, error) {
		return makeAccounts(t, 10), nil
	}
	deps.accounts.countFn = func(string, domain.AccountType) (int64, error) { return 25, nil }

	in := baseListInput()
	in.PageSize = 10
	out, err := svc.ListAccounts(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Page.TotalRecords != 25 {
		t.Errorf("expected total from count query (25), got %d", out.Page.TotalRecords)
	}
	if out.Page.TotalPages != 3 {
		t.Errorf("expected 3 pages from count query, got %d", out.Page.TotalPages)
	}
}

func TestListAccountsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *ListAccountsInput)
	}{
		{name: "negative page", mutate: func(in *ListAccountsInput) { in.Page = -1 }},
		{name: "page size above maximum", mutate: func(in *ListAccountsInput) { in.PageSize = 1001 }},
		{name: "unknown account type", mutate: func(in *ListAccountsInput) { in.AccountType = "offshore" }},
		{name: "missing consent id", mutate: func(in *ListAccountsInput) { in.ConsentID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService(t)
			in := baseListInput()
			tt.mutate(&in)

			_, err := svc.ListAccounts(context.Background(), in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if deps.limiter.checkCalls != 0 {
				t.Errorf("invalid input must fail before any gate runs, got %d checks", deps.limiter.checkCalls)
			}
		})
	}
}

func TestListAccountsDefaults(t *testing.T) {
	svc, deps := newTestService(t)
	deps.accounts.fetchFn = func(_ string, _ domain.AccountType, page, pageSize int) ([]domain.Account, error) {
		if page != 0 {
			t.Errorf("expected zero-based page 0 by default, got %d", page)
		}
		if pageSize != 25 {
			t.Errorf("expected default page size 25, got %d", pageSize)
		}
		return makeAccounts(t, 1), nil
	}
	deps.accounts.countFn = func(string, domain.AccountType) (int64, error) { return 1, nil }

	out, err := svc.ListAccounts(context.Background(), baseListInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Page.Page != 1 || out.Page.PageSize != 25 {
		t.Errorf("expected defaults page=1 size=25, got page=%d size=%d", out.Page.Page, out.Page.PageSize)
	}
}

func TestListAccountsUpstreamFailure(t *testing.T) {
	svc, deps := newTestService(t)
	deps.accounts.fetchFn = func(string, domain.AccountType, int, int) ([]domain.Account, error) {
		return nil, errors.New("provider is down")
	}

	_, err := svc.ListAccounts(context.Background(), baseListInput())
	if !errors.Is(err, domain.ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if deps.limiter.recordCalls != 0 {
		t.Errorf("failed fetch must not record usage, got %d calls", deps.limiter.recordCalls)
	}
	if len(deps.sink.published) != 0 {
		t.Errorf("failed fetch must not publish an event, got %d", len(deps.sink.published))
	}
}

func TestGetAccount(t *testing.T) {
	svc, deps := newTestService(t)
	account := makeAccounts(t, 1)[0]
	deps.accounts.getFn = func(_ string, id domain.AccountID) (domain.Account, error) {
		if id.String() != "acc-000" {
			return domain.Account{}, domain.ErrNotFound
		}
		return account, nil
	}

	out, err := svc.GetAccount(context.Background(), GetAccountInput{
		ConsentID:      "c1",
		OrganizationID: "o1",
		InteractionID:  "int-001",
		AccountID:      "acc-000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Account.ID().String() != "acc-000" {
		t.Errorf("expected acc-000, got %s", out.Account.ID())
	}
	if !strings.HasSuffix(out.SelfLink, "/accounts/acc-000") {
		t.Errorf("unexpected self link: %s", out.SelfLink)
	}
	if deps.limiter.recordCalls != 1 {
		t.Errorf("expected usage recorded once, got %d", deps.limiter.recordCalls)
	}
	if len(deps.sink.published) != 1 {
		t.Fatalf("expected one access event, got %d", len(deps.sink.published))
	}
	if deps.sink.published[0].access.AccountID != "acc-000" {
		t.Errorf("single-account read must name the account in the event, got %q", deps.sink.published[0].access.AccountID)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	svc, deps := newTestService(t)
	deps.accounts.getFn = func(string, domain.AccountID) (domain.Account, error) {
		return domain.Account{}, domain.ErrNotFound
	}

	_, err := svc.GetAccount(context.Background(), GetAccountInput{
		ConsentID:      "c1",
		OrganizationID: "o1",
		AccountID:      "acc-999",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if deps.limiter.recordCalls != 0 {
		t.Errorf("not-found read must not record usage, got %d", deps.limiter.recordCalls)
	}
}
