package page

import (
	"strings"
	"testing"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name         string
		totalRecords int64
		pageSize     int
		want         int
	}{
		{name: "no records means no pages", totalRecords: 0, pageSize: 25, want: 0},
		{name: "exact division", totalRecords: 50, pageSize: 25, want: 2},
		{name: "remainder rounds up", totalRecords: 25, pageSize: 10, want: 3},
		{name: "single record", totalRecords: 1, pageSize: 25, want: 1},
		{name: "page size one", totalRecords: 7, pageSize: 1, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.totalRecords, tt.pageSize); got != tt.want {
				t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.totalRecords, tt.pageSize, got, tt.want)
			}
		})
	}
}

// TestBuildLinksBoundaryGrid covers the page=1/not, page=totalPages/not,
// totalPages=0/not boundary combinations.
func TestBuildLinksBoundaryGrid(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		wantFirst  bool
		wantPrev   bool
		wantNext   bool
		wantLast   bool
	}{
		{name: "no records only self", page: 1, totalPages: 0},
		{name: "single page", page: 1, totalPages: 1},
		{name: "first of many", page: 1, totalPages: 3, wantNext: true, wantLast: true},
		{name: "middle page", page: 2, totalPages: 3, wantFirst: true, wantPrev: true, wantNext: true, wantLast: true},
		{name: "last of many", page: 3, totalPages: 3, wantFirst: true, wantPrev: true},
		{name: "page beyond total", page: 5, totalPages: 3, wantFirst: true, wantPrev: true, wantLast: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := BuildLinks(LinkParams{
				Base:       "https://api.bank.example/accounts",
				Page:       tt.page,
				PageSize:   25,
				TotalPages: tt.totalPages,
			})
			if links.Self == "" {
				t.Fatalf("self link must always be present")
			}
			if got := links.First != ""; got != tt.wantFirst {
				t.Errorf("first link present=%v, want %v", got, tt.wantFirst)
			}
			if got := links.Prev != ""; got != tt.wantPrev {
				t.Errorf("prev link present=%v, want %v", got, tt.wantPrev)
			}
			if got := links.Next != ""; got != tt.wantNext {
				t.Errorf("next link present=%v, want %v", got, tt.wantNext)
			}
			if got := links.Last != ""; got != tt.wantLast {
				t.Errorf("last link present=%v, want %v", got, tt.wantLast)
			}
		})
	}
}

func TestBuildLinksPageNumbers(t *testing.T) {
	links := BuildLinks(LinkParams{
		Base:       "https://api.bank.example/accounts",
		Page:       2,
		PageSize:   10,
		TotalPages: 3,
	})

	assertContains := func(link, fragment string) {
		t.Helper()
		if !strings.Contains(link, fragment) {
			t.Errorf("expected %q in %q", fragment, link)
		}
	}
	assertContains(links.Self, "page=2")
	assertContains(links.First, "page=1")
	assertContains(links.Prev, "page=1")
	assertContains(links.Next, "page=3")
	assertContains(links.Last, "page=3")
	assertContains(links.Self, "page-size=10")
}

func TestBuildLinksQueryEncoding(t *testing.T) {
	links := BuildLinks(LinkParams{
		Base:        "https://api.bank.example/accounts",
		Page:        1,
		PageSize:    25,
		AccountType: "checking",
		Key:         "pk key+special",
		TotalPages:  1,
	})

	if !strings.Contains(links.Self, "accountType=checking") {
		t.Errorf("expected accountType in self link: %s", links.Self)
	}
	if !strings.Contains(links.Self, "pagination-key=pk+key%2Bspecial") {
		t.Errorf("expected encoded pagination key in self link: %s", links.Self)
	}
}

func TestBuildLinksOmitsOptionalParams(t *testing.T) {
	links := BuildLinks(LinkParams{
		Base:       "https://api.bank.example/accounts",
		Page:       1,
		PageSize:   25,
		TotalPages: 1,
	})

	if strings.Contains(links.Self, "accountType") {
		t.Errorf("expected no accountType param: %s", links.Self)
	}
	if strings.Contains(links.Self, "pagination-key") {
		t.Errorf("expected no pagination-key param: %s", links.Self)
	}
	if links.Self != "https://api.bank.example/accounts?page=1&page-size=25" {
		t.Errorf("unexpected self link: %s", links.Self)
	}
}
