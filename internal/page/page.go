// Package page computes pagination state and navigation links for listing
// responses. All values are derived per request and never persisted.
package page

import (
	"net/url"
	"strconv"
)

const (
	// DefaultSize is the page size applied when the caller sends none.
	DefaultSize = 25
	// MaxSize is the enforced upper bound on page size.
	MaxSize = 1000
)

// Info is the pagination state for one response.
type Info struct {
	TotalRecords int64
	TotalPages   int
	Page         int
	PageSize     int
	Links        Links
	Key          string
}

// Links holds up to five navigation URLs. An empty string means the link is
// absent and must be omitted from the response.
type Links struct {
	Self  string
	First string
	Prev  string
	Next  string
	Last  string
}

// TotalPages computes the page count: zero when there are no records,
// otherwise ceil(totalRecords/pageSize).
func TotalPages(totalRecords int64, pageSize int) int {
	if totalRecords == 0 {
		return 0
	}
	return int((totalRecords + int64(pageSize) - 1) / int64(pageSize))
}

// LinkParams is the input to BuildLinks.
type LinkParams struct {
	Base        string
	Page        int
	PageSize    int
	AccountType string
	Key         string
	TotalPages  int
}

// BuildLinks constructs the navigation links for one page.
//
// self is always present. first and prev require page > 1, next requires
// page < totalPages, last requires page != totalPages; none of the four is
// emitted when totalPages is zero.
func BuildLinks(p LinkParams) Links {
	links := Links{Self: pageURL(p, p.Page)}
	if p.TotalPages == 0 {
		return links
	}
	if p.Page != 1 {
		links.First = pageURL(p, 1)
	}
	if p.Page > 1 {
		links.Prev = pageURL(p, p.Page-1)
	}
	if p.Page < p.TotalPages {
		links.Next = pageURL(p, p.Page+1)
	}
	if p.Page != p.TotalPages {
		links.Last = pageURL(p, p.TotalPages)
	}
	return links
}

// pageURL renders base?page=P&page-size=S[&accountType=T][&pagination-key=K]
// with every query value percent-encoded.
func pageURL(p LinkParams, pageNum int) string {
	u := p.Base +
		"?page=" + strconv.Itoa(pageNum) +
		"&page-size=" + strconv.Itoa(p.PageSize)
	if p.AccountType != "" {
		u += "&accountType=" + url.QueryEscape(p.AccountType)
	}
	if p.Key != "" {
		u += "&pagination-key=" + url.QueryEscape(p.Key)
	}
	return u
}
