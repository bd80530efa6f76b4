package handler

import (
	"time"

	"github.com/openfin/accounts-api/internal/domain"
	"github.com/openfin/accounts-api/internal/page"
	"github.com/openfin/accounts-api/internal/service"
)

// Wire envelope: data / links / meta. Mapping is a pure transform of the
// pipeline output; absent links are omitted rather than sent empty.

type AccountPayload struct {
	AccountID   string `json:"accountId"`
	Type        string `json:"type"`
	Subtype     string `json:"subtype"`
	BranchCode  string `json:"branchCode,omitempty"`
	Number      string `json:"number"`
	CheckDigit  string `json:"checkDigit,omitempty"`
	CompanyCNPJ string `json:"companyCnpj,omitempty"`
}

type CounterpartyPayload struct {
	TaxID      string `json:"taxId"`
	PersonType string `json:"personType"`
	BankCode   string `json:"bankCode,omitempty"`
	BranchCode string `json:"branchCode,omitempty"`
	Number     string `json:"number,omitempty"`
}

type TransactionPayload struct {
	TransactionID   string               `json:"transactionId"`
	CreditDebitType string               `json:"creditDebitType"`
	Status          string               `json:"status"`
	Type            string               `json:"type"`
	Amount          string               `json:"amount"`
	EffectiveAmount string               `json:"effectiveAmount"`
	Currency        string               `json:"currency"`
	Timestamp       time.Time            `json:"timestamp"`
	Counterparty    *CounterpartyPayload `json:"counterparty,omitempty"`
}

type LinksPayload struct {
	Self  string `json:"self"`
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

type MetaPayload struct {
	TotalRecords    int64     `json:"totalRecords"`
	TotalPages      int       `json:"totalPages"`
	RequestDateTime time.Time `json:"requestDateTime"`
}

type AccountsEnvelope struct {
	Data  []AccountPayload `json:"data"`
	Links LinksPayload     `json:"links"`
	Meta  MetaPayload      `json:"meta"`
}

type AccountEnvelope struct {
	Data  AccountPayload `json:"data"`
	Links LinksPayload   `json:"links"`
	Meta  struct {
		RequestDateTime time.Time `json:"requestDateTime"`
	} `json:"meta"`
}

type TransactionsEnvelope struct {
	Data  []TransactionPayload `json:"data"`
	Links LinksPayload         `json:"links"`
	Meta  MetaPayload          `json:"meta"`
}

func mapAccountsList(out *service.ListAccountsOutput) AccountsEnvelope {
	data := make([]AccountPayload, 0, len(out.Accounts))
	for _, a := range out.Accounts {
		data = append(data, mapAccount(a))
	}
	return AccountsEnvelope{
		Data:  data,
		Links: mapLinks(out.Page.Links),
		Meta: MetaPayload{
			TotalRecords:    out.Page.TotalRecords,
			TotalPages:      out.Page.TotalPages,
			RequestDateTime: out.RequestedAt,
		},
	}
}

func mapSingleAccount(out *service.GetAccountOutput) AccountEnvelope {
	env := AccountEnvelope{
		Data:  mapAccount(out.Account),
		Links: LinksPayload{Self: out.SelfLink},
	}
	env.Meta.RequestDateTime = out.RequestedAt
	return env
}

func mapTransactionsList(out *service.ListTransactionsOutput) TransactionsEnvelope {
	data := make([]TransactionPayload, 0, len(out.Transactions))
	for _, tx := range out.Transactions {
		data = append(data, mapTransaction(tx))
	}
	return TransactionsEnvelope{
		Data:  data,
		Links: mapLinks(out.Page.Links),
		Meta: MetaPayload{
			TotalRecords:    out.Page.TotalRecords,
			TotalPages:      out.Page.TotalPages,
			RequestDateTime: out.RequestedAt,
		},
	}
}

func mapAccount(a domain.Account) AccountPayload {
	return AccountPayload{
		AccountID:   a.ID().String(),
		Type:        string(a.Type()),
		Subtype:     string(a.Subtype()),
		BranchCode:  a.BranchCode(),
		Number:      a.Number(),
		CheckDigit:  a.CheckDigit(),
		CompanyCNPJ: a.CompanyCNPJ(),
	}
}

func mapTransaction(tx domain.Transaction) TransactionPayload {
	p := TransactionPayload{
		TransactionID:   tx.ID().String(),
		CreditDebitType: string(tx.CreditDebit()),
		Status:          string(tx.Status()),
		Type:            string(tx.Type()),
		Amount:          tx.Amount().Value().StringFixed(4),
		EffectiveAmount: tx.EffectiveAmount().Value().StringFixed(4),
		Currency:        tx.Amount().Currency(),
		Timestamp:       tx.Timestamp(),
	}
	if cp := tx.Counterparty(); cp != nil {
		p.Counterparty = &CounterpartyPayload{
			TaxID:      cp.TaxID,
			PersonType: string(cp.PersonType),
			BankCode:   cp.BankCode,
			BranchCode: cp.BranchCode,
			Number:     cp.Number,
		}
	}
	return p
}

func mapLinks(l page.Links) LinksPayload {
	return LinksPayload{
		Self:  l.Self,
		First: l.First,
		Prev:  l.Prev,
		Next:  l.Next,
		Last:  l.Last,
	}
}
