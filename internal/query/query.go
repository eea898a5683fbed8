// Package query filters and orders a user's transactions for listing.
package query

import (
	"errors"
	"sort"
	"strings"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

var (
	// ErrInvalidType indicates the type filter is not income or expense.
	ErrInvalidType = errors.New("invalid type filter")
	// ErrInvalidOrder indicates an unknown ordering was requested.
	ErrInvalidOrder = errors.New("invalid order")
)

// Filter selects transactions by type and category.
// Type and category constraints are combined with AND; multiple categories
// match if any one does. The zero Filter matches everything.
type Filter struct {
	Type       *model.TransactionType
	Categories []string
}

// ParseFilter builds a Filter from raw query values. Empty values are ignored.
func ParseFilter(typ string, categories []string) (Filter, error) {
	var f Filter

	if typ = strings.TrimSpace(typ); typ != "" {
		t, ok := model.ParseTransactionType(typ)
		if !ok {
			return Filter{}, ErrInvalidType
		}
		f.Type = &t
	}

	for _, c := range categories {
		for _, part := range strings.Split(c, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Categories = append(f.Categories, part)
			}
		}
	}

	return f, nil
}

// Matches reports whether t satisfies f.
func (f Filter) Matches(t *model.Transaction) bool {
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if t.Category == c {
			return true
		}
	}
	return false
}

// Apply returns the transactions matching f in their original order.
// The input slice is not modified.
func (f Filter) Apply(txns []*model.Transaction) []*model.Transaction {
	out := make([]*model.Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Order is a presentation ordering for listed transactions.
type Order string

const (
	// OrderDateDesc lists the most recent date first.
	OrderDateDesc Order = "date_desc"
	// OrderDateAsc lists the oldest date first.
	OrderDateAsc Order = "date_asc"
	// OrderCreated keeps storage order (creation order).
	OrderCreated Order = "created"
)

// DefaultOrder is used when the caller does not ask for one.
const DefaultOrder = OrderDateDesc

// ParseOrder validates s. An empty string yields DefaultOrder.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.TrimSpace(s)); o {
	case "":
		return DefaultOrder, nil
	case OrderDateDesc, OrderDateAsc, OrderCreated:
		return o, nil
	default:
		return "", ErrInvalidOrder
	}
}

// Sort orders txns in place. The sort is stable, so transactions on the same
// date keep their storage order.
func Sort(txns []*model.Transaction, o Order) {
	switch o {
	case OrderDateAsc:
		sort.SliceStable(txns, func(i, j int) bool {
			return txns[i].Date.Before(txns[j].Date)
		})
	case OrderDateDesc:
		sort.SliceStable(txns, func(i, j int) bool {
			return txns[j].Date.Before(txns[i].Date)
		})
	}
}
