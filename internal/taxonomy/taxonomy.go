// Package taxonomy holds the fixed set of categories allowed for each transaction type.
package taxonomy

import (
	"errors"
	"fmt"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

var (
	// ErrInvalidType indicates the transaction type is not income or expense.
	ErrInvalidType = errors.New("invalid transaction type")
	// ErrInvalidCategory indicates the category is not allowed for the type.
	ErrInvalidCategory = errors.New("invalid category for transaction type")
)

var (
	expenseCategories = []string{
		"Food",
		"Transportation",
		"Entertainment",
		"Shopping",
		"Bills",
		"Healthcare",
		"Education",
		"Other",
	}
	incomeCategories = []string{
		"Salary",
		"Freelance",
		"Business",
		"Investment",
		"Other",
	}
)

// Taxonomy maps each transaction type to its ordered category list.
// A Taxonomy is read-only after construction and safe for concurrent use.
type Taxonomy struct {
	ordered map[model.TransactionType][]string
	lookup  map[model.TransactionType]map[string]struct{}
}

var defaultTaxonomy = mustNew(map[model.TransactionType][]string{
	model.TypeExpense: expenseCategories,
	model.TypeIncome:  incomeCategories,
})

// Default returns the process-wide taxonomy.
func Default() *Taxonomy {
	return defaultTaxonomy
}

// New builds a Taxonomy from per-type category lists.
// Lists are copied; duplicate or empty names are rejected.
func New(categories map[model.TransactionType][]string) (*Taxonomy, error) {
	tx := &Taxonomy{
		ordered: make(map[model.TransactionType][]string, len(categories)),
		lookup:  make(map[model.TransactionType]map[string]struct{}, len(categories)),
	}

	for typ, names := range categories {
		if !typ.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
		}
		set := make(map[string]struct{}, len(names))
		for _, name := range names {
			if name == "" {
				return nil, fmt.Errorf("empty category name for %s", typ)
			}
			if _, dup := set[name]; dup {
				return nil, fmt.Errorf("duplicate category %q for %s", name, typ)
			}
			set[name] = struct{}{}
		}
		tx.ordered[typ] = append([]string(nil), names...)
		tx.lookup[typ] = set
	}

	return tx, nil
}

func mustNew(categories map[model.TransactionType][]string) *Taxonomy {
	tx, err := New(categories)
	if err != nil {
		panic(err)
	}
	return tx
}

// Validate checks that category is allowed for typ.
func (tx *Taxonomy) Validate(typ model.TransactionType, category string) error {
	set, ok := tx.lookup[typ]
	if !ok {
		return ErrInvalidType
	}
	if _, ok := set[category]; !ok {
		return ErrInvalidCategory
	}
	return nil
}

// Categories returns a copy of the ordered categories for typ.
// Unknown types yield nil.
func (tx *Taxonomy) Categories(typ model.TransactionType) []string {
	names, ok := tx.ordered[typ]
	if !ok {
		return nil
	}
	return append([]string(nil), names...)
}

// All returns a copy of every type's category list.
func (tx *Taxonomy) All() map[model.TransactionType][]string {
	out := make(map[model.TransactionType][]string, len(tx.ordered))
	for typ := range tx.ordered {
		out[typ] = tx.Categories(typ)
	}
	return out
}

// Validate checks category against the default taxonomy.
func Validate(typ model.TransactionType, category string) error {
	return defaultTaxonomy.Validate(typ, category)
}
