package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/money"
)

// MaxDescriptionLength is the longest description accepted, in characters.
const MaxDescriptionLength = 200

// TransactionInput is the raw client payload for create and update.
// Version is only honoured by Update.
type TransactionInput struct {
	Type        string
	Date        string
	Category    string
	Description string
	Amount      string
	Version     *int64
}

// validTransaction holds the parsed fields of a TransactionInput.
type validTransaction struct {
	typ         model.TransactionType
	category    string
	date        model.Date
	description string
	amount      decimal.Decimal
}

func (s *LedgerService) validate(in TransactionInput) (validTransaction, error) {
	var v validTransaction

	for _, f := range []struct{ name, value string }{
		{"type", in.Type},
		{"category", in.Category},
		{"amount", in.Amount},
		{"date", in.Date},
		{"description", in.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			return v, invalid(f.name, ErrMissingField)
		}
	}

	typ, ok := model.ParseTransactionType(strings.TrimSpace(in.Type))
	if !ok {
		return v, invalid("type", ErrInvalidType)
	}
	v.typ = typ

	v.category = strings.TrimSpace(in.Category)
	if err := s.taxonomy.Validate(typ, v.category); err != nil {
		return v, invalid("category", ErrInvalidCategory)
	}

	amount, err := money.Parse(in.Amount)
	if err != nil {
		return v, invalid("amount", fmt.Errorf("%w: %w", ErrInvalidAmount, err))
	}
	v.amount = amount

	date, err := model.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		return v, invalid("date", ErrInvalidDate)
	}
	v.date = date

	v.description = strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(v.description) > MaxDescriptionLength {
		return v, invalid("description", ErrDescriptionTooLong)
	}

	return v, nil
}
