// Package dto provides Data Transfer Objects for API requests and responses.
// Money and percentages are always rendered as fixed two-decimal strings.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Amount is a monetary value sent as either a JSON number or a JSON string.
// The literal text is kept so no precision is lost before validation.
type Amount string

// UnmarshalJSON accepts 12.5, "12.50" and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*a = Amount(n.String())
		return nil
	default:
		return errors.New("amount must be a number or a string")
	}
}
