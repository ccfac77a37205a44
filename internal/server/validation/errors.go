// Package validation checks and normalizes form input before it reaches the
// services.
package validation

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/dealership/internal/common"
)

// Errors maps a form field to its messages. A nil or empty Errors means the
// input is valid.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Messages returns every message, ordered by field name.
func (e Errors) Messages() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		out = append(out, e[f]...)
	}
	return out
}

func (e Errors) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Unwrap lets errors.Is(err, common.ErrorValidation) match.
func (e Errors) Unwrap() error {
	return common.ErrorValidation
}

// Err returns nil for no errors and e otherwise.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Field builds a one-field Errors value.
func Field(field, msg string) Errors {
	e := Errors{}
	e.Add(field, msg)
	return e
}
