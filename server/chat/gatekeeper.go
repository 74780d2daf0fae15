package chat

import (
	"fmt"
	"strings"
)

// RejectedQueryError is returned when a generated statement is not a
// read-only query. The rejected statement is kept so it can be persisted
// for audit.
type RejectedQueryError struct {
	Query string
}

func (e *RejectedQueryError) Error() string {
	return fmt.Sprintf("only SELECT queries are allowed, got: %q", e.Query)
}

// ValidateReadOnly accepts a statement only if its leading keyword is
// SELECT, after trimming whitespace and case-folding.
//
// This is a syntactic allow-list, not a SQL parser: it does not catch a
// SELECT smuggling side effects through functions or CTEs wrapping writes.
// That residual risk is bounded by granting the execution path a read-only
// database role in deployment.
func ValidateReadOnly(query string) error {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return &RejectedQueryError{Query: query}
	}
	return nil
}
