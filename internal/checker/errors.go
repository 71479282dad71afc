package checker

import (
	"errors"
	"fmt"
)

// ErrServiceUnreachable marks a failed liveness check. It is the only failure that
// aborts a run.
var ErrServiceUnreachable = errors.New("service unreachable")

// ContractError is a structural assertion that did not hold for a response.
type ContractError struct {
	// Endpoint is "METHOD /path".
	Endpoint string
	// Field is a gjson-style path into the body, empty for status checks.
	Field  string
	Reason string
}

func (e *ContractError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Endpoint, e.Field, e.Reason)
}

func contractErr(endpoint, field, format string, args ...any) *ContractError {
	return &ContractError{Endpoint: endpoint, Field: field, Reason: fmt.Sprintf(format, args...)}
}
