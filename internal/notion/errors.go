package notion

import (
	"errors"
	"fmt"
)

// Kind classifies upstream failures for the HTTP boundary.
type Kind string

const (
	// KindNotFound covers both absent resources and resources the
	// integration has not been granted access to; the upstream does not
	// distinguish them.
	KindNotFound Kind = "not_found"
	// KindNoDataSource means a database declares zero data sources and
	// can never be queried. Configuration error, not transient.
	KindNoDataSource Kind = "no_data_source"
	// KindUpstream is every other upstream failure.
	KindUpstream Kind = "upstream"
)

// Error carries the taxonomy kind plus the upstream's raw message for
// diagnostics.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Kind, e.Message)
}

// IsNotFound reports whether err is an upstream not-found/no-access error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}
