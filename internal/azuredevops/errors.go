package azuredevops

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a client failure into one of the categories the
// calling layer is allowed to branch on. Callers match on the kind via
// the Is* predicates, never on message text.
type ErrorKind int

const (
	// KindUnknown covers any transport or decoding failure that does
	// not fit a more specific category.
	KindUnknown ErrorKind = iota

	// KindNotFound means the requested project, iteration, or work
	// item does not exist; recoverable by picking another target.
	KindNotFound

	// KindAuthFailed means the service rejected the credentials
	// (HTTP 401/403). Never retried; the operator must re-enter them.
	KindAuthFailed

	// KindRateLimited means the service throttled the request
	// (HTTP 429). No automatic backoff is attempted here.
	KindRateLimited
)

// Error is the failure type raised by all Client operations.
type Error struct {
	Kind ErrorKind

	// Resource and ID identify the missing target for KindNotFound
	// ("project", "iteration").
	Resource string
	ID       string

	// Hint carries operator guidance, e.g. the token scope required.
	Hint string

	// Err is the underlying transport error, kept for diagnostics.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		if e.Resource == "iteration" {
			return fmt.Sprintf("iteration %q not found in project", e.ID)
		}
		return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
	case KindAuthFailed:
		msg := "authentication failed: check your personal access token"
		if e.Hint != "" {
			msg += " (" + e.Hint + ")"
		}
		return msg
	case KindRateLimited:
		return "rate limit exceeded, retry later"
	default:
		if e.Err != nil {
			return fmt.Sprintf("azure devops request failed: %v", e.Err)
		}
		return "azure devops request failed"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a not-found client error.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsAuthFailed reports whether err is an authentication failure.
func IsAuthFailed(err error) bool {
	return kindOf(err) == KindAuthFailed
}

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool {
	return kindOf(err) == KindRateLimited
}

func kindOf(err error) ErrorKind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindUnknown
}

func notFoundError(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Resource: resource, ID: id}
}

func authError(hint string) *Error {
	return &Error{Kind: KindAuthFailed, Hint: hint}
}

func rateLimitedError() *Error {
	return &Error{Kind: KindRateLimited}
}

func unknownError(op string, err error) *Error {
	return &Error{Kind: KindUnknown, Err: fmt.Errorf("%s: %w", op, err)}
}
