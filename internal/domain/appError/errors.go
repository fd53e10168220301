// Package appError holds the failure taxonomy shared by services and handlers.
// Services wrap these sentinels with context; handlers match with errors.Is to
// pick an HTTP status, so clients can tell "fix input" from "retry later".
package appError

import "errors"

var (
	// ErrNotFound - missing document, session or user.
	ErrNotFound = errors.New("not found")

	// ErrForbidden - session ownership or role violation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnverified - chat gating: account email not verified.
	ErrUnverified = errors.New("email verification required")

	// ErrSubscriptionRequired - chat gating: no active subscription window.
	ErrSubscriptionRequired = errors.New("subscription required")

	// ErrProvider - embedding or completion endpoint failure. Retryable.
	ErrProvider = errors.New("provider error")

	// ErrParse - malformed bulk upload input.
	ErrParse = errors.New("parse error")

	// ErrDuplicate - unique constraint hit, e.g. a taken username.
	ErrDuplicate = errors.New("already exists")
)
