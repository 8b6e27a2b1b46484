package apperror

import "errors"

// Sentinel errors for the procurement core. Services wrap these with
// context via fmt.Errorf("...: %w", err); handlers map them to HTTP codes
// with errors.Is.
var (
	// ErrValidation covers malformed numeric/date input and missing
	// required fields. Never retried.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound indicates a referenced entity is missing.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller lacks the required capability.
	// No detail beyond "not allowed" is surfaced.
	ErrForbidden = errors.New("not allowed")
	// ErrInvalidState indicates the operation is illegal for the
	// document's current status.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrAlreadyClosed indicates a cancel against a terminal document.
	ErrAlreadyClosed = errors.New("document already closed")
	// ErrQuantityInvariant covers negative quantities, exceeds-remaining
	// receipts, and accepted+rejected != received.
	ErrQuantityInvariant = errors.New("quantity invariant violated")
	// ErrNoApproverFound means the routing resolver exhausted all
	// candidate roles; submission is blocked.
	ErrNoApproverFound = errors.New("no approver found")
	// ErrResponseExists rejects a second RFQ response from the same
	// vendor; resubmission must use the update path.
	ErrResponseExists = errors.New("vendor already responded")
)
