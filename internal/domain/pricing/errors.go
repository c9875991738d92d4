package pricing

import "fmt"

// Coupon rejection reason codes
const (
	CouponReasonNotFound     = "not-found"
	CouponReasonInactive     = "inactive"
	CouponReasonNotStarted   = "not-started"
	CouponReasonExpired      = "expired"
	CouponReasonExhausted    = "exhausted"
	CouponReasonBelowMinimum = "below-minimum"
)

// CouponInvalidError signals that a coupon cannot be applied to the current
// cart, with a machine-readable reason code.
type CouponInvalidError struct {
	Code   string
	Reason string
}

// Error implements the error interface
func (e *CouponInvalidError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason)
}

// NewCouponInvalidError creates a CouponInvalidError
func NewCouponInvalidError(code, reason string) *CouponInvalidError {
	return &CouponInvalidError{Code: code, Reason: reason}
}
