package database

import (
	"errors"

	"github.com/lib/pq"
	"github.com/safar/marketplace/internal/apperr"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		}
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func IsCheckViolation(err error) bool {
	return hasCode(err, codeCheckViolation)
}

// ConstraintName returns the violated constraint, if err carries one.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

var (
	ErrUserNotFound         = apperr.NotFound("User not found")
	ErrProfileNotFound      = apperr.NotFound("Profile not found")
	ErrShopNotFound         = apperr.NotFound("Shop not found")
	ErrCategoryNotFound     = apperr.NotFound("Category not found")
	ErrProductNotFound      = apperr.NotFound("Product not found")
	ErrVariantNotFound      = apperr.NotFound("Variant not found")
	ErrCouponNotFound       = apperr.NotFound("Coupon not found")
	ErrOrderNotFound        = apperr.NotFound("Order not found")
	ErrPaymentNotFound      = apperr.NotFound("Payment not found")
	ErrCancellationNotFound = apperr.NotFound("Cancellation request not found")
	ErrInsufficientStock    = apperr.BadRequest("Insufficient stock")
	ErrCouponExhausted      = apperr.BadRequest("Coupon is not valid or has expired")
	ErrAlreadyProcessed     = apperr.BadRequest("This cancellation request has already been processed")
	ErrOrderNotCancellable  = apperr.BadRequest("Order can no longer be cancelled")
)
