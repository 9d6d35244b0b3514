package ledger

import (
	"errors"
	"net/http"
)

// Code is a machine-readable rejection reason.
type Code string

const (
	// Authorization
	CodeNotRegisteredAsParent Code = "NOT_REGISTERED_AS_PARENT"
	CodeNotRegisteredAsChild  Code = "NOT_REGISTERED_AS_CHILD"
	CodeNotRegistered         Code = "NOT_REGISTERED"
	CodeAlreadyParent         Code = "ALREADY_REGISTERED_AS_PARENT"
	CodeAlreadyChild          Code = "ALREADY_REGISTERED_AS_CHILD"

	// Identity and relationship
	CodeAddressIsParent      Code = "ADDRESS_IS_PARENT"
	CodeAddressIsChild       Code = "ADDRESS_IS_CHILD"
	CodeAddressNotAChild     Code = "ADDRESS_NOT_A_CHILD"
	CodeNotInYourFamilyGroup Code = "NOT_IN_YOUR_FAMILY_GROUP"
	CodeNotYourTask          Code = "NOT_YOUR_TASK"
	CodeNotYourReward        Code = "NOT_YOUR_REWARD"

	// Reference
	CodeInvalidID Code = "INVALID_ID"

	// State conflict
	CodeAlreadyCompleted Code = "ALREADY_COMPLETED"
	CodeAlreadyApproved  Code = "ALREADY_APPROVED"
	CodeAlreadyPurchased Code = "ALREADY_PURCHASED"
	CodeAlreadyRedeemed  Code = "ALREADY_REDEEMED"
	CodeNotYetCompleted  Code = "NOT_YET_COMPLETED"
	CodeNotYetPurchased  Code = "NOT_YET_PURCHASED"
	CodeNotYetRedeemed   Code = "NOT_YET_REDEEMED"
	CodeExpired          Code = "EXPIRED"

	// Resource
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeAmountOverflow      Code = "AMOUNT_OVERFLOW"

	// Validation
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInvalidAddress  Code = "INVALID_ADDRESS"
)

// Kind groups codes by the class of rule they enforce.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindRelationship  Kind = "relationship"
	KindReference     Kind = "reference"
	KindStateConflict Kind = "state_conflict"
	KindResource      Kind = "resource"
	KindValidation    Kind = "validation"
	KindInternal      Kind = "internal"
)

func (c Code) Kind() Kind {
	switch c {
	case CodeNotRegisteredAsParent, CodeNotRegisteredAsChild, CodeNotRegistered,
		CodeAlreadyParent, CodeAlreadyChild:
		return KindAuthorization
	case CodeAddressIsParent, CodeAddressIsChild, CodeAddressNotAChild,
		CodeNotInYourFamilyGroup, CodeNotYourTask, CodeNotYourReward:
		return KindRelationship
	case CodeInvalidID:
		return KindReference
	case CodeAlreadyCompleted, CodeAlreadyApproved, CodeAlreadyPurchased, CodeAlreadyRedeemed,
		CodeNotYetCompleted, CodeNotYetPurchased, CodeNotYetRedeemed, CodeExpired:
		return KindStateConflict
	case CodeInsufficientBalance, CodeAmountOverflow:
		return KindResource
	case CodeInvalidArgument, CodeInvalidAddress:
		return KindValidation
	default:
		return KindInternal
	}
}

// HTTPStatus maps the code onto the response status the API returns.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindAuthorization, KindRelationship:
		return http.StatusForbidden
	case KindReference:
		return http.StatusNotFound
	case KindStateConflict:
		return http.StatusConflict
	case KindResource:
		return http.StatusUnprocessableEntity
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a rejected operation. Nothing was committed.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func withMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if err
// is not a domain rejection.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
