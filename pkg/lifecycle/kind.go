// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import (
	"errors"
	"fmt"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
)

// Kind is one caller-facing failure category. The set is fixed; every remote
// fault ends up as exactly one Kind.
type Kind string

const (
	KindNone                    Kind = ""
	KindInvalidRequest          Kind = "InvalidRequest"
	KindNotFound                Kind = "NotFound"
	KindAlreadyExists           Kind = "AlreadyExists"
	KindServiceLimitExceeded    Kind = "ServiceLimitExceeded"
	KindThrottling              Kind = "Throttling"
	KindServiceInternalError    Kind = "ServiceInternalError"
	KindNotStabilized           Kind = "NotStabilized"
	KindNotUpdatable            Kind = "NotUpdatable"
	KindAccessDenied            Kind = "AccessDenied"
	KindGeneralServiceException Kind = "GeneralServiceException"
)

// Retryable reports whether a caller may retry an operation that failed with
// this kind, after backing off.
func (k Kind) Retryable() bool {
	switch k {
	case KindThrottling, KindServiceInternalError:
		return true
	default:
		return false
	}
}

// ToResourceErrorCode converts a kind to the formae operation error code.
func (k Kind) ToResourceErrorCode() resource.OperationErrorCode {
	switch k {
	case KindNone:
		return ""
	case KindInvalidRequest:
		return resource.OperationErrorCodeInvalidRequest
	case KindNotFound:
		return resource.OperationErrorCodeNotFound
	case KindAlreadyExists:
		return resource.OperationErrorCodeAlreadyExists
	case KindServiceLimitExceeded:
		return resource.OperationErrorCodeServiceLimitExceeded
	case KindThrottling:
		return resource.OperationErrorCodeThrottling
	case KindServiceInternalError:
		return resource.OperationErrorCodeServiceInternalError
	case KindNotUpdatable:
		return resource.OperationErrorCodeNotUpdatable
	case KindAccessDenied:
		return resource.OperationErrorCodeAccessDenied
	case KindGeneralServiceException:
		return resource.OperationErrorCodeGeneralServiceException
	default:
		// NotStabilized and anything added later share the formae spelling.
		return resource.OperationErrorCode(k)
	}
}

// Error is a classified failure. Err keeps the original fault for errors.As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var kinds = []Kind{
	KindNone,
	KindInvalidRequest,
	KindNotFound,
	KindAlreadyExists,
	KindServiceLimitExceeded,
	KindThrottling,
	KindServiceInternalError,
	KindNotStabilized,
	KindNotUpdatable,
	KindAccessDenied,
	KindGeneralServiceException,
}

// KindOfErrorCode is the inverse of ToResourceErrorCode.
func KindOfErrorCode(code resource.OperationErrorCode) Kind {
	for _, k := range kinds {
		if k.ToResourceErrorCode() == code {
			return k
		}
	}
	return KindGeneralServiceException
}

// KindOf returns the kind carried by err, or GeneralServiceException for an
// unclassified error.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindGeneralServiceException
}
