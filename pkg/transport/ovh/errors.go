// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package ovh

import (
	"fmt"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
)

// ErrorCode represents transport-level error classifications
type ErrorCode string

const (
	ErrorCodeNone             ErrorCode = "NONE"
	ErrorCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrorCodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	ErrorCodeQuotaExceeded    ErrorCode = "QUOTA_EXCEEDED"
	ErrorCodeThrottling       ErrorCode = "THROTTLING"
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeUnknown          ErrorCode = "UNKNOWN"
)

// Error represents a transport layer error with classification
type Error struct {
	Code       ErrorCode
	Message    string
	HTTPCode   int
	Underlying error
}

var _ lifecycle.Fault = (*Error)(nil)

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// FaultCode implements lifecycle.Fault.
func (e *Error) FaultCode() string {
	return string(e.Code)
}

// StatusCode implements lifecycle.Fault.
func (e *Error) StatusCode() int {
	return e.HTTPCode
}

// Throttled implements lifecycle.Fault.
func (e *Error) Throttled() bool {
	return e.Code == ErrorCodeThrottling
}

// ClassifyHTTPStatus maps HTTP status codes to error codes
func ClassifyHTTPStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 200, 201, 204:
		return ErrorCodeNone
	case 400:
		return ErrorCodeInvalidInput
	case 401, 403:
		return ErrorCodeUnauthorized
	case 404:
		return ErrorCodeResourceNotFound
	case 409:
		return ErrorCodeAlreadyExists
	case 429:
		return ErrorCodeThrottling
	case 500, 502, 503:
		return ErrorCodeInternalError
	default:
		if statusCode >= 200 && statusCode < 300 {
			return ErrorCodeNone
		}
		return ErrorCodeUnknown
	}
}

// NamedFaults binds the transport codes to lifecycle kinds. Throttling and
// the generic 4xx/5xx cases are left to the classifier's generic rules.
var NamedFaults = []lifecycle.NamedFault{
	{Code: string(ErrorCodeAlreadyExists), Kind: lifecycle.KindAlreadyExists},
	{Code: string(ErrorCodeResourceNotFound), Kind: lifecycle.KindNotFound},
	{Code: string(ErrorCodeQuotaExceeded), Kind: lifecycle.KindServiceLimitExceeded},
	{Code: string(ErrorCodeUnauthorized), Kind: lifecycle.KindAccessDenied},
	{Code: string(ErrorCodeInvalidInput), Kind: lifecycle.KindInvalidRequest},
}

// NewClassifier returns the classifier for OVH REST faults. OVH answers 409
// to an update or delete racing another change of the same object.
func NewClassifier() *lifecycle.Classifier {
	return lifecycle.NewClassifier(NamedFaults...).
		With(lifecycle.BusyOnConflict(lifecycle.OperationUpdate, lifecycle.OperationDelete))
}

// NewError creates a new transport error
func NewError(code ErrorCode, message string, underlying error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: underlying,
	}
}
