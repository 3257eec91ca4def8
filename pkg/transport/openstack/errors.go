// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package openstack

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gophercloud/gophercloud/v2"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
)

// Fault codes derived from OpenStack responses. Nova and Cinder name their
// faults in the response body; these are the ones the plugin distinguishes.
const (
	FaultItemNotFound       = "itemNotFound"
	FaultConflictingRequest = "conflictingRequest"
	FaultOverLimit          = "overLimit"
	FaultForbidden          = "forbidden"
	FaultBadRequest         = "badRequest"
)

// Error is an OpenStack API fault.
type Error struct {
	Code       string
	Message    string
	HTTPCode   int
	Underlying error
}

var _ lifecycle.Fault = (*Error)(nil)

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// FaultCode implements lifecycle.Fault.
func (e *Error) FaultCode() string {
	return e.Code
}

// StatusCode implements lifecycle.Fault.
func (e *Error) StatusCode() int {
	return e.HTTPCode
}

// Throttled implements lifecycle.Fault.
func (e *Error) Throttled() bool {
	return e.HTTPCode == http.StatusTooManyRequests
}

// Wrap converts a gophercloud error into an *Error. Errors without an HTTP
// response are wrapped with no status so they classify as general failures.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var codeErr gophercloud.ErrUnexpectedResponseCode
	if !errors.As(err, &codeErr) {
		return &Error{Message: err.Error(), Underlying: err}
	}

	return &Error{
		Code:       faultCode(codeErr.Actual, string(codeErr.Body)),
		Message:    err.Error(),
		HTTPCode:   codeErr.Actual,
		Underlying: err,
	}
}

func faultCode(status int, body string) string {
	lower := strings.ToLower(body)
	switch {
	case status == http.StatusNotFound:
		return FaultItemNotFound
	case status == http.StatusConflict:
		return FaultConflictingRequest
	case status == http.StatusRequestEntityTooLarge,
		status >= 400 && status < 500 && strings.Contains(lower, "quota"):
		return FaultOverLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return FaultForbidden
	case status == http.StatusBadRequest:
		return FaultBadRequest
	default:
		return ""
	}
}

// NamedFaults binds OpenStack fault codes to lifecycle kinds.
var NamedFaults = []lifecycle.NamedFault{
	{Code: FaultConflictingRequest, Kind: lifecycle.KindAlreadyExists},
	{Code: FaultItemNotFound, Kind: lifecycle.KindNotFound},
	{Code: FaultOverLimit, Kind: lifecycle.KindServiceLimitExceeded},
	{Code: FaultForbidden, Kind: lifecycle.KindAccessDenied},
	{Code: FaultBadRequest, Kind: lifecycle.KindInvalidRequest},
}

// NewClassifier returns the classifier for OpenStack faults. Nova and
// Neutron answer 409 to a change of an object that is in a transitional
// state.
func NewClassifier() *lifecycle.Classifier {
	return lifecycle.NewClassifier(NamedFaults...).
		With(lifecycle.BusyOnConflict(lifecycle.OperationUpdate, lifecycle.OperationDelete))
}
