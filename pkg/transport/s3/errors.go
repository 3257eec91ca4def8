// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package s3

import (
	"errors"
	"fmt"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/smithy-go"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
)

// S3 error codes the plugin distinguishes.
const (
	CodeBucketAlreadyExists     = "BucketAlreadyExists"
	CodeBucketAlreadyOwnedByYou = "BucketAlreadyOwnedByYou"
	CodeNoSuchBucket            = "NoSuchBucket"
	CodeNotFound                = "NotFound"
	CodeNoSuchTagSet            = "NoSuchTagSet"
	CodeTooManyBuckets          = "TooManyBuckets"
	CodeInvalidBucketName       = "InvalidBucketName"
	CodeBucketNotEmpty          = "BucketNotEmpty"
	CodeAccessDenied            = "AccessDenied"
	CodeOperationAborted        = "OperationAborted"
)

// Error is an S3 API fault.
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

// Throttled implements lifecycle.Fault using the SDK's own list of
// throttling error codes.
func (e *Error) Throttled() bool {
	_, ok := retry.DefaultThrottleErrorCodes[e.Code]
	return ok || e.HTTPCode == 429
}

// Wrap converts an SDK error into an *Error carrying the S3 error code and
// HTTP status when the SDK exposes them.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	out := &Error{Message: err.Error(), Underlying: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		out.Code = apiErr.ErrorCode()
		if msg := apiErr.ErrorMessage(); msg != "" {
			out.Message = msg
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		out.HTTPCode = respErr.HTTPStatusCode()
	}

	// HeadBucket has no body, so a missing bucket only shows up as a 404.
	if out.Code == "" && out.HTTPCode == 404 {
		out.Code = CodeNotFound
	}

	return out
}

// IsCode reports whether err is an S3 fault with one of codes.
func IsCode(err error, codes ...string) bool {
	var s3Err *Error
	if !errors.As(err, &s3Err) {
		return false
	}
	for _, code := range codes {
		if s3Err.Code == code {
			return true
		}
	}
	return false
}

// NamedFaults binds S3 error codes to lifecycle kinds.
var NamedFaults = []lifecycle.NamedFault{
	{Code: CodeBucketAlreadyExists, Kind: lifecycle.KindAlreadyExists},
	{Code: CodeBucketAlreadyOwnedByYou, Kind: lifecycle.KindAlreadyExists},
	{Code: CodeNoSuchBucket, Kind: lifecycle.KindNotFound},
	{Code: CodeNotFound, Kind: lifecycle.KindNotFound},
	{Code: CodeTooManyBuckets, Kind: lifecycle.KindServiceLimitExceeded},
	{Code: CodeInvalidBucketName, Kind: lifecycle.KindInvalidRequest},
	{Code: CodeBucketNotEmpty, Kind: lifecycle.KindInvalidRequest},
	{Code: CodeAccessDenied, Kind: lifecycle.KindAccessDenied},
	{Code: CodeOperationAborted, Kind: lifecycle.KindThrottling},
}

// NewClassifier returns the classifier for S3 faults.
func NewClassifier() *lifecycle.Classifier {
	return lifecycle.NewClassifier(NamedFaults...)
}
