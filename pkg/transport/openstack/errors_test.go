// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package openstack

import (
	"errors"
	"testing"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
)

func responseError(status int, body string) error {
	return gophercloud.ErrUnexpectedResponseCode{
		Method:   "POST",
		URL:      "https://volume.example/v3/volumes",
		Expected: []int{202},
		Actual:   status,
		Body:     []byte(body),
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantHTTP  int
		throttled bool
	}{
		{"not found", responseError(404, `{"itemNotFound":{}}`), FaultItemNotFound, 404, false},
		{"conflict", responseError(409, ""), FaultConflictingRequest, 409, false},
		{"quota in body", responseError(403, `{"forbidden":{"message":"Quota exceeded for cores"}}`), FaultOverLimit, 403, false},
		{"over limit", responseError(413, ""), FaultOverLimit, 413, false},
		{"forbidden", responseError(403, ""), FaultForbidden, 403, false},
		{"bad request", responseError(400, ""), FaultBadRequest, 400, false},
		{"rate limited", responseError(429, ""), "", 429, true},
		{"server error", responseError(503, ""), "", 503, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap(tt.err)

			var osErr *Error
			require.True(t, errors.As(err, &osErr))
			assert.Equal(t, tt.wantCode, osErr.FaultCode())
			assert.Equal(t, tt.wantHTTP, osErr.StatusCode())
			assert.Equal(t, tt.throttled, osErr.Throttled())
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil))
}

func TestNewClassifier(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name string
		err  error
		want lifecycle.Kind
	}{
		{"not found", responseError(404, ""), lifecycle.KindNotFound},
		{"conflict", responseError(409, ""), lifecycle.KindAlreadyExists},
		{"quota", responseError(403, "Quota exceeded"), lifecycle.KindServiceLimitExceeded},
		{"forbidden", responseError(401, ""), lifecycle.KindAccessDenied},
		{"throttled", responseError(429, ""), lifecycle.KindThrottling},
		{"server error", responseError(500, ""), lifecycle.KindServiceInternalError},
		{"other client error", responseError(422, ""), lifecycle.KindInvalidRequest},
		{"no response", errors.New("dial tcp: timeout"), lifecycle.KindGeneralServiceException},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(Wrap(tt.err)))
		})
	}
}

func TestConflictDependsOnOperation(t *testing.T) {
	classifier := NewClassifier()
	conflict := Wrap(responseError(409, "Cannot 'delete' instance while it is in task_state rebuilding"))

	assert.Equal(t, lifecycle.KindAlreadyExists, classifier.ClassifyFor(lifecycle.OperationCreate, conflict))
	assert.Equal(t, lifecycle.KindThrottling, classifier.ClassifyFor(lifecycle.OperationUpdate, conflict))
	assert.Equal(t, lifecycle.KindThrottling, classifier.ClassifyFor(lifecycle.OperationDelete, conflict))
}
