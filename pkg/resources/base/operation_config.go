// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

import (
	"context"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
)

// OperationConfig defines operation semantics
type OperationConfig struct {
	// StatusField is the response property carrying the remote status.
	StatusField string
	// StatusExtractor derives the status when it is not a single field.
	// It takes precedence over StatusField.
	StatusExtractor func(body map[string]interface{}) string
	// StatusInfoField explains the status, used as the failure message.
	StatusInfoField string
	// Async lists the operations whose response precedes the object settling.
	Async []lifecycle.Operation
	// PendingStatus is assumed per operation when an async response carries
	// no status, as with OVH's empty DELETE and PUT responses.
	PendingStatus map[lifecycle.Operation]string
	// NativeIDExtractor overrides the default "id" based native ID.
	NativeIDExtractor func(response map[string]interface{}, ctx PathContext) string
	// PostMutationHook runs after a successful mutating call. Its failure is
	// logged and never fails the operation.
	PostMutationHook func(ctx context.Context, client Doer, pathCtx PathContext) error
}

func (c OperationConfig) isAsync(op lifecycle.Operation) bool {
	for _, o := range c.Async {
		if o == op {
			return true
		}
	}
	return false
}

func (c OperationConfig) status(body map[string]interface{}) string {
	if c.StatusExtractor != nil {
		return c.StatusExtractor(body)
	}
	return stringValue(body, c.StatusField)
}
