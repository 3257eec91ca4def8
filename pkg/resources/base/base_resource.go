// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
)

// BaseResource adapts a lifecycle orchestrator to the formae provisioner
// contract. The invocation state travels in the formae RequestID, so Status
// resumes exactly where the previous turn stopped.
type BaseResource struct {
	Orchestrator *lifecycle.Orchestrator
}

var _ prov.Provisioner = (*BaseResource)(nil)

// NewBaseResource creates a provisioner driven by o.
func NewBaseResource(o *lifecycle.Orchestrator) *BaseResource {
	return &BaseResource{Orchestrator: o}
}

// Create performs a CREATE operation
func (b *BaseResource) Create(ctx context.Context, request *resource.CreateRequest) (*resource.CreateResult, error) {
	props, err := parseProperties(request.Properties)
	if err != nil {
		return &resource.CreateResult{
			ProgressResult: failure(resource.OperationCreate, "", lifecycle.KindInvalidRequest, err.Error()),
		}, nil
	}

	out := b.Orchestrator.Advance(ctx, lifecycle.Request{
		Operation: lifecycle.OperationCreate,
		Desired:   lifecycle.Model{Properties: props},
	})
	return &resource.CreateResult{ProgressResult: toProgress(resource.OperationCreate, out, "")}, nil
}

// Update performs an UPDATE operation
func (b *BaseResource) Update(ctx context.Context, request *resource.UpdateRequest) (*resource.UpdateResult, error) {
	props, err := parseProperties(request.DesiredProperties)
	if err != nil {
		return &resource.UpdateResult{
			ProgressResult: failure(resource.OperationUpdate, request.NativeID, lifecycle.KindInvalidRequest, err.Error()),
		}, nil
	}

	out := b.Orchestrator.Advance(ctx, lifecycle.Request{
		Operation: lifecycle.OperationUpdate,
		Desired:   lifecycle.Model{NativeID: request.NativeID, Properties: props},
	})
	return &resource.UpdateResult{ProgressResult: toProgress(resource.OperationUpdate, out, request.NativeID)}, nil
}

// Delete performs a DELETE operation
func (b *BaseResource) Delete(ctx context.Context, request *resource.DeleteRequest) (*resource.DeleteResult, error) {
	out := b.Orchestrator.Advance(ctx, lifecycle.Request{
		Operation: lifecycle.OperationDelete,
		Desired:   lifecycle.Model{NativeID: request.NativeID},
	})
	return &resource.DeleteResult{ProgressResult: toProgress(resource.OperationDelete, out, request.NativeID)}, nil
}

// Status resumes the operation encoded in the RequestID.
func (b *BaseResource) Status(ctx context.Context, request *resource.StatusRequest) (*resource.StatusResult, error) {
	state, err := lifecycle.DecodeState(request.RequestID)
	if err != nil {
		return &resource.StatusResult{
			ProgressResult: failure(resource.OperationCheckStatus, request.NativeID, lifecycle.KindInvalidRequest, err.Error()),
		}, nil
	}

	out := b.Orchestrator.Advance(ctx, lifecycle.Request{
		Operation: state.Operation,
		Desired:   lifecycle.Model{NativeID: request.NativeID},
		State:     state,
	})
	return &resource.StatusResult{ProgressResult: toProgress(resource.OperationCheckStatus, out, request.NativeID)}, nil
}

// Read performs a READ operation
func (b *BaseResource) Read(ctx context.Context, request *resource.ReadRequest) (*resource.ReadResult, error) {
	m, lerr := b.Orchestrator.Read(ctx, request.NativeID)
	if lerr != nil {
		return &resource.ReadResult{ErrorCode: lerr.Kind.ToResourceErrorCode()}, nil
	}
	return &resource.ReadResult{Properties: string(m.PropertiesJSON())}, nil
}

// List performs a LIST operation
func (b *BaseResource) List(ctx context.Context, request *resource.ListRequest) (*resource.ListResult, error) {
	ids, lerr := b.Orchestrator.List(ctx, lifecycle.ListScope{
		AdditionalProperties: request.AdditionalProperties,
	})
	if lerr != nil {
		return nil, fmt.Errorf("failed to list resources: %w", lerr)
	}
	return &resource.ListResult{NativeIDs: ids}, nil
}

func parseProperties(raw json.RawMessage) (map[string]interface{}, error) {
	props := map[string]interface{}{}
	if len(raw) == 0 {
		return props, nil
	}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("failed to parse properties: %w", err)
	}
	return props, nil
}

// toProgress maps an outcome onto the formae progress result. nativeID is
// reported when the outcome carries no model.
func toProgress(op resource.Operation, out lifecycle.Outcome, nativeID string) *resource.ProgressResult {
	result := &resource.ProgressResult{
		Operation:     op,
		NativeID:      nativeID,
		StatusMessage: out.Message,
	}
	if out.Model != nil {
		if out.Model.NativeID != "" {
			result.NativeID = out.Model.NativeID
		}
		result.ResourceProperties = out.Model.PropertiesJSON()
	}

	switch out.Status {
	case lifecycle.OutcomeSuccess:
		result.OperationStatus = resource.OperationStatusSuccess
	case lifecycle.OutcomeInProgress:
		token, err := lifecycle.EncodeState(out.State)
		if err != nil {
			return failure(op, result.NativeID, lifecycle.KindGeneralServiceException, err.Error())
		}
		result.OperationStatus = resource.OperationStatusInProgress
		result.RequestID = token
		result.StatusMessage = fmt.Sprintf("%s (next check in %ds)", out.Message, out.DelaySeconds)
	default:
		result.OperationStatus = resource.OperationStatusFailure
		result.ErrorCode = out.Kind.ToResourceErrorCode()
	}
	return result
}

// NextCheck returns the delay an in-progress result asks for before the next
// Status call, as recorded in its RequestID.
func NextCheck(result *resource.ProgressResult) (time.Duration, bool) {
	if result == nil || result.OperationStatus != resource.OperationStatusInProgress {
		return 0, false
	}
	state, err := lifecycle.DecodeState(result.RequestID)
	if err != nil || state.NextCheck < 0 {
		return 0, false
	}
	return time.Duration(state.NextCheck) * time.Second, true
}

func failure(op resource.Operation, nativeID string, kind lifecycle.Kind, message string) *resource.ProgressResult {
	return &resource.ProgressResult{
		Operation:       op,
		OperationStatus: resource.OperationStatusFailure,
		ErrorCode:       kind.ToResourceErrorCode(),
		StatusMessage:   message,
		NativeID:        nativeID,
	}
}
