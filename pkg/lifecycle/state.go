// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// StateVersion is the current InvocationState layout.
const StateVersion = 1

// Operation is a mutating lifecycle operation.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Label is the capitalised operation name used in messages.
func (o Operation) Label() string {
	switch o {
	case OperationCreate:
		return "Create"
	case OperationUpdate:
		return "Update"
	case OperationDelete:
		return "Delete"
	default:
		return string(o)
	}
}

// InvocationState is the opaque record threaded through consecutive turns of
// one operation. Operation is the tag: a state is only valid for the
// operation that produced it.
type InvocationState struct {
	Version      int       `json:"version"`
	Operation    Operation `json:"operation"`
	ResourceType string    `json:"resourceType"`
	// NativeID mirrors the identifying field of the model so polling does not
	// depend on the caller re-supplying the model.
	NativeID string `json:"nativeId"`
	// PhaseStarted is true once the mutating call has been issued.
	PhaseStarted bool   `json:"phaseStarted"`
	Budget       Budget `json:"budget"`
	Token        string `json:"token"`
	// StartedAt is the Unix time of the mutating call.
	StartedAt int64 `json:"startedAt"`
	// NextCheck is the delay in seconds the caller should wait before
	// handing the state back.
	NextCheck int `json:"nextCheck"`
}

// Validate checks that the state can drive op for resourceType.
func (s *InvocationState) Validate(op Operation, resourceType string) error {
	if s.Version != StateVersion {
		return fmt.Errorf("unsupported invocation state version %d", s.Version)
	}
	if s.Operation != op {
		return fmt.Errorf("invocation state belongs to %s, not %s", s.Operation, op)
	}
	if resourceType != "" && s.ResourceType != "" && s.ResourceType != resourceType {
		return fmt.Errorf("invocation state belongs to %s, not %s", s.ResourceType, resourceType)
	}
	switch s.Budget.Mode {
	case BudgetAttempts, BudgetTimeout:
	default:
		return fmt.Errorf("unknown budget mode %q", s.Budget.Mode)
	}
	return nil
}

// EncodeState serializes a state into the opaque token handed to the caller.
func EncodeState(s *InvocationState) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal invocation state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeState parses a token produced by EncodeState.
func DecodeState(token string) (*InvocationState, error) {
	if token == "" {
		return nil, fmt.Errorf("invocation state is empty")
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode invocation state: %w", err)
	}
	var s InvocationState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invocation state: %w", err)
	}
	return &s, nil
}
