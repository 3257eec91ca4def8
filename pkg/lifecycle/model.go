// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import (
	"context"
	"encoding/json"
)

// Model is a resource description: the desired shape supplied by the caller,
// or the observed shape returned on success.
type Model struct {
	// NativeID identifies the remote object. Empty before creation.
	NativeID   string
	Properties map[string]interface{}
}

// Clone returns a shallow copy with its own property map.
func (m Model) Clone() Model {
	props := make(map[string]interface{}, len(m.Properties))
	for k, v := range m.Properties {
		props[k] = v
	}
	return Model{NativeID: m.NativeID, Properties: props}
}

// String returns the property value for key, or "".
func (m Model) String(key string) string {
	s, _ := m.Properties[key].(string)
	return s
}

// PropertiesJSON marshals the properties for the caller.
func (m Model) PropertiesJSON() json.RawMessage {
	if m.Properties == nil {
		return nil
	}
	raw, err := json.Marshal(m.Properties)
	if err != nil {
		return nil
	}
	return raw
}

// StatusClass is the abstract class of a remote object status.
type StatusClass int

const (
	StatusInProgress StatusClass = iota
	StatusSucceeded
	StatusFailed
)

func (c StatusClass) String() string {
	switch c {
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	default:
		return "STILL_IN_PROGRESS"
	}
}

// Observation is what a remote call tells us about the object.
type Observation struct {
	NativeID string
	// Status is the remote status vocabulary. Empty means the call was
	// synchronous and the object is already in its final shape.
	Status string
	// StatusInfo is the remote's explanation of Status, used as the failure
	// message when Status is a failure.
	StatusInfo string
	Properties map[string]interface{}
}

// Model converts the observation into a resource description, falling back to
// fallback's identity and properties where the observation has none.
func (o Observation) Model(fallback Model) Model {
	m := fallback.Clone()
	if o.NativeID != "" {
		m.NativeID = o.NativeID
	}
	for k, v := range o.Properties {
		m.Properties[k] = v
	}
	return m
}

// ListScope narrows a List call.
type ListScope struct {
	Project              string
	AdditionalProperties map[string]string
}

// Remote is the field translator and remote API of one resource type.
// Each method is one protocol step: the orchestrator invokes Create, Update
// and Delete at most once per logical operation. An implementation may issue
// follow-up calls inside a step when the remote API splits one mutation over
// several endpoints. Faults are returned as-is.
type Remote interface {
	Create(ctx context.Context, desired Model) (Observation, error)
	Update(ctx context.Context, desired Model, previous *Model) (Observation, error)
	Delete(ctx context.Context, current Model) (Observation, error)
	Read(ctx context.Context, nativeID string) (Observation, error)
	List(ctx context.Context, scope ListScope) ([]string, error)
}

// OutcomeStatus is the result class of one turn.
type OutcomeStatus string

const (
	OutcomeSuccess    OutcomeStatus = "SUCCESS"
	OutcomeInProgress OutcomeStatus = "IN_PROGRESS"
	OutcomeFailed     OutcomeStatus = "FAILED"
)

// Outcome is returned to the caller every turn. State and DelaySeconds are
// set if and only if Status is IN_PROGRESS.
type Outcome struct {
	Status       OutcomeStatus
	Operation    Operation
	Model        *Model
	State        *InvocationState
	DelaySeconds int
	Kind         Kind
	Message      string
}

// Success builds a SUCCESS outcome.
func Success(op Operation, m Model) Outcome {
	return Outcome{Status: OutcomeSuccess, Operation: op, Model: &m}
}

// InProgress builds an IN_PROGRESS outcome and records delay in state.
func InProgress(op Operation, m Model, state *InvocationState, delay int, message string) Outcome {
	if state != nil {
		state.NextCheck = delay
	}
	return Outcome{
		Status:       OutcomeInProgress,
		Operation:    op,
		Model:        &m,
		State:        state,
		DelaySeconds: delay,
		Message:      message,
	}
}

// Failed builds a FAILED outcome. Delete failures carry no model.
func Failed(op Operation, m *Model, kind Kind, message string) Outcome {
	if op == OperationDelete {
		m = nil
	}
	return Outcome{Status: OutcomeFailed, Operation: op, Model: m, Kind: kind, Message: message}
}

// FailedWith builds a FAILED outcome from a classified error.
func FailedWith(op Operation, m *Model, err *Error) Outcome {
	return Failed(op, m, err.Kind, err.Message)
}
