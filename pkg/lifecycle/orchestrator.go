// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"

// Orchestrator drives Create, Update and Delete of one resource type to a
// terminal outcome across turns. It holds no per-operation state: everything
// that must survive between turns travels in the InvocationState.
type Orchestrator struct {
	def      Definition
	remote   Remote
	metrics  *Metrics
	tracer   trace.Tracer
	now      func() time.Time
	newToken func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics records turns and remote calls on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithTokenSource replaces the correlation token generator.
func WithTokenSource(fn func() string) Option {
	return func(o *Orchestrator) { o.newToken = fn }
}

// New creates an orchestrator for def backed by remote.
func New(def Definition, remote Remote, opts ...Option) *Orchestrator {
	if def.Classifier == nil {
		def.Classifier = NewClassifier()
	}
	if def.ClassifyStatus == nil {
		def.ClassifyStatus = StatusMap{}.Classify
	}
	o := &Orchestrator{
		def:      def,
		remote:   remote,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Request is the input of one Advance turn.
type Request struct {
	Operation Operation
	Desired   Model
	// Previous is the last known description, used for update checks.
	Previous *Model
	// State is nil on the first turn of an operation.
	State *InvocationState
}

// Advance runs one turn. The mutating call is only reachable while no
// started state exists, so replaying a turn with the returned state never
// issues it twice.
func (o *Orchestrator) Advance(ctx context.Context, req Request) Outcome {
	ctx, span := o.tracer.Start(ctx, "lifecycle.Advance", trace.WithAttributes(
		attribute.String("lifecycle.resource_type", o.def.ResourceType),
		attribute.String("lifecycle.operation", string(req.Operation)),
		attribute.Bool("lifecycle.polling", req.State != nil && req.State.PhaseStarted),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx).With().
		Str("operation", string(req.Operation)).
		Logger()
	ctx = logger.WithContext(ctx)

	out := o.advance(ctx, req)

	o.metrics.recordOutcome(o.def.ResourceType, string(req.Operation), out)
	span.SetAttributes(attribute.String("lifecycle.outcome", string(out.Status)))
	switch out.Status {
	case OutcomeFailed:
		span.SetStatus(codes.Error, out.Message)
		ev := logger.Warn().
			Str("kind", string(out.Kind)).
			Bool("retryable", out.Kind.Retryable())
		if out.Model != nil {
			ev = ev.Str("nativeId", out.Model.NativeID)
		}
		ev.Msg(out.Message)
	case OutcomeInProgress:
		logger.Info().
			Str("nativeId", out.State.NativeID).
			Str("token", out.State.Token).
			Int("remaining", out.State.Budget.Remaining).
			Int("delaySeconds", out.DelaySeconds).
			Msg(out.Message)
	default:
		ev := logger.Info()
		if out.Model != nil {
			ev = ev.Str("nativeId", out.Model.NativeID)
		}
		ev.Msg("operation succeeded")
	}
	return out
}

func (o *Orchestrator) advance(ctx context.Context, req Request) Outcome {
	switch req.Operation {
	case OperationCreate, OperationUpdate, OperationDelete:
	default:
		return Failed(req.Operation, nil, KindInvalidRequest, fmt.Sprintf("unsupported operation %q", req.Operation))
	}

	if req.State != nil {
		if err := req.State.Validate(req.Operation, o.def.ResourceType); err != nil {
			return Failed(req.Operation, &req.Desired, KindInvalidRequest, err.Error())
		}
		if req.State.PhaseStarted {
			return o.poll(ctx, req)
		}
	}
	return o.initiate(ctx, req)
}

// initiate issues the single mutating call of the operation.
func (o *Orchestrator) initiate(ctx context.Context, req Request) Outcome {
	op := req.Operation
	desired := req.Desired.Clone()
	if desired.NativeID == "" && req.State != nil {
		desired.NativeID = req.State.NativeID
	}

	if o.def.Validate != nil {
		if err := o.def.Validate(op, desired); err != nil {
			return Failed(op, &desired, KindInvalidRequest, err.Error())
		}
	}

	if op == OperationUpdate {
		if !o.def.SupportsUpdate {
			return Failed(op, &desired, KindNotUpdatable,
				fmt.Sprintf("%s does not support updates", o.def.ResourceType))
		}
		if out, blocked := o.checkCreateOnly(ctx, desired, req.Previous); blocked {
			return out
		}
	}

	var (
		obs Observation
		err error
	)
	switch op {
	case OperationCreate:
		obs, err = o.remote.Create(ctx, desired)
	case OperationUpdate:
		obs, err = o.remote.Update(ctx, desired, req.Previous)
	case OperationDelete:
		obs, err = o.remote.Delete(ctx, desired)
	}
	o.metrics.recordCall(o.def.ResourceType, string(op))
	if err != nil {
		return FailedWith(op, &desired, o.def.Classifier.Wrap(op, err, op.Label()+" "+o.def.ResourceType, &desired))
	}

	model := obs.Model(desired)
	if obs.Status == "" {
		return Success(op, model)
	}
	switch o.def.ClassifyStatus(op, obs.Status) {
	case StatusSucceeded:
		return Success(op, model)
	case StatusFailed:
		return Failed(op, &model, KindNotStabilized, statusMessage(obs))
	}

	if model.NativeID == "" {
		return Failed(op, &model, KindGeneralServiceException,
			fmt.Sprintf("%s returned status %s without an identifier to poll", o.def.ResourceType, obs.Status))
	}

	state := &InvocationState{
		Version:      StateVersion,
		Operation:    op,
		ResourceType: o.def.ResourceType,
		NativeID:     model.NativeID,
		PhaseStarted: true,
		Budget:       o.def.Budget.Start(),
		Token:        o.newToken(),
		StartedAt:    o.now().Unix(),
	}
	if req.State != nil {
		// A pre-seeded state keeps its own budget and token.
		state.Budget = req.State.Budget
		if req.State.Token != "" {
			state.Token = req.State.Token
		}
	}

	return InProgress(op, model, state, o.def.Budget.InitialDelay,
		fmt.Sprintf("%s accepted, status %s", op.Label(), obs.Status))
}

// poll issues one read and decides terminal vs continue.
func (o *Orchestrator) poll(ctx context.Context, req Request) Outcome {
	op := req.Operation
	state := *req.State
	base := req.Desired.Clone()
	base.NativeID = state.NativeID

	if state.NativeID == "" {
		return Failed(op, &base, KindInvalidRequest, "invocation state carries no identifier")
	}

	obs, err := o.remote.Read(ctx, state.NativeID)
	o.metrics.recordCall(o.def.ResourceType, "read")
	if err != nil {
		cerr := o.def.Classifier.Wrap("", err, "Read "+o.def.ResourceType, &base)
		if op == OperationDelete && cerr.Kind == KindNotFound && o.def.IdempotentDelete {
			return Success(op, Model{NativeID: state.NativeID})
		}
		return FailedWith(op, &base, cerr)
	}

	model := obs.Model(base)
	switch o.def.ClassifyStatus(op, obs.Status) {
	case StatusSucceeded:
		return Success(op, model)
	case StatusFailed:
		return Failed(op, &model, KindNotStabilized, statusMessage(obs))
	}

	next, delay, exhausted := state.Budget.Next()
	if exhausted {
		return Failed(op, &model, KindNotStabilized, fmt.Sprintf("Timed out waiting for %s to succeed.", op))
	}
	state.Budget = next

	return InProgress(op, model, &state, delay,
		fmt.Sprintf("%s in progress, status %s", op.Label(), obs.Status))
}

// checkCreateOnly compares create-only properties of desired against the
// previous description, reading it from the remote when the caller gave none.
func (o *Orchestrator) checkCreateOnly(ctx context.Context, desired Model, previous *Model) (Outcome, bool) {
	if len(o.def.CreateOnly) == 0 {
		return Outcome{}, false
	}

	current := previous
	if current == nil {
		obs, err := o.remote.Read(ctx, desired.NativeID)
		o.metrics.recordCall(o.def.ResourceType, "read")
		if err != nil {
			cerr := o.def.Classifier.Wrap("", err, "Read "+o.def.ResourceType, &desired)
			return FailedWith(OperationUpdate, &desired, cerr), true
		}
		m := obs.Model(Model{NativeID: desired.NativeID})
		current = &m
	}

	for _, key := range o.def.CreateOnly {
		want, ok := desired.Properties[key]
		if !ok {
			continue
		}
		have, ok := current.Properties[key]
		if !ok {
			continue
		}
		if !jsonEqual(want, have) {
			return Failed(OperationUpdate, &desired, KindNotUpdatable,
				fmt.Sprintf("property %q of %s cannot be changed after creation", key, o.def.ResourceType)), true
		}
	}
	return Outcome{}, false
}

// Read is the single-shot read handler.
func (o *Orchestrator) Read(ctx context.Context, nativeID string) (Model, *Error) {
	ctx, span := o.tracer.Start(ctx, "lifecycle.Read", trace.WithAttributes(
		attribute.String("lifecycle.resource_type", o.def.ResourceType),
	))
	defer span.End()

	if nativeID == "" {
		return Model{}, NewError(KindInvalidRequest, "nativeID is required", nil)
	}
	obs, err := o.remote.Read(ctx, nativeID)
	o.metrics.recordCall(o.def.ResourceType, "read")
	if err != nil {
		cerr := o.def.Classifier.Wrap("", err, "Read "+o.def.ResourceType, &Model{NativeID: nativeID})
		span.SetStatus(codes.Error, cerr.Message)
		return Model{}, cerr
	}
	return obs.Model(Model{NativeID: nativeID}), nil
}

// List is the single-shot discovery handler.
func (o *Orchestrator) List(ctx context.Context, scope ListScope) ([]string, *Error) {
	ctx, span := o.tracer.Start(ctx, "lifecycle.List", trace.WithAttributes(
		attribute.String("lifecycle.resource_type", o.def.ResourceType),
	))
	defer span.End()

	ids, err := o.remote.List(ctx, scope)
	o.metrics.recordCall(o.def.ResourceType, "list")
	if err != nil {
		cerr := o.def.Classifier.Wrap("", err, "List "+o.def.ResourceType, nil)
		span.SetStatus(codes.Error, cerr.Message)
		return nil, cerr
	}
	return ids, nil
}

func statusMessage(obs Observation) string {
	if obs.StatusInfo != "" {
		return obs.StatusInfo
	}
	return fmt.Sprintf("resource reached status %s", obs.Status)
}

func jsonEqual(a, b interface{}) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ra, rb)
}
