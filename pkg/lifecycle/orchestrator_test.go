// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readResult struct {
	obs Observation
	err error
}

type fakeRemote struct {
	createObs Observation
	createErr error
	updateObs Observation
	updateErr error
	deleteObs Observation
	deleteErr error
	reads     []readResult
	listIDs   []string
	listErr   error

	creates, updates, deletes, readCalls int
	lastPrevious                         *Model
}

func (f *fakeRemote) Create(_ context.Context, _ Model) (Observation, error) {
	f.creates++
	return f.createObs, f.createErr
}

func (f *fakeRemote) Update(_ context.Context, _ Model, previous *Model) (Observation, error) {
	f.updates++
	f.lastPrevious = previous
	return f.updateObs, f.updateErr
}

func (f *fakeRemote) Delete(_ context.Context, _ Model) (Observation, error) {
	f.deletes++
	return f.deleteObs, f.deleteErr
}

func (f *fakeRemote) Read(_ context.Context, _ string) (Observation, error) {
	i := f.readCalls
	f.readCalls++
	if len(f.reads) == 0 {
		return Observation{}, errors.New("no read configured")
	}
	if i >= len(f.reads) {
		i = len(f.reads) - 1
	}
	return f.reads[i].obs, f.reads[i].err
}

func (f *fakeRemote) List(_ context.Context, _ ListScope) ([]string, error) {
	return f.listIDs, f.listErr
}

func (f *fakeRemote) mutations() int {
	return f.creates + f.updates + f.deletes
}

func testDefinition() Definition {
	return Definition{
		ResourceType: "OVH::Test::Thing",
		Budget:       BudgetPolicy{Mode: BudgetAttempts, Limit: 3, InitialDelay: 5, PollDelay: 10},
		Classifier:   testClassifier(),
		ClassifyStatus: StatusMap{
			Ready:  []string{"READY"},
			Failed: []string{"ERROR"},
		}.Classify,
		IdempotentDelete: true,
		SupportsUpdate:   true,
		CreateOnly:       []string{"region"},
	}
}

func newTestOrchestrator(def Definition, remote Remote, opts ...Option) *Orchestrator {
	base := []Option{
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
		WithTokenSource(func() string { return "tok-1" }),
	}
	return New(def, remote, append(base, opts...)...)
}

func desiredThing() Model {
	return Model{Properties: map[string]interface{}{"name": "thing", "region": "GRA7"}}
}

func TestCreateAsyncStabilizes(t *testing.T) {
	remote := &fakeRemote{
		createObs: Observation{NativeID: "t-1", Status: "INSTALLING"},
		reads: []readResult{
			{obs: Observation{NativeID: "t-1", Status: "INSTALLING"}},
			{obs: Observation{NativeID: "t-1", Status: "READY", Properties: map[string]interface{}{"id": "t-1"}}},
		},
	}
	o := newTestOrchestrator(testDefinition(), remote)
	ctx := context.Background()

	out := o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing()})
	require.Equal(t, OutcomeInProgress, out.Status)
	assert.Equal(t, 5, out.DelaySeconds)
	require.NotNil(t, out.State)
	assert.Equal(t, 5, out.State.NextCheck)
	assert.True(t, out.State.PhaseStarted)
	assert.Equal(t, "t-1", out.State.NativeID)
	assert.Equal(t, "tok-1", out.State.Token)
	assert.Equal(t, int64(1700000000), out.State.StartedAt)
	assert.Equal(t, 3, out.State.Budget.Remaining)
	assert.Equal(t, 0, remote.readCalls)

	out = o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing(), State: out.State})
	require.Equal(t, OutcomeInProgress, out.Status)
	assert.Equal(t, 10, out.DelaySeconds)
	assert.Equal(t, 10, out.State.NextCheck)
	assert.Equal(t, 2, out.State.Budget.Remaining)

	out = o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing(), State: out.State})
	require.Equal(t, OutcomeSuccess, out.Status)
	assert.Nil(t, out.State)
	assert.Equal(t, "t-1", out.Model.NativeID)
	assert.Equal(t, "thing", out.Model.Properties["name"])
	assert.Equal(t, "t-1", out.Model.Properties["id"])

	assert.Equal(t, 1, remote.creates)
	assert.Equal(t, 2, remote.readCalls)
}

func TestCreateSynchronousSucceedsImmediately(t *testing.T) {
	remote := &fakeRemote{createObs: Observation{NativeID: "zone/42"}}
	out := newTestOrchestrator(testDefinition(), remote).
		Advance(context.Background(), Request{Operation: OperationCreate, Desired: desiredThing()})

	require.Equal(t, OutcomeSuccess, out.Status)
	assert.Equal(t, "zone/42", out.Model.NativeID)
	assert.Equal(t, 0, remote.readCalls)
}

func TestReplayingAStateNeverRepeatsTheMutation(t *testing.T) {
	remote := &fakeRemote{
		createObs: Observation{NativeID: "t-1", Status: "INSTALLING"},
		reads:     []readResult{{obs: Observation{NativeID: "t-1", Status: "INSTALLING"}}},
	}
	o := newTestOrchestrator(testDefinition(), remote)
	ctx := context.Background()

	first := o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing()})
	require.Equal(t, OutcomeInProgress, first.Status)

	for i := 0; i < 2; i++ {
		out := o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing(), State: first.State})
		require.Equal(t, OutcomeInProgress, out.Status)
		assert.Equal(t, 2, out.State.Budget.Remaining)
	}
	assert.Equal(t, 1, remote.mutations())
	assert.Equal(t, 2, remote.readCalls)
}

func TestBudgetExhaustionFails(t *testing.T) {
	remote := &fakeRemote{
		createObs: Observation{NativeID: "t-1", Status: "INSTALLING"},
		reads:     []readResult{{obs: Observation{NativeID: "t-1", Status: "INSTALLING"}}},
	}
	o := newTestOrchestrator(testDefinition(), remote)
	ctx := context.Background()

	out := o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing()})
	turns := 0
	for out.Status == OutcomeInProgress {
		out = o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing(), State: out.State})
		turns++
		require.Less(t, turns, 10)
	}

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Equal(t, KindNotStabilized, out.Kind)
	assert.Equal(t, "Timed out waiting for create to succeed.", out.Message)
	assert.Equal(t, 3, turns)
	assert.Equal(t, 1, remote.creates)
}

func TestTimeoutBudgetStopsOnItsEnd(t *testing.T) {
	def := testDefinition()
	def.Budget = BudgetPolicy{Mode: BudgetTimeout, Limit: 60, InitialDelay: 0, PollDelay: 15}
	remote := &fakeRemote{
		createObs: Observation{NativeID: "t-1", Status: "INSTALLING"},
		reads:     []readResult{{obs: Observation{NativeID: "t-1", Status: "INSTALLING"}}},
	}
	o := newTestOrchestrator(def, remote)
	ctx := context.Background()

	out := o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing()})
	var delays []int
	for out.Status == OutcomeInProgress {
		out = o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing(), State: out.State})
		if out.Status == OutcomeInProgress {
			delays = append(delays, out.DelaySeconds)
		}
	}
	assert.Equal(t, []int{15, 15, 15, 15}, delays)
	assert.Equal(t, KindNotStabilized, out.Kind)
}

func TestFailedStatusFailsRegardlessOfBudget(t *testing.T) {
	remote := &fakeRemote{
		createObs: Observation{NativeID: "t-1", Status: "INSTALLING"},
		reads: []readResult{{obs: Observation{
			NativeID:   "t-1",
			Status:     "ERROR",
			StatusInfo: "quota for cores reached",
		}}},
	}
	o := newTestOrchestrator(testDefinition(), remote)
	ctx := context.Background()

	out := o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing()})
	out = o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing(), State: out.State})

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Equal(t, KindNotStabilized, out.Kind)
	assert.Equal(t, "quota for cores reached", out.Message)
	require.NotNil(t, out.Model)
	assert.Equal(t, "t-1", out.Model.NativeID)
}

func TestFailedStatusOnInitiate(t *testing.T) {
	remote := &fakeRemote{createObs: Observation{NativeID: "t-1", Status: "ERROR"}}
	out := newTestOrchestrator(testDefinition(), remote).
		Advance(context.Background(), Request{Operation: OperationCreate, Desired: desiredThing()})

	assert.Equal(t, KindNotStabilized, out.Kind)
	assert.Equal(t, "resource reached status ERROR", out.Message)
}

func TestThrottledMutationIsNotPolled(t *testing.T) {
	remote := &fakeRemote{createErr: &testFault{code: "THROTTLING", status: 429, throttled: true}}
	out := newTestOrchestrator(testDefinition(), remote).
		Advance(context.Background(), Request{Operation: OperationCreate, Desired: desiredThing()})

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Equal(t, KindThrottling, out.Kind)
	assert.Contains(t, out.Message, "Create OVH::Test::Thing failed")
	assert.Nil(t, out.State)
	assert.Equal(t, 0, remote.readCalls)
}

func TestAsyncResponseWithoutIdentifierFails(t *testing.T) {
	remote := &fakeRemote{createObs: Observation{Status: "INSTALLING"}}
	out := newTestOrchestrator(testDefinition(), remote).
		Advance(context.Background(), Request{Operation: OperationCreate, Desired: desiredThing()})

	assert.Equal(t, KindGeneralServiceException, out.Kind)
}

func TestValidateRunsBeforeAnyCall(t *testing.T) {
	def := testDefinition()
	def.Validate = func(op Operation, m Model) error {
		if m.String("name") == "" {
			return errors.New("name is required")
		}
		return nil
	}
	remote := &fakeRemote{}
	out := newTestOrchestrator(def, remote).
		Advance(context.Background(), Request{Operation: OperationCreate, Desired: Model{}})

	assert.Equal(t, KindInvalidRequest, out.Kind)
	assert.Equal(t, "name is required", out.Message)
	assert.Equal(t, 0, remote.mutations())
}

func TestUnsupportedOperation(t *testing.T) {
	out := newTestOrchestrator(testDefinition(), &fakeRemote{}).
		Advance(context.Background(), Request{Operation: "restart"})
	assert.Equal(t, KindInvalidRequest, out.Kind)
}

func TestStateFromAnotherOperationIsRejected(t *testing.T) {
	remote := &fakeRemote{}
	state := &InvocationState{
		Version:      StateVersion,
		Operation:    OperationCreate,
		NativeID:     "t-1",
		PhaseStarted: true,
		Budget:       Budget{Mode: BudgetAttempts, Remaining: 3},
	}
	out := newTestOrchestrator(testDefinition(), remote).
		Advance(context.Background(), Request{Operation: OperationDelete, State: state})

	assert.Equal(t, KindInvalidRequest, out.Kind)
	assert.Equal(t, 0, remote.mutations()+remote.readCalls)
}

func TestPreseededStateKeepsBudgetAndToken(t *testing.T) {
	remote := &fakeRemote{createObs: Observation{NativeID: "t-1", Status: "INSTALLING"}}
	seed := &InvocationState{
		Version:   StateVersion,
		Operation: OperationCreate,
		Budget:    Budget{Mode: BudgetAttempts, Remaining: 7, Delay: 2},
		Token:     "caller-token",
	}
	out := newTestOrchestrator(testDefinition(), remote).
		Advance(context.Background(), Request{Operation: OperationCreate, Desired: desiredThing(), State: seed})

	require.Equal(t, OutcomeInProgress, out.Status)
	assert.Equal(t, 1, remote.creates)
	assert.True(t, out.State.PhaseStarted)
	assert.Equal(t, 7, out.State.Budget.Remaining)
	assert.Equal(t, "caller-token", out.State.Token)
	assert.False(t, seed.PhaseStarted, "input state must not be modified")
}

func TestDeleteIdempotentOnNotFound(t *testing.T) {
	notFound := &testFault{code: "RESOURCE_NOT_FOUND", status: 404}
	newRemote := func() *fakeRemote {
		return &fakeRemote{
			deleteObs: Observation{NativeID: "t-1", Status: "DELETING"},
			reads:     []readResult{{err: notFound}},
		}
	}
	ctx := context.Background()
	current := Model{NativeID: "t-1"}

	t.Run("enabled", func(t *testing.T) {
		remote := newRemote()
		o := newTestOrchestrator(testDefinition(), remote)
		out := o.Advance(ctx, Request{Operation: OperationDelete, Desired: current})
		require.Equal(t, OutcomeInProgress, out.Status)

		out = o.Advance(ctx, Request{Operation: OperationDelete, Desired: current, State: out.State})
		assert.Equal(t, OutcomeSuccess, out.Status)
		assert.Equal(t, "t-1", out.Model.NativeID)
	})

	t.Run("disabled", func(t *testing.T) {
		def := testDefinition()
		def.IdempotentDelete = false
		remote := newRemote()
		o := newTestOrchestrator(def, remote)
		out := o.Advance(ctx, Request{Operation: OperationDelete, Desired: current})
		out = o.Advance(ctx, Request{Operation: OperationDelete, Desired: current, State: out.State})

		assert.Equal(t, OutcomeFailed, out.Status)
		assert.Equal(t, KindNotFound, out.Kind)
		assert.Nil(t, out.Model, "delete failures carry no model")
	})

	t.Run("not found on the delete call itself", func(t *testing.T) {
		remote := &fakeRemote{deleteErr: notFound}
		out := newTestOrchestrator(testDefinition(), remote).
			Advance(ctx, Request{Operation: OperationDelete, Desired: current})
		assert.Equal(t, KindNotFound, out.Kind)
	})
}

func TestDeleteGoneStatus(t *testing.T) {
	def := testDefinition()
	def.ClassifyStatus = StatusMap{Failed: []string{"ERROR_DELETING"}, Gone: []string{"DELETED"}}.Classify
	remote := &fakeRemote{
		deleteObs: Observation{NativeID: "t-1", Status: "DELETING"},
		reads: []readResult{
			{obs: Observation{NativeID: "t-1", Status: "DELETING"}},
			{obs: Observation{NativeID: "t-1", Status: "DELETED"}},
		},
	}
	o := newTestOrchestrator(def, remote)
	ctx := context.Background()

	out := o.Advance(ctx, Request{Operation: OperationDelete, Desired: Model{NativeID: "t-1"}})
	out = o.Advance(ctx, Request{Operation: OperationDelete, State: out.State})
	require.Equal(t, OutcomeInProgress, out.Status)
	out = o.Advance(ctx, Request{Operation: OperationDelete, State: out.State})
	assert.Equal(t, OutcomeSuccess, out.Status)
}

func TestUpdateNotSupported(t *testing.T) {
	def := testDefinition()
	def.SupportsUpdate = false
	remote := &fakeRemote{}
	out := newTestOrchestrator(def, remote).
		Advance(context.Background(), Request{Operation: OperationUpdate, Desired: Model{NativeID: "t-1"}})

	assert.Equal(t, KindNotUpdatable, out.Kind)
	assert.Equal(t, 0, remote.mutations())
}

func TestUpdateCreateOnlyProperties(t *testing.T) {
	ctx := context.Background()
	desired := Model{NativeID: "t-1", Properties: map[string]interface{}{"name": "renamed", "region": "GRA7"}}

	t.Run("changed against previous", func(t *testing.T) {
		remote := &fakeRemote{}
		previous := &Model{NativeID: "t-1", Properties: map[string]interface{}{"region": "BHS5"}}
		out := newTestOrchestrator(testDefinition(), remote).
			Advance(ctx, Request{Operation: OperationUpdate, Desired: desired, Previous: previous})

		assert.Equal(t, KindNotUpdatable, out.Kind)
		assert.Contains(t, out.Message, `"region"`)
		assert.Equal(t, 0, remote.mutations())
		assert.Equal(t, 0, remote.readCalls)
	})

	t.Run("changed against remote", func(t *testing.T) {
		remote := &fakeRemote{reads: []readResult{{obs: Observation{
			NativeID:   "t-1",
			Properties: map[string]interface{}{"region": "BHS5"},
		}}}}
		out := newTestOrchestrator(testDefinition(), remote).
			Advance(ctx, Request{Operation: OperationUpdate, Desired: desired})

		assert.Equal(t, KindNotUpdatable, out.Kind)
		assert.Equal(t, 1, remote.readCalls)
		assert.Equal(t, 0, remote.updates)
	})

	t.Run("unchanged proceeds", func(t *testing.T) {
		remote := &fakeRemote{updateObs: Observation{NativeID: "t-1"}}
		previous := &Model{NativeID: "t-1", Properties: map[string]interface{}{"region": "GRA7"}}
		out := newTestOrchestrator(testDefinition(), remote).
			Advance(ctx, Request{Operation: OperationUpdate, Desired: desired, Previous: previous})

		assert.Equal(t, OutcomeSuccess, out.Status)
		assert.Equal(t, 1, remote.updates)
		assert.Same(t, previous, remote.lastPrevious)
		assert.Equal(t, "renamed", out.Model.Properties["name"])
	})
}

func TestReadAndList(t *testing.T) {
	ctx := context.Background()

	t.Run("read", func(t *testing.T) {
		remote := &fakeRemote{reads: []readResult{{obs: Observation{
			NativeID:   "t-1",
			Properties: map[string]interface{}{"name": "thing"},
		}}}}
		m, err := newTestOrchestrator(testDefinition(), remote).Read(ctx, "t-1")
		require.Nil(t, err)
		assert.Equal(t, "t-1", m.NativeID)
		assert.Equal(t, "thing", m.String("name"))
	})

	t.Run("read without identifier", func(t *testing.T) {
		_, err := newTestOrchestrator(testDefinition(), &fakeRemote{}).Read(ctx, "")
		require.NotNil(t, err)
		assert.Equal(t, KindInvalidRequest, err.Kind)
	})

	t.Run("read not found", func(t *testing.T) {
		remote := &fakeRemote{reads: []readResult{{err: &testFault{code: "RESOURCE_NOT_FOUND", status: 404}}}}
		_, err := newTestOrchestrator(testDefinition(), remote).Read(ctx, "t-1")
		require.NotNil(t, err)
		assert.Equal(t, KindNotFound, err.Kind)
	})

	t.Run("list", func(t *testing.T) {
		remote := &fakeRemote{listIDs: []string{"a", "b"}}
		ids, err := newTestOrchestrator(testDefinition(), remote).List(ctx, ListScope{Project: "p"})
		require.Nil(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
	})

	t.Run("list fault", func(t *testing.T) {
		remote := &fakeRemote{listErr: &testFault{status: 503}}
		_, err := newTestOrchestrator(testDefinition(), remote).List(ctx, ListScope{})
		require.NotNil(t, err)
		assert.Equal(t, KindServiceInternalError, err.Kind)
	})
}

func TestMetricsRecordTurnsAndCalls(t *testing.T) {
	metrics := NewMetrics("test")
	remote := &fakeRemote{
		createObs: Observation{NativeID: "t-1", Status: "INSTALLING"},
		reads:     []readResult{{obs: Observation{NativeID: "t-1", Status: "ERROR"}}},
	}
	o := newTestOrchestrator(testDefinition(), remote, WithMetrics(metrics))
	ctx := context.Background()

	out := o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing()})
	_ = o.Advance(ctx, Request{Operation: OperationCreate, Desired: desiredThing(), State: out.State})

	rt := "OVH::Test::Thing"
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.turns.WithLabelValues(rt, "create", string(OutcomeInProgress))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.turns.WithLabelValues(rt, "create", string(OutcomeFailed))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues(rt, "create", string(KindNotStabilized))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.remoteCalls.WithLabelValues(rt, "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.remoteCalls.WithLabelValues(rt, "read")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.recordCall("x", "read")
		m.recordOutcome("x", "create", Outcome{Status: OutcomeSuccess})
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}
