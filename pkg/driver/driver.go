// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package driver plays the part of the formae agent for one resource type:
// it issues an operation and keeps calling Status with the returned
// RequestID, honoring the requested delay, until the operation settles.
package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
)

const (
	// DefaultMaxTurns bounds the Status calls of one operation.
	DefaultMaxTurns = 500
	// DefaultRetries bounds the retries of throttled or transiently failed
	// calls within one operation.
	DefaultRetries = 3
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the Sleeper used outside of tests.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FailedError is returned when an operation settles in failure.
type FailedError struct {
	Result *resource.ProgressResult
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Result.Operation, e.Result.ErrorCode, e.Result.StatusMessage)
}

// Unwrap exposes the failure as a classified error for lifecycle.KindOf.
func (e *FailedError) Unwrap() error {
	return lifecycle.NewError(lifecycle.KindOfErrorCode(e.Result.ErrorCode), e.Result.StatusMessage, nil)
}

func retryable(r *resource.ProgressResult) bool {
	return lifecycle.KindOf(&FailedError{Result: r}).Retryable()
}

// Driver runs operations of one resource type to completion.
type Driver struct {
	Provisioner  prov.Provisioner
	ResourceType string
	TargetConfig json.RawMessage

	// FallbackDelay is used when an in-progress result names no delay.
	FallbackDelay time.Duration
	MaxTurns      int
	// Retries bounds how often a retryable failure is retried. Status turns
	// are replayed from the last in-progress result; initiating calls only
	// for updates and deletes.
	Retries int
	Sleep   Sleeper
	// OnProgress, when set, sees every intermediate result.
	OnProgress func(*resource.ProgressResult)
}

// New creates a driver with production defaults.
func New(p prov.Provisioner, resourceType string, targetConfig json.RawMessage) *Driver {
	return &Driver{
		Provisioner:   p,
		ResourceType:  resourceType,
		TargetConfig:  targetConfig,
		FallbackDelay: 5 * time.Second,
		MaxTurns:      DefaultMaxTurns,
		Retries:       DefaultRetries,
		Sleep:         ContextSleep,
	}
}

// Create creates a resource from properties and waits for it to settle.
func (d *Driver) Create(ctx context.Context, properties json.RawMessage) (*resource.ProgressResult, error) {
	return d.run(ctx, false, func(ctx context.Context) (*resource.ProgressResult, error) {
		res, err := d.Provisioner.Create(ctx, &resource.CreateRequest{
			ResourceType: d.ResourceType,
			Properties:   properties,
			TargetConfig: d.TargetConfig,
		})
		if err != nil {
			return nil, err
		}
		return res.ProgressResult, nil
	})
}

// Update applies properties to nativeID and waits for it to settle.
func (d *Driver) Update(ctx context.Context, nativeID string, properties json.RawMessage) (*resource.ProgressResult, error) {
	return d.run(ctx, true, func(ctx context.Context) (*resource.ProgressResult, error) {
		res, err := d.Provisioner.Update(ctx, &resource.UpdateRequest{
			ResourceType:      d.ResourceType,
			NativeID:          nativeID,
			DesiredProperties: properties,
			TargetConfig:      d.TargetConfig,
		})
		if err != nil {
			return nil, err
		}
		return res.ProgressResult, nil
	})
}

// Delete deletes nativeID and waits until it is gone.
func (d *Driver) Delete(ctx context.Context, nativeID string) (*resource.ProgressResult, error) {
	return d.run(ctx, true, func(ctx context.Context) (*resource.ProgressResult, error) {
		res, err := d.Provisioner.Delete(ctx, &resource.DeleteRequest{
			ResourceType: d.ResourceType,
			NativeID:     nativeID,
			TargetConfig: d.TargetConfig,
		})
		if err != nil {
			return nil, err
		}
		return res.ProgressResult, nil
	})
}

// run issues the initiating call, repeating it on retryable failures when
// it is safe to repeat, and waits for the operation to settle.
func (d *Driver) run(ctx context.Context, repeatable bool, initiate func(context.Context) (*resource.ProgressResult, error)) (*resource.ProgressResult, error) {
	retries := d.Retries
	for {
		first, err := initiate(ctx)
		if err != nil {
			return nil, err
		}
		if !repeatable || retries <= 0 || first == nil ||
			first.OperationStatus != resource.OperationStatusFailure || !retryable(first) {
			return d.Wait(ctx, first)
		}
		retries--
		zerolog.Ctx(ctx).Warn().
			Str("errorCode", string(first.ErrorCode)).
			Int("retriesLeft", retries).
			Msg(first.StatusMessage)
		if err := d.sleeper()(ctx, d.FallbackDelay); err != nil {
			return first, err
		}
	}
}

// Read returns the current properties of nativeID.
func (d *Driver) Read(ctx context.Context, nativeID string) (json.RawMessage, error) {
	res, err := d.Provisioner.Read(ctx, &resource.ReadRequest{
		ResourceType: d.ResourceType,
		NativeID:     nativeID,
		TargetConfig: d.TargetConfig,
	})
	if err != nil {
		return nil, err
	}
	if res.ErrorCode != "" {
		return nil, fmt.Errorf("read %s failed: %s", nativeID, res.ErrorCode)
	}
	return json.RawMessage(res.Properties), nil
}

// List returns the native IDs visible in the target.
func (d *Driver) List(ctx context.Context, additional map[string]string) ([]string, error) {
	res, err := d.Provisioner.List(ctx, &resource.ListRequest{
		ResourceType:         d.ResourceType,
		TargetConfig:         d.TargetConfig,
		AdditionalProperties: additional,
	})
	if err != nil {
		return nil, err
	}
	return res.NativeIDs, nil
}

// Wait re-invokes Status with the RequestID of the previous result until the
// operation leaves IN_PROGRESS.
func (d *Driver) Wait(ctx context.Context, first *resource.ProgressResult) (*resource.ProgressResult, error) {
	if first == nil {
		return nil, errors.New("provisioner returned no progress result")
	}
	logger := zerolog.Ctx(ctx)
	sleep := d.sleeper()
	maxTurns := d.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	retries := d.Retries

	var last *resource.ProgressResult
	current := first
	for turn := 0; ; turn++ {
		switch current.OperationStatus {
		case resource.OperationStatusSuccess:
			return current, nil
		case resource.OperationStatusFailure:
			if last == nil || retries <= 0 || !retryable(current) {
				return current, &FailedError{Result: current}
			}
			// The state of the last in-progress turn can be replayed.
			retries--
			logger.Warn().
				Str("nativeId", current.NativeID).
				Str("errorCode", string(current.ErrorCode)).
				Int("retriesLeft", retries).
				Msg(current.StatusMessage)
			current = last
		}
		if turn >= maxTurns {
			return current, fmt.Errorf("%s still in progress after %d status checks", d.ResourceType, maxTurns)
		}
		if d.OnProgress != nil {
			d.OnProgress(current)
		}
		last = current

		delay, ok := base.NextCheck(current)
		if !ok {
			delay = d.FallbackDelay
		}
		logger.Debug().
			Str("nativeId", current.NativeID).
			Dur("delay", delay).
			Msg(current.StatusMessage)
		if err := sleep(ctx, delay); err != nil {
			return current, err
		}

		res, err := d.Provisioner.Status(ctx, &resource.StatusRequest{
			RequestID:    current.RequestID,
			NativeID:     current.NativeID,
			ResourceType: d.ResourceType,
			TargetConfig: d.TargetConfig,
		})
		if err != nil {
			return current, err
		}
		if res == nil || res.ProgressResult == nil {
			return current, errors.New("provisioner returned no status result")
		}
		current = res.ProgressResult
	}
}

func (d *Driver) sleeper() Sleeper {
	if d.Sleep == nil {
		return ContextSleep
	}
	return d.Sleep
}
