// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/require"
)

// StatusChecker defines the interface for checking operation status
type StatusChecker interface {
	Status(ctx context.Context, request *resource.StatusRequest) (*resource.StatusResult, error)
}

// PollConfig configures the polling behavior
type PollConfig struct {
	MaxAttempts   int
	CheckInterval time.Duration
	ResourceType  string
	OperationName string // "Create", "Delete", "Update" for better logging
}

// DefaultPollConfig returns sensible defaults for polling
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MaxAttempts:   100,
		CheckInterval: 5 * time.Second,
		OperationName: "Operation",
	}
}

// PollConfigBuilder provides a fluent API for building PollConfig
type PollConfigBuilder struct {
	config PollConfig
}

// NewPollConfig creates a new PollConfigBuilder with defaults
func NewPollConfig() *PollConfigBuilder {
	return &PollConfigBuilder{
		config: DefaultPollConfig(),
	}
}

// WithMaxAttempts sets the maximum number of polling attempts
func (b *PollConfigBuilder) WithMaxAttempts(attempts int) *PollConfigBuilder {
	b.config.MaxAttempts = attempts
	return b
}

// WithCheckInterval sets the interval between polling attempts
func (b *PollConfigBuilder) WithCheckInterval(interval time.Duration) *PollConfigBuilder {
	b.config.CheckInterval = interval
	return b
}

// ForCreate configures for a create operation
func (b *PollConfigBuilder) ForCreate() *PollConfigBuilder {
	b.config.OperationName = "Create"
	return b
}

// ForDelete configures for a delete operation
func (b *PollConfigBuilder) ForDelete() *PollConfigBuilder {
	b.config.OperationName = "Delete"
	return b
}

// ForUpdate configures for an update operation
func (b *PollConfigBuilder) ForUpdate() *PollConfigBuilder {
	b.config.OperationName = "Update"
	return b
}

// Build returns the final PollConfig
func (b *PollConfigBuilder) Build() PollConfig {
	return b.config
}

// PollUntilComplete re-invokes Status with the RequestID of the previous
// result until the operation leaves IN_PROGRESS or attempts run out.
func PollUntilComplete(
	t *testing.T,
	ctx context.Context,
	checker StatusChecker,
	first *resource.ProgressResult,
	targetConfig json.RawMessage,
	config PollConfig,
) (*resource.ProgressResult, error) {
	t.Helper()
	require.NotNil(t, first, "%s progress result should not be nil", config.OperationName)

	if config.MaxAttempts == 0 {
		config.MaxAttempts = 30
	}

	current := first
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		switch current.OperationStatus {
		case resource.OperationStatusSuccess:
			t.Logf("%s completed successfully with native ID: %s", config.OperationName, current.NativeID)
			return current, nil
		case resource.OperationStatusFailure:
			return current, fmt.Errorf("%s operation failed: %s (error code: %s)",
				config.OperationName, current.StatusMessage, current.ErrorCode)
		}

		time.Sleep(config.CheckInterval)

		statusResult, err := checker.Status(ctx, &resource.StatusRequest{
			RequestID:    current.RequestID,
			NativeID:     current.NativeID,
			ResourceType: config.ResourceType,
			TargetConfig: targetConfig,
		})
		require.NoError(t, err, "%s status check should not return error", config.OperationName)
		require.NotNil(t, statusResult, "%s status result should not be nil", config.OperationName)
		require.NotNil(t, statusResult.ProgressResult, "%s progress result should not be nil", config.OperationName)

		t.Logf("%s status check attempt %d/%d: %s (status: %s)",
			config.OperationName, attempt+1, config.MaxAttempts,
			statusResult.ProgressResult.StatusMessage, statusResult.ProgressResult.OperationStatus)
		current = statusResult.ProgressResult
	}

	if current.OperationStatus == resource.OperationStatusSuccess {
		return current, nil
	}
	return current, fmt.Errorf("%s operation timed out after %d attempts", config.OperationName, config.MaxAttempts)
}

// WaitForCreate is a convenience wrapper for Create operations
func WaitForCreate(
	t *testing.T,
	ctx context.Context,
	checker StatusChecker,
	createResult *resource.CreateResult,
	targetConfig json.RawMessage,
	config PollConfig,
) (*resource.ProgressResult, error) {
	t.Helper()
	config.OperationName = "Create"
	return PollUntilComplete(t, ctx, checker, createResult.ProgressResult, targetConfig, config)
}

// WaitForUpdate is a convenience wrapper for Update operations
func WaitForUpdate(
	t *testing.T,
	ctx context.Context,
	checker StatusChecker,
	updateResult *resource.UpdateResult,
	targetConfig json.RawMessage,
	config PollConfig,
) (*resource.ProgressResult, error) {
	t.Helper()
	config.OperationName = "Update"
	return PollUntilComplete(t, ctx, checker, updateResult.ProgressResult, targetConfig, config)
}

// WaitForDelete is a convenience wrapper for Delete operations
func WaitForDelete(
	t *testing.T,
	ctx context.Context,
	checker StatusChecker,
	deleteResult *resource.DeleteResult,
	targetConfig json.RawMessage,
	config PollConfig,
) (*resource.ProgressResult, error) {
	t.Helper()
	config.OperationName = "Delete"
	return PollUntilComplete(t, ctx, checker, deleteResult.ProgressResult, targetConfig, config)
}
