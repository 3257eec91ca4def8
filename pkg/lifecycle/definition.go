// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import "strings"

// Definition is everything resource-specific the orchestrator needs besides
// the Remote.
type Definition struct {
	ResourceType string
	Budget       BudgetPolicy
	Classifier   *Classifier

	// ClassifyStatus maps the remote status vocabulary to a StatusClass. This
	// is the only place resource-specific statuses enter the engine.
	ClassifyStatus func(op Operation, status string) StatusClass

	// Validate is the required-field check. A non-nil error fails the turn
	// with InvalidRequest and the error text as message, before any remote call.
	Validate func(op Operation, m Model) error

	// IdempotentDelete treats NotFound on a delete poll as success.
	IdempotentDelete bool

	SupportsUpdate bool
	// CreateOnly properties cannot change on update; a change fails with
	// NotUpdatable.
	CreateOnly []string
}

// StatusMap is a table-driven ClassifyStatus. Matching is case-insensitive.
type StatusMap struct {
	// Ready statuses end a create or update.
	Ready []string
	// Failed statuses fail any operation.
	Failed []string
	// Gone statuses end a delete. Any other readable status keeps a delete
	// in progress.
	Gone []string
}

// Classify implements Definition.ClassifyStatus.
func (m StatusMap) Classify(op Operation, status string) StatusClass {
	if containsFold(m.Failed, status) {
		return StatusFailed
	}
	if op == OperationDelete {
		if containsFold(m.Gone, status) {
			return StatusSucceeded
		}
		return StatusInProgress
	}
	if containsFold(m.Ready, status) {
		return StatusSucceeded
	}
	return StatusInProgress
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
