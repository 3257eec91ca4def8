// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package prov defines the contract between the plugin entry point and the
// per-resource handlers.
package prov

import (
	"context"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
)

// Provisioner handles one resource type. Create, Update and Delete issue at
// most one mutating call and return InProgress with an opaque RequestID when
// the remote side has not settled yet; Status resumes from that RequestID
// with exactly one read. Failures are reported in the result, never as the
// returned error, except by List.
type Provisioner interface {
	Create(ctx context.Context, request *resource.CreateRequest) (*resource.CreateResult, error)
	Read(ctx context.Context, request *resource.ReadRequest) (*resource.ReadResult, error)
	Update(ctx context.Context, request *resource.UpdateRequest) (*resource.UpdateResult, error)
	Delete(ctx context.Context, request *resource.DeleteRequest) (*resource.DeleteResult, error)
	Status(ctx context.Context, request *resource.StatusRequest) (*resource.StatusResult, error)
	List(ctx context.Context, request *resource.ListRequest) (*resource.ListResult, error)
}
