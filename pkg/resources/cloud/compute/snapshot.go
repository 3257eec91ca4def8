// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compute

import (
	"fmt"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// VolumeSnapshotResourceType is the resource type for block volume snapshots.
const VolumeSnapshotResourceType = "OVH::Compute::VolumeSnapshot"

var VolumeSnapshotSchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields:       []string{"volume_id", "name", "description", "size", "region"},
	Hints: map[string]model.FieldHint{
		"volume_id":   {Required: true, CreateOnly: true},
		"name":        {CreateOnly: true},
		"description": {CreateOnly: true},
	},
}

// VolumeSnapshotAPI creates snapshots below their volume and addresses them
// at the project level afterwards:
//
//	POST   /cloud/project/{serviceName}/volume/{volumeId}/snapshot
//	GET    /cloud/project/{serviceName}/volume/snapshot[/{snapshotId}]
//	DELETE /cloud/project/{serviceName}/volume/snapshot/{snapshotId}
var VolumeSnapshotAPI = base.APIConfig{
	PathBuilder: volumeSnapshotPathBuilder,
}

func volumeSnapshotPathBuilder(ctx base.PathContext) string {
	path := fmt.Sprintf("/cloud/project/%s/volume", ctx.Project)
	if ctx.ResourceName == "" && ctx.ParentResource != "" {
		return fmt.Sprintf("%s/%s/snapshot", path, ctx.ParentResource)
	}
	path += "/snapshot"
	if ctx.ResourceName != "" {
		path += "/" + ctx.ResourceName
	}
	return path
}

// VolumeSnapshot describes a snapshot of a block volume. Snapshots are
// immutable and settle asynchronously.
var VolumeSnapshot = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: VolumeSnapshotResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetTimeout,
			Limit:        1800,
			InitialDelay: 10,
			PollDelay:    20,
		},
		Classifier: ovhtransport.NewClassifier(),
		ClassifyStatus: lifecycle.StatusMap{
			Ready:  []string{"available"},
			Failed: []string{"error", "error_deleting"},
		}.Classify,
		IdempotentDelete: true,
	},
	API:      VolumeSnapshotAPI,
	NativeID: cloud.CloudNativeID,
	Resource: base.ResourceConfig{
		PathSegment: "snapshot",
		ParentResource: &base.ParentResourceConfig{
			ParentType:   "volume",
			PropertyName: "volume_id",
			CreateOnly:   true,
		},
	},
	Operations: base.OperationConfig{
		StatusField: "status",
		Async:       []lifecycle.Operation{lifecycle.OperationCreate, lifecycle.OperationDelete},
		PendingStatus: map[lifecycle.Operation]string{
			lifecycle.OperationCreate: "creating",
			lifecycle.OperationDelete: "deleting",
		},
	},
	ResponseTransformer: base.ResponseTransformerFunc(snapshotVolumeID),
}

// snapshotVolumeID reports the source volume under the property it was
// created with.
func snapshotVolumeID(body map[string]interface{}, _ base.TransformContext) map[string]interface{} {
	out := make(map[string]interface{}, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	if id, ok := body["volumeId"]; ok {
		delete(out, "volumeId")
		out["volume_id"] = id
	}
	return out
}

func init() {
	registry.RegisterREST(VolumeSnapshot, VolumeSnapshotSchema)
}
