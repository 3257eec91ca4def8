// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package containerregistry manages OVHcloud Managed Private Registries.
package containerregistry

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// RegistryResourceType is the resource type for container registries.
const RegistryResourceType = "OVH::Registry::Registry"

var RegistrySchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields:       []string{"name", "region", "planID"},
	Hints: map[string]model.FieldHint{
		"name":   {Required: true},
		"region": {Required: true, CreateOnly: true},
		"planID": {CreateOnly: true},
	},
}

// Registry describes a managed Harbor registry. Installation takes several
// minutes; renames apply immediately.
// Path: /cloud/project/{serviceName}/containerRegistry/{registryId}
var Registry = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: RegistryResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetTimeout,
			Limit:        1200,
			InitialDelay: 20,
			PollDelay:    20,
		},
		Classifier: ovhtransport.NewClassifier(),
		ClassifyStatus: lifecycle.StatusMap{
			Ready:  []string{"READY"},
			Failed: []string{"ERROR"},
			Gone:   []string{"DELETED"},
		}.Classify,
		Validate: func(_ lifecycle.Operation, m lifecycle.Model) error {
			if m.NativeID == "" && (m.String("name") == "" || m.String("region") == "") {
				return errors.New("either a native id, or both name and region, must be present")
			}
			return nil
		},
		IdempotentDelete: true,
		SupportsUpdate:   true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.CloudNativeID,
	Resource: base.ResourceConfig{
		PathSegment:   "containerRegistry",
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"name"},
	},
	Operations: base.OperationConfig{
		StatusField: "status",
		Async:       []lifecycle.Operation{lifecycle.OperationCreate, lifecycle.OperationDelete},
		PendingStatus: map[lifecycle.Operation]string{
			lifecycle.OperationCreate: "INSTALLING",
			lifecycle.OperationDelete: "DELETING",
		},
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
}

func init() {
	registry.RegisterREST(Registry, RegistrySchema)
}
