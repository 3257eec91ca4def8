// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package kube

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// NodePoolResourceType is the resource type for Kubernetes node pools.
const NodePoolResourceType = "OVH::Kube::NodePool"

var NodePoolSchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields: []string{
		"kubeId", "name", "flavorName", "desiredNodes", "minNodes", "maxNodes",
		"autoscale", "antiAffinity", "monthlyBilled", "template",
	},
	Hints: map[string]model.FieldHint{
		"kubeId":        {Required: true, CreateOnly: true},
		"name":          {Required: true, CreateOnly: true},
		"flavorName":    {Required: true, CreateOnly: true},
		"antiAffinity":  {CreateOnly: true},
		"monthlyBilled": {CreateOnly: true},
	},
}

// NodePool describes a node pool nested under a cluster.
// Path: /cloud/project/{serviceName}/kube/{kubeId}/nodepool/{nodePoolId}
var NodePool = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: NodePoolResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetTimeout,
			Limit:        1800,
			InitialDelay: 30,
			PollDelay:    30,
		},
		Classifier:       ovhtransport.NewClassifier(),
		ClassifyStatus:   kubeStatuses.Classify,
		Validate:         validateNodePool,
		IdempotentDelete: true,
		SupportsUpdate:   true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.NestedNativeID,
	Resource: base.ResourceConfig{
		PathSegment: "nodepool",
		ParentResource: &base.ParentResourceConfig{
			ParentType:   "kube",
			PropertyName: "kubeId",
		},
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"desiredNodes", "minNodes", "maxNodes", "autoscale", "template"},
	},
	Operations: base.OperationConfig{
		StatusField: "status",
		Async: []lifecycle.Operation{
			lifecycle.OperationCreate,
			lifecycle.OperationUpdate,
			lifecycle.OperationDelete,
		},
		PendingStatus: map[lifecycle.Operation]string{
			lifecycle.OperationUpdate: "RESIZING",
			lifecycle.OperationDelete: "DELETING",
		},
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
}

func validateNodePool(_ lifecycle.Operation, m lifecycle.Model) error {
	if m.NativeID == "" && (m.String("kubeId") == "" || m.String("name") == "") {
		return errors.New("either a native id, or both kubeId and name, must be present")
	}
	return nil
}

func init() {
	registry.RegisterREST(NodePool, NodePoolSchema)
}
