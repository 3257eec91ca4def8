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

// ClusterResourceType is the resource type for Kubernetes clusters.
const ClusterResourceType = "OVH::Kube::Cluster"

// Managed Kubernetes status vocabulary.
var kubeStatuses = lifecycle.StatusMap{
	Ready:  []string{"READY"},
	Failed: []string{"ERROR", "USER_ERROR", "USER_QUOTA_ERROR", "USER_NODE_NOT_FOUND_ERROR"},
	Gone:   []string{"DELETED"},
}

var ClusterSchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields: []string{
		"name", "region", "version", "plan", "kubeProxyMode", "updatePolicy",
		"privateNetworkId", "privateNetworkConfiguration",
		"loadBalancersSubnetId", "nodesSubnetId",
	},
	Hints: map[string]model.FieldHint{
		"name":                        {Required: true},
		"region":                      {Required: true, CreateOnly: true},
		"version":                     {CreateOnly: true},
		"plan":                        {CreateOnly: true},
		"kubeProxyMode":               {CreateOnly: true},
		"privateNetworkId":            {CreateOnly: true},
		"privateNetworkConfiguration": {CreateOnly: true},
		"loadBalancersSubnetId":       {CreateOnly: true},
		"nodesSubnetId":               {CreateOnly: true},
	},
}

// Cluster describes a managed Kubernetes cluster.
// Path: /cloud/project/{serviceName}/kube/{kubeId}
var Cluster = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: ClusterResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetTimeout,
			Limit:        3600,
			InitialDelay: 30,
			PollDelay:    30,
		},
		Classifier:       ovhtransport.NewClassifier(),
		ClassifyStatus:   kubeStatuses.Classify,
		Validate:         validateCluster,
		IdempotentDelete: true,
		SupportsUpdate:   true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.CloudNativeID,
	Resource: base.ResourceConfig{
		PathSegment:   "kube",
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"name", "updatePolicy"},
	},
	Operations: base.OperationConfig{
		StatusField: "status",
		Async: []lifecycle.Operation{
			lifecycle.OperationCreate,
			lifecycle.OperationUpdate,
			lifecycle.OperationDelete,
		},
		// PUT and DELETE answer with an empty body.
		PendingStatus: map[lifecycle.Operation]string{
			lifecycle.OperationUpdate: "UPDATING",
			lifecycle.OperationDelete: "DELETING",
		},
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
}

func validateCluster(_ lifecycle.Operation, m lifecycle.Model) error {
	if m.NativeID == "" && (m.String("name") == "" || m.String("region") == "") {
		return errors.New("either a native id, or both name and region, must be present")
	}
	return nil
}

func init() {
	registry.RegisterREST(Cluster, ClusterSchema)
}
