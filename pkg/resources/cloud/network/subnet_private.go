// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// SubnetPrivateResourceType is the resource type for subnets of a private
// network.
const SubnetPrivateResourceType = "OVH::Network::SubnetPrivate"

// Field names follow the OVH API.
var SubnetPrivateSchema = model.Schema{
	Identifier:   "id",
	Discoverable: false,
	Fields:       []string{"network_id", "region", "network", "start", "end", "dhcp", "noGateway"},
	Hints: map[string]model.FieldHint{
		"network_id": {Required: true, CreateOnly: true},
		"region":     {Required: true, CreateOnly: true},
		"network":    {Required: true, CreateOnly: true},
		"start":      {Required: true, CreateOnly: true},
		"end":        {Required: true, CreateOnly: true},
		"dhcp":       {CreateOnly: true},
		"noGateway":  {CreateOnly: true},
	},
}

// SubnetPrivate describes a subnet of a private network. OVH creates it
// synchronously and never changes it.
// Path: /cloud/project/{serviceName}/network/private/{networkId}/subnet/{subnetId}
var SubnetPrivate = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: SubnetPrivateResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetAttempts,
			Limit:        10,
			InitialDelay: 5,
			PollDelay:    5,
		},
		Classifier:       ovhtransport.NewClassifier(),
		IdempotentDelete: true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.NestedNativeID,
	Resource: base.ResourceConfig{
		PathSegment: "subnet",
		ParentResource: &base.ParentResourceConfig{
			ParentType:   PrivateNetwork.Resource.PathSegment,
			PropertyName: "network_id",
		},
	},
	Operations: base.OperationConfig{
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
}

func init() {
	registry.RegisterREST(SubnetPrivate, SubnetPrivateSchema)
}
