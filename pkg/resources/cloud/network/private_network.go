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

// PrivateNetworkResourceType is the resource type for vRack private networks.
const PrivateNetworkResourceType = "OVH::Network::PrivateNetwork"

const (
	statusActive   = "ACTIVE"
	statusBuilding = "BUILDING"
)

var PrivateNetworkSchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields:       []string{"name", "vlanId", "regions"},
	Hints: map[string]model.FieldHint{
		"name":    {Required: true},
		"vlanId":  {CreateOnly: true},
		"regions": {CreateOnly: true},
	},
}

// PrivateNetwork describes a private network. It is usable only once every
// region it spans is ACTIVE.
// Path: /cloud/project/{serviceName}/network/private/{networkId}
var PrivateNetwork = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: PrivateNetworkResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetAttempts,
			Limit:        40,
			InitialDelay: 15,
			PollDelay:    15,
		},
		Classifier: ovhtransport.NewClassifier(),
		ClassifyStatus: lifecycle.StatusMap{
			Ready:  []string{statusActive},
			Failed: []string{"ERROR"},
		}.Classify,
		IdempotentDelete: true,
		SupportsUpdate:   true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.CloudNativeID,
	Resource: base.ResourceConfig{
		PathSegment:   "network/private",
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"name"},
	},
	Operations: base.OperationConfig{
		StatusExtractor: privateNetworkStatus,
		Async:           []lifecycle.Operation{lifecycle.OperationCreate, lifecycle.OperationDelete},
		PendingStatus: map[lifecycle.Operation]string{
			lifecycle.OperationCreate: statusBuilding,
			lifecycle.OperationDelete: "DELETING",
		},
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
	ResponseTransformer: base.ResponseTransformerFunc(simplifyRegions),
}

// privateNetworkStatus reports the first region that is not yet ACTIVE, or
// the network status once all regions are.
func privateNetworkStatus(body map[string]interface{}) string {
	regions, _ := body["regions"].([]interface{})
	for _, r := range regions {
		region, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		if status, _ := region["status"].(string); status != statusActive {
			if status == "" {
				return statusBuilding
			}
			return status
		}
	}
	if status, _ := body["status"].(string); status != "" {
		return status
	}
	if len(regions) > 0 {
		return statusActive
	}
	return ""
}

// simplifyRegions turns [{region: "DE1", status: ...}] into ["DE1"].
func simplifyRegions(body map[string]interface{}, _ base.TransformContext) map[string]interface{} {
	out := make(map[string]interface{}, len(body))
	for k, v := range body {
		out[k] = v
	}
	regions, ok := body["regions"].([]interface{})
	if !ok {
		return out
	}
	names := make([]interface{}, 0, len(regions))
	for _, r := range regions {
		if region, ok := r.(map[string]interface{}); ok {
			if name, ok := region["region"].(string); ok {
				names = append(names, name)
			}
		}
	}
	out["regions"] = names
	return out
}

func init() {
	registry.RegisterREST(PrivateNetwork, PrivateNetworkSchema)
}
