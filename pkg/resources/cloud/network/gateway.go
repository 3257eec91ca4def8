// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// GatewayResourceType is the resource type for managed gateways of private
// networks.
const GatewayResourceType = "OVH::Network::Gateway"

var GatewaySchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields:       []string{"name", "model", "network"},
	Hints: map[string]model.FieldHint{
		"name":    {Required: true},
		"model":   {Required: true},
		"network": {CreateOnly: true},
	},
}

// Gateway describes a gateway of the target region. Creating, resizing and
// removing it are all asynchronous.
// Path: /cloud/project/{serviceName}/region/{regionName}/gateway/{id}
var Gateway = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: GatewayResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetTimeout,
			Limit:        900,
			InitialDelay: 10,
			PollDelay:    15,
		},
		Classifier: ovhtransport.NewClassifier(),
		ClassifyStatus: lifecycle.StatusMap{
			Ready:  []string{statusActive},
			Failed: []string{"ERROR"},
		}.Classify,
		Validate:         validateGateway,
		IdempotentDelete: true,
		SupportsUpdate:   true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.CloudNativeID,
	Resource: base.ResourceConfig{
		PathSegment:   "gateway",
		Regional:      true,
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"name", "model"},
	},
	Operations: base.OperationConfig{
		StatusField: "status",
		Async: []lifecycle.Operation{
			lifecycle.OperationCreate, lifecycle.OperationUpdate, lifecycle.OperationDelete,
		},
		PendingStatus: map[lifecycle.Operation]string{
			lifecycle.OperationCreate: statusBuilding,
			lifecycle.OperationUpdate: "UPDATING",
			lifecycle.OperationDelete: "DELETING",
		},
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
	// The region is part of the path.
	RequestTransformer: base.RequestTransformerFunc(func(props map[string]interface{}, _ base.TransformContext) (map[string]interface{}, error) {
		out := make(map[string]interface{}, len(props))
		for k, v := range props {
			if k != "region" {
				out[k] = v
			}
		}
		return out, nil
	}),
}

func validateGateway(op lifecycle.Operation, m lifecycle.Model) error {
	if op != lifecycle.OperationCreate || m.NativeID != "" {
		return nil
	}
	if m.String("name") == "" || m.String("model") == "" {
		return errors.New("either a native id, or name and model, must be present")
	}
	return nil
}

func init() {
	registry.RegisterREST(Gateway, GatewaySchema)
}
