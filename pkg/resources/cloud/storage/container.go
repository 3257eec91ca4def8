// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package storage

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// ContainerResourceType is the resource type for Swift object storage containers.
const ContainerResourceType = "OVH::Storage::Container"

var ContainerSchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields:       []string{"name", "region", "archive", "containerType"},
	Hints: map[string]model.FieldHint{
		"name":    {Required: true, CreateOnly: true},
		"region":  {Required: true, CreateOnly: true},
		"archive": {CreateOnly: true},
	},
}

// Container describes a Swift container managed through the OVH API.
// Every call completes synchronously.
// Path: /cloud/project/{serviceName}/storage/{containerId}
var Container = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: ContainerResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetAttempts,
			Limit:        10,
			InitialDelay: 15,
			PollDelay:    15,
		},
		Classifier:     ovhtransport.NewClassifier(),
		Validate:       validateContainer,
		SupportsUpdate: true,
		// region reads back in its short form, so it is not compared.
		CreateOnly: []string{"archive", "name"},
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.CloudNativeID,
	Resource: base.ResourceConfig{
		PathSegment:   "storage",
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"containerType"},
	},
	Operations: base.OperationConfig{
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
	RequestTransformer: base.RequestTransformerFunc(containerRequest),
}

func validateContainer(op lifecycle.Operation, m lifecycle.Model) error {
	if m.NativeID != "" {
		return nil
	}
	if m.String("name") == "" || m.String("region") == "" {
		return errors.New("either a native id, or both name and region, must be present")
	}
	return nil
}

// containerRequest renames name to containerName and shortens the region on
// create. Swift uses 2-letter region codes (GRA, DE), not OpenStack ones.
func containerRequest(props map[string]interface{}, ctx base.TransformContext) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	if ctx.Operation != lifecycle.OperationCreate {
		return out, nil
	}
	if name, ok := out["name"]; ok {
		out["containerName"] = name
		delete(out, "name")
	}
	if region, ok := out["region"].(string); ok && region != "" {
		out["region"] = base.DeriveShortRegion(region)
	}
	return out, nil
}

func init() {
	registry.RegisterREST(Container, ContainerSchema)
}
