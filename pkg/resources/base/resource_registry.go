// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

import (
	"fmt"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
)

// RESTDefinition is the complete description of one OVH REST resource type:
// how its URLs and native IDs are built, how its fields translate and how
// the lifecycle engine stabilizes it.
type RESTDefinition struct {
	Lifecycle           lifecycle.Definition
	API                 APIConfig
	Resource            ResourceConfig
	NativeID            NativeIDConfig
	Operations          OperationConfig
	RequestTransformer  RequestTransformer
	ResponseTransformer ResponseTransformer
}

// Validate checks that the definition is internally consistent.
func (d *RESTDefinition) Validate() error {
	if d.Lifecycle.ResourceType == "" {
		return fmt.Errorf("resource type cannot be empty")
	}
	if d.API.PathBuilder == nil {
		return fmt.Errorf("%s: path builder is required", d.Lifecycle.ResourceType)
	}
	if d.Lifecycle.SupportsUpdate && d.Resource.UpdateMethod == UpdateMethodNone {
		return fmt.Errorf("%s: updates are supported but no update method is set", d.Lifecycle.ResourceType)
	}
	for _, op := range d.Operations.Async {
		if d.Operations.PendingStatus[op] == "" && d.Operations.StatusField == "" && d.Operations.StatusExtractor == nil {
			return fmt.Errorf("%s: async %s needs a status field or pending status", d.Lifecycle.ResourceType, op)
		}
	}
	return nil
}

// Remote binds the definition to an OVH client and target defaults.
func (d *RESTDefinition) Remote(client Doer, project, region string) *RESTRemote {
	return &RESTRemote{Def: d, Client: client, Project: project, Region: region}
}

// Provisioner builds the formae provisioner for the definition.
func (d *RESTDefinition) Provisioner(client Doer, project, region string, opts ...lifecycle.Option) *BaseResource {
	return NewBaseResource(lifecycle.New(d.Lifecycle, d.Remote(client, project, region), opts...))
}
