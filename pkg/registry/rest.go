// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package registry

import (
	"fmt"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
)

// RegisterREST registers an OVH REST resource. Create-only fields default to
// the schema's CreateOnly hints.
func (r *Registry) RegisterREST(def *base.RESTDefinition, schema model.Schema) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if len(def.Lifecycle.CreateOnly) == 0 {
		def.Lifecycle.CreateOnly = CreateOnlyFields(schema)
	}

	r.Register(def.Lifecycle.ResourceType,
		plugin.ResourceDescriptor{Type: def.Lifecycle.ResourceType, Discoverable: schema.Discoverable},
		schema,
		func(c *client.Client) (prov.Provisioner, error) {
			doer, err := c.OVH()
			if err != nil {
				return nil, err
			}
			return def.Provisioner(doer, c.Config.ProjectID, c.Config.Region, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
	return nil
}

// RegisterREST registers an OVH REST resource in the plugin registry. An
// inconsistent definition is a programming error and panics at init.
func RegisterREST(def *base.RESTDefinition, schema model.Schema) {
	if err := registry.RegisterREST(def, schema); err != nil {
		panic(fmt.Sprintf("registering %s: %v", def.Lifecycle.ResourceType, err))
	}
}
