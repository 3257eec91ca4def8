// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"errors"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/floatingips"
	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
)

const (
	ResourceTypeFloatingIP = "OVH::Network::FloatingIP"
)

// FloatingIP schema and descriptor
var (
	FloatingIPDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeFloatingIP,
		Discoverable: true,
	}

	FloatingIPSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields:       []string{"floating_network_id", "floating_ip_address", "port_id", "fixed_ip_address", "description", "tags"},
		Hints: map[string]model.FieldHint{
			"floating_network_id": {Required: true, CreateOnly: true},
			"floating_ip_address": {CreateOnly: true},
		},
	}
)

// FloatingIPDefinition describes Neutron floating IPs. Association with a
// port is an update of port_id; an empty port_id disassociates.
var FloatingIPDefinition = lifecycle.Definition{
	ResourceType: ResourceTypeFloatingIP,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   openstack.NewClassifier(),
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op == lifecycle.OperationCreate && m.String("floating_network_id") == "" {
			return errors.New("floating_network_id must be present")
		}
		return nil
	},
	IdempotentDelete: true,
	SupportsUpdate:   true,
	CreateOnly:       registry.CreateOnlyFields(FloatingIPSchema),
}

// FloatingIPRemote translates floating IP models to Neutron calls.
type FloatingIPRemote struct {
	API NeutronAPI
}

var _ lifecycle.Remote = (*FloatingIPRemote)(nil)

// NewFloatingIPProvisioner builds the formae provisioner for floating IPs
// backed by api.
func NewFloatingIPProvisioner(api NeutronAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(FloatingIPDefinition, &FloatingIPRemote{API: api}, opts...))
}

func (r *FloatingIPRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	fip, err := r.API.CreateFloatingIP(ctx, floatingips.CreateOpts{
		FloatingNetworkID: resources.String(props, "floating_network_id"),
		FloatingIP:        resources.String(props, "floating_ip_address"),
		PortID:            resources.String(props, "port_id"),
		FixedIP:           resources.String(props, "fixed_ip_address"),
		Description:       resources.String(props, "description"),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if tags := resources.Strings(props, "tags"); len(tags) > 0 {
		if fip.Tags, err = r.API.ReplaceTags(ctx, "floatingips", fip.ID, tags); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeFloatingIP(fip), nil
}

func (r *FloatingIPRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	portID := resources.String(props, "port_id")
	opts := floatingips.UpdateOpts{PortID: &portID}
	if portID != "" {
		opts.FixedIP = resources.String(props, "fixed_ip_address")
	}
	if _, ok := props["description"]; ok {
		description := resources.String(props, "description")
		opts.Description = &description
	}

	fip, err := r.API.UpdateFloatingIP(ctx, desired.NativeID, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, ok := props["tags"]; ok {
		if fip.Tags, err = r.API.ReplaceTags(ctx, "floatingips", desired.NativeID, resources.Strings(props, "tags")); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeFloatingIP(fip), nil
}

func (r *FloatingIPRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.DeleteFloatingIP(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *FloatingIPRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	fip, err := r.API.GetFloatingIP(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeFloatingIP(fip), nil
}

func (r *FloatingIPRemote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	list, err := r.API.ListFloatingIPs(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, fip := range list {
		ids = append(ids, fip.ID)
	}
	return ids, nil
}

func observeFloatingIP(fip *floatingips.FloatingIP) lifecycle.Observation {
	props := map[string]interface{}{
		"id":                  fip.ID,
		"floating_network_id": fip.FloatingNetworkID,
		"floating_ip_address": fip.FloatingIP,
		"status":              fip.Status,
	}
	if fip.Description != "" {
		props["description"] = fip.Description
	}
	if fip.PortID != "" {
		props["port_id"] = fip.PortID
		props["fixed_ip_address"] = fip.FixedIP
	}
	if fip.RouterID != "" {
		props["router_id"] = fip.RouterID
	}
	if len(fip.Tags) > 0 {
		props["tags"] = fip.Tags
	}
	return lifecycle.Observation{NativeID: fip.ID, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypeFloatingIP,
		FloatingIPDescriptor,
		FloatingIPSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewFloatingIPProvisioner(&neutron{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
