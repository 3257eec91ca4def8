// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package network manages OpenStack Neutron resources of a Public Cloud
// project.
package network

import (
	"context"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/mtu"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
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
	ResourceTypeNetwork = "OVH::Network::Network"
)

// Network schema and descriptor
var (
	NetworkDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeNetwork,
		Discoverable: true,
	}

	NetworkSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields:       []string{"name", "description", "admin_state_up", "shared", "mtu", "tags"},
		Hints: map[string]model.FieldHint{
			// OVH doesn't support updating network descriptions
			"description": {CreateOnly: true},
			"shared":      {CreateOnly: true},
			"mtu":         {CreateOnly: true},
		},
	}
)

// NetworkDefinition describes Neutron networks. Neutron usually answers
// ACTIVE straight away; BUILD and DOWN are waited out.
var NetworkDefinition = lifecycle.Definition{
	ResourceType: ResourceTypeNetwork,
	Budget: lifecycle.BudgetPolicy{
		Mode:         lifecycle.BudgetAttempts,
		Limit:        20,
		InitialDelay: 5,
		PollDelay:    5,
	},
	Classifier: openstack.NewClassifier(),
	ClassifyStatus: lifecycle.StatusMap{
		Ready:  []string{"ACTIVE"},
		Failed: []string{"ERROR"},
	}.Classify,
	IdempotentDelete: true,
	SupportsUpdate:   true,
	CreateOnly:       registry.CreateOnlyFields(NetworkSchema),
}

// NetworkRemote translates network models to Neutron calls.
type NetworkRemote struct {
	API NeutronAPI
}

var _ lifecycle.Remote = (*NetworkRemote)(nil)

// NewNetworkProvisioner builds the formae provisioner for networks backed by api.
func NewNetworkProvisioner(api NeutronAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(NetworkDefinition, &NetworkRemote{API: api}, opts...))
}

func (r *NetworkRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := networks.CreateOpts{
		Name:        resources.String(props, "name"),
		Description: resources.String(props, "description"),
	}
	if up, ok := resources.Bool(props, "admin_state_up"); ok {
		opts.AdminStateUp = &up
	}
	if shared, ok := resources.Bool(props, "shared"); ok {
		opts.Shared = &shared
	}

	var builder networks.CreateOptsBuilder = opts
	if size, ok := resources.Int(props, "mtu"); ok && size > 0 {
		builder = mtu.CreateOptsExt{CreateOptsBuilder: opts, MTU: size}
	}

	net, err := r.API.CreateNetwork(ctx, builder)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if tags := resources.Strings(props, "tags"); len(tags) > 0 {
		if net.Tags, err = r.API.ReplaceTags(ctx, "networks", net.ID, tags); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeNetwork(net), nil
}

// Update applies name, admin state and tags. Neutron applies them
// synchronously.
func (r *NetworkRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := networks.UpdateOpts{}
	if _, ok := props["name"]; ok {
		name := resources.String(props, "name")
		opts.Name = &name
	}
	if up, ok := resources.Bool(props, "admin_state_up"); ok {
		opts.AdminStateUp = &up
	}

	net, err := r.API.UpdateNetwork(ctx, desired.NativeID, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, ok := props["tags"]; ok {
		if net.Tags, err = r.API.ReplaceTags(ctx, "networks", desired.NativeID, resources.Strings(props, "tags")); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	obs := observeNetwork(net)
	obs.Status = ""
	return obs, nil
}

func (r *NetworkRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.DeleteNetwork(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *NetworkRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	net, err := r.API.GetNetwork(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeNetwork(net), nil
}

func (r *NetworkRemote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	list, err := r.API.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func observeNetwork(net *Network) lifecycle.Observation {
	props := map[string]interface{}{
		"id":             net.ID,
		"name":           net.Name,
		"description":    net.Description,
		"admin_state_up": net.AdminStateUp,
		"shared":         net.Shared,
	}
	if net.MTU > 0 {
		props["mtu"] = net.MTU
	}
	if len(net.Tags) > 0 {
		props["tags"] = net.Tags
	}
	return lifecycle.Observation{NativeID: net.ID, Status: net.Status, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypeNetwork,
		NetworkDescriptor,
		NetworkSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewNetworkProvisioner(&neutron{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
