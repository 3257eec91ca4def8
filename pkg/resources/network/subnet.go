// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"errors"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/subnets"
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
	ResourceTypeSubnet = "OVH::Network::Subnet"
)

// Subnet schema and descriptor
var (
	SubnetDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeSubnet,
		Discoverable: true,
	}

	SubnetSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields:       []string{"name", "description", "network_id", "cidr", "ip_version", "gateway_ip", "enable_dhcp", "dns_nameservers", "allocation_pools", "tags"},
		Hints: map[string]model.FieldHint{
			"network_id":       {Required: true, CreateOnly: true},
			"cidr":             {Required: true, CreateOnly: true},
			"ip_version":       {CreateOnly: true},
			"allocation_pools": {CreateOnly: true},
		},
	}
)

// SubnetDefinition describes Neutron subnets. They carry no status and every
// call is synchronous.
var SubnetDefinition = lifecycle.Definition{
	ResourceType: ResourceTypeSubnet,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   openstack.NewClassifier(),
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op == lifecycle.OperationCreate && (m.String("network_id") == "" || m.String("cidr") == "") {
			return errors.New("network_id and cidr must be present")
		}
		return nil
	},
	IdempotentDelete: true,
	SupportsUpdate:   true,
	CreateOnly:       registry.CreateOnlyFields(SubnetSchema),
}

// SubnetRemote translates subnet models to Neutron calls.
type SubnetRemote struct {
	API NeutronAPI
}

var _ lifecycle.Remote = (*SubnetRemote)(nil)

// NewSubnetProvisioner builds the formae provisioner for subnets backed by api.
func NewSubnetProvisioner(api NeutronAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(SubnetDefinition, &SubnetRemote{API: api}, opts...))
}

func (r *SubnetRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := subnets.CreateOpts{
		NetworkID:       resources.String(props, "network_id"),
		CIDR:            resources.String(props, "cidr"),
		Name:            resources.String(props, "name"),
		Description:     resources.String(props, "description"),
		IPVersion:       gophercloud.IPv4,
		DNSNameservers:  resources.Strings(props, "dns_nameservers"),
		AllocationPools: allocationPools(props),
	}
	if v, ok := resources.Int(props, "ip_version"); ok {
		opts.IPVersion = gophercloud.IPVersion(v)
	}
	if _, ok := props["gateway_ip"]; ok {
		gw := resources.String(props, "gateway_ip")
		opts.GatewayIP = &gw
	}
	if dhcp, ok := resources.Bool(props, "enable_dhcp"); ok {
		opts.EnableDHCP = &dhcp
	}

	sn, err := r.API.CreateSubnet(ctx, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if tags := resources.Strings(props, "tags"); len(tags) > 0 {
		if sn.Tags, err = r.API.ReplaceTags(ctx, "subnets", sn.ID, tags); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeSubnet(sn), nil
}

func (r *SubnetRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := subnets.UpdateOpts{}
	if _, ok := props["name"]; ok {
		name := resources.String(props, "name")
		opts.Name = &name
	}
	if _, ok := props["description"]; ok {
		description := resources.String(props, "description")
		opts.Description = &description
	}
	if _, ok := props["gateway_ip"]; ok {
		gw := resources.String(props, "gateway_ip")
		opts.GatewayIP = &gw
	}
	if dhcp, ok := resources.Bool(props, "enable_dhcp"); ok {
		opts.EnableDHCP = &dhcp
	}
	if _, ok := props["dns_nameservers"]; ok {
		servers := resources.Strings(props, "dns_nameservers")
		if servers == nil {
			servers = []string{}
		}
		opts.DNSNameservers = &servers
	}

	sn, err := r.API.UpdateSubnet(ctx, desired.NativeID, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, ok := props["tags"]; ok {
		if sn.Tags, err = r.API.ReplaceTags(ctx, "subnets", desired.NativeID, resources.Strings(props, "tags")); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeSubnet(sn), nil
}

func (r *SubnetRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.DeleteSubnet(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *SubnetRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	sn, err := r.API.GetSubnet(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeSubnet(sn), nil
}

func (r *SubnetRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	list, err := r.API.ListSubnets(ctx)
	if err != nil {
		return nil, err
	}
	network := scope.AdditionalProperties["network_id"]
	ids := make([]string, 0, len(list))
	for _, sn := range list {
		if network != "" && sn.NetworkID != network {
			continue
		}
		ids = append(ids, sn.ID)
	}
	return ids, nil
}

func allocationPools(props map[string]interface{}) []subnets.AllocationPool {
	raw, _ := props["allocation_pools"].([]interface{})
	var pools []subnets.AllocationPool
	for _, item := range raw {
		pool, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		start, end := resources.String(pool, "start"), resources.String(pool, "end")
		if start != "" && end != "" {
			pools = append(pools, subnets.AllocationPool{Start: start, End: end})
		}
	}
	return pools
}

func observeSubnet(sn *subnets.Subnet) lifecycle.Observation {
	servers := sn.DNSNameservers
	if servers == nil {
		servers = []string{}
	}
	props := map[string]interface{}{
		"id":              sn.ID,
		"network_id":      sn.NetworkID,
		"name":            sn.Name,
		"cidr":            sn.CIDR,
		"ip_version":      sn.IPVersion,
		"gateway_ip":      sn.GatewayIP,
		"enable_dhcp":     sn.EnableDHCP,
		"dns_nameservers": servers,
	}
	if sn.Description != "" {
		props["description"] = sn.Description
	}
	if len(sn.AllocationPools) > 0 {
		pools := make([]interface{}, 0, len(sn.AllocationPools))
		for _, p := range sn.AllocationPools {
			pools = append(pools, map[string]interface{}{"start": p.Start, "end": p.End})
		}
		props["allocation_pools"] = pools
	}
	if len(sn.Tags) > 0 {
		props["tags"] = sn.Tags
	}
	return lifecycle.Observation{NativeID: sn.ID, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypeSubnet,
		SubnetDescriptor,
		SubnetSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewSubnetProvisioner(&neutron{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
