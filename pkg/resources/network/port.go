// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"errors"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/ports"
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
	ResourceTypePort = "OVH::Network::Port"
)

// Port schema and descriptor
var (
	PortDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypePort,
		Discoverable: true,
	}

	PortSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields: []string{
			"name", "description", "network_id", "fixed_ips", "security_groups",
			"admin_state_up", "mac_address", "allowed_address_pairs", "tags",
		},
		Hints: map[string]model.FieldHint{
			"network_id":  {Required: true, CreateOnly: true},
			"fixed_ips":   {CreateOnly: true},
			"mac_address": {CreateOnly: true},
		},
	}
)

// PortDefinition describes Neutron ports. A port stays DOWN until a device
// binds it, so its status is reported but never waited for.
var PortDefinition = lifecycle.Definition{
	ResourceType: ResourceTypePort,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   openstack.NewClassifier(),
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op == lifecycle.OperationCreate && m.String("network_id") == "" {
			return errors.New("network_id must be present")
		}
		return nil
	},
	IdempotentDelete: true,
	SupportsUpdate:   true,
	CreateOnly:       registry.CreateOnlyFields(PortSchema),
}

// PortRemote translates port models to Neutron calls.
type PortRemote struct {
	API NeutronAPI
}

var _ lifecycle.Remote = (*PortRemote)(nil)

// NewPortProvisioner builds the formae provisioner for ports backed by api.
func NewPortProvisioner(api NeutronAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(PortDefinition, &PortRemote{API: api}, opts...))
}

func (r *PortRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := ports.CreateOpts{
		NetworkID:           resources.String(props, "network_id"),
		Name:                resources.String(props, "name"),
		Description:         resources.String(props, "description"),
		MACAddress:          resources.String(props, "mac_address"),
		AllowedAddressPairs: addressPairs(props),
	}
	if ips := fixedIPs(props); len(ips) > 0 {
		opts.FixedIPs = ips
	}
	if groups := resources.Strings(props, "security_groups"); groups != nil {
		opts.SecurityGroups = &groups
	}
	if up, ok := resources.Bool(props, "admin_state_up"); ok {
		opts.AdminStateUp = &up
	}

	port, err := r.API.CreatePort(ctx, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if tags := resources.Strings(props, "tags"); len(tags) > 0 {
		if port.Tags, err = r.API.ReplaceTags(ctx, "ports", port.ID, tags); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observePort(port), nil
}

func (r *PortRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := ports.UpdateOpts{}
	if _, ok := props["name"]; ok {
		name := resources.String(props, "name")
		opts.Name = &name
	}
	if _, ok := props["description"]; ok {
		description := resources.String(props, "description")
		opts.Description = &description
	}
	if up, ok := resources.Bool(props, "admin_state_up"); ok {
		opts.AdminStateUp = &up
	}
	if _, ok := props["security_groups"]; ok {
		groups := resources.Strings(props, "security_groups")
		if groups == nil {
			groups = []string{}
		}
		opts.SecurityGroups = &groups
	}
	if _, ok := props["allowed_address_pairs"]; ok {
		pairs := addressPairs(props)
		if pairs == nil {
			pairs = []ports.AddressPair{}
		}
		opts.AllowedAddressPairs = &pairs
	}

	port, err := r.API.UpdatePort(ctx, desired.NativeID, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, ok := props["tags"]; ok {
		if port.Tags, err = r.API.ReplaceTags(ctx, "ports", desired.NativeID, resources.Strings(props, "tags")); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observePort(port), nil
}

func (r *PortRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.DeletePort(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *PortRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	port, err := r.API.GetPort(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observePort(port), nil
}

// List skips ports owned by OpenStack itself (router interfaces, DHCP
// agents, instances), which are not managed as standalone resources.
func (r *PortRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	list, err := r.API.ListPorts(ctx)
	if err != nil {
		return nil, err
	}
	network := scope.AdditionalProperties["network_id"]
	ids := make([]string, 0, len(list))
	for _, port := range list {
		if port.DeviceOwner != "" || (network != "" && port.NetworkID != network) {
			continue
		}
		ids = append(ids, port.ID)
	}
	return ids, nil
}

func fixedIPs(props map[string]interface{}) []ports.IP {
	raw, _ := props["fixed_ips"].([]interface{})
	var ips []ports.IP
	for _, item := range raw {
		if ip, ok := item.(map[string]interface{}); ok {
			ips = append(ips, ports.IP{
				SubnetID:  resources.String(ip, "subnet_id"),
				IPAddress: resources.String(ip, "ip_address"),
			})
		}
	}
	return ips
}

func addressPairs(props map[string]interface{}) []ports.AddressPair {
	raw, _ := props["allowed_address_pairs"].([]interface{})
	var pairs []ports.AddressPair
	for _, item := range raw {
		if pair, ok := item.(map[string]interface{}); ok {
			pairs = append(pairs, ports.AddressPair{
				IPAddress:  resources.String(pair, "ip_address"),
				MACAddress: resources.String(pair, "mac_address"),
			})
		}
	}
	return pairs
}

func observePort(port *ports.Port) lifecycle.Observation {
	props := map[string]interface{}{
		"id":             port.ID,
		"network_id":     port.NetworkID,
		"name":           port.Name,
		"description":    port.Description,
		"admin_state_up": port.AdminStateUp,
		"mac_address":    port.MACAddress,
		"status":         port.Status,
	}
	if len(port.FixedIPs) > 0 {
		ips := make([]interface{}, 0, len(port.FixedIPs))
		for _, ip := range port.FixedIPs {
			ips = append(ips, map[string]interface{}{"subnet_id": ip.SubnetID, "ip_address": ip.IPAddress})
		}
		props["fixed_ips"] = ips
	}
	if len(port.SecurityGroups) > 0 {
		props["security_groups"] = port.SecurityGroups
	}
	if len(port.AllowedAddressPairs) > 0 {
		pairs := make([]interface{}, 0, len(port.AllowedAddressPairs))
		for _, pair := range port.AllowedAddressPairs {
			p := map[string]interface{}{"ip_address": pair.IPAddress}
			if pair.MACAddress != "" {
				p["mac_address"] = pair.MACAddress
			}
			pairs = append(pairs, p)
		}
		props["allowed_address_pairs"] = pairs
	}
	if len(port.Tags) > 0 {
		props["tags"] = port.Tags
	}
	return lifecycle.Observation{NativeID: port.ID, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypePort,
		PortDescriptor,
		PortSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewPortProvisioner(&neutron{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
