// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/attributestags"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/floatingips"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/routers"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/mtu"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/security/groups"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/security/rules"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/ports"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/subnets"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
)

// Network is a Neutron network with its MTU extension field.
type Network struct {
	networks.Network
	mtu.NetworkMTUExt
}

// NeutronAPI is the subset of the Networking v2 API the translators use.
type NeutronAPI interface {
	CreateNetwork(ctx context.Context, opts networks.CreateOptsBuilder) (*Network, error)
	GetNetwork(ctx context.Context, id string) (*Network, error)
	UpdateNetwork(ctx context.Context, id string, opts networks.UpdateOpts) (*Network, error)
	DeleteNetwork(ctx context.Context, id string) error
	ListNetworks(ctx context.Context) ([]Network, error)

	CreateSecurityGroup(ctx context.Context, opts groups.CreateOpts) (*groups.SecGroup, error)
	GetSecurityGroup(ctx context.Context, id string) (*groups.SecGroup, error)
	UpdateSecurityGroup(ctx context.Context, id string, opts groups.UpdateOpts) (*groups.SecGroup, error)
	DeleteSecurityGroup(ctx context.Context, id string) error
	ListSecurityGroups(ctx context.Context) ([]groups.SecGroup, error)

	CreateSecurityGroupRule(ctx context.Context, opts rules.CreateOpts) (*rules.SecGroupRule, error)
	GetSecurityGroupRule(ctx context.Context, id string) (*rules.SecGroupRule, error)
	DeleteSecurityGroupRule(ctx context.Context, id string) error
	// ListSecurityGroupRules lists the rules of one group, or all of them
	// when group is empty.
	ListSecurityGroupRules(ctx context.Context, group string) ([]rules.SecGroupRule, error)

	CreateSubnet(ctx context.Context, opts subnets.CreateOpts) (*subnets.Subnet, error)
	GetSubnet(ctx context.Context, id string) (*subnets.Subnet, error)
	UpdateSubnet(ctx context.Context, id string, opts subnets.UpdateOpts) (*subnets.Subnet, error)
	DeleteSubnet(ctx context.Context, id string) error
	ListSubnets(ctx context.Context) ([]subnets.Subnet, error)

	CreateRouter(ctx context.Context, opts routers.CreateOpts) (*routers.Router, error)
	GetRouter(ctx context.Context, id string) (*routers.Router, error)
	UpdateRouter(ctx context.Context, id string, opts routers.UpdateOpts) (*routers.Router, error)
	DeleteRouter(ctx context.Context, id string) error
	ListRouters(ctx context.Context) ([]routers.Router, error)

	CreatePort(ctx context.Context, opts ports.CreateOpts) (*ports.Port, error)
	GetPort(ctx context.Context, id string) (*ports.Port, error)
	UpdatePort(ctx context.Context, id string, opts ports.UpdateOpts) (*ports.Port, error)
	DeletePort(ctx context.Context, id string) error
	ListPorts(ctx context.Context) ([]ports.Port, error)

	CreateFloatingIP(ctx context.Context, opts floatingips.CreateOpts) (*floatingips.FloatingIP, error)
	GetFloatingIP(ctx context.Context, id string) (*floatingips.FloatingIP, error)
	UpdateFloatingIP(ctx context.Context, id string, opts floatingips.UpdateOpts) (*floatingips.FloatingIP, error)
	DeleteFloatingIP(ctx context.Context, id string) error
	ListFloatingIPs(ctx context.Context) ([]floatingips.FloatingIP, error)

	// ReplaceTags sets the full tag list of a resource of the given kind
	// ("networks", "security-groups", "subnets", "routers", "ports", "floatingips").
	ReplaceTags(ctx context.Context, kind, id string, tags []string) ([]string, error)
}

// neutron is the gophercloud implementation of NeutronAPI. The OpenStack
// session is opened on first use.
type neutron struct {
	client *client.Client
}

var _ NeutronAPI = (*neutron)(nil)

func (n *neutron) service(ctx context.Context) (*gophercloud.ServiceClient, error) {
	os, err := n.client.OpenStack(ctx)
	if err != nil {
		return nil, err
	}
	return os.NetworkClient, nil
}

func (n *neutron) CreateNetwork(ctx context.Context, opts networks.CreateOptsBuilder) (*Network, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	var net Network
	if err := networks.Create(ctx, sc, opts).ExtractInto(&net); err != nil {
		return nil, openstack.Wrap(err)
	}
	return &net, nil
}

func (n *neutron) GetNetwork(ctx context.Context, id string) (*Network, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	var net Network
	if err := networks.Get(ctx, sc, id).ExtractInto(&net); err != nil {
		return nil, openstack.Wrap(err)
	}
	return &net, nil
}

func (n *neutron) UpdateNetwork(ctx context.Context, id string, opts networks.UpdateOpts) (*Network, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	var net Network
	if err := networks.Update(ctx, sc, id, opts).ExtractInto(&net); err != nil {
		return nil, openstack.Wrap(err)
	}
	return &net, nil
}

func (n *neutron) DeleteNetwork(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(networks.Delete(ctx, sc, id).ExtractErr())
}

func (n *neutron) ListNetworks(ctx context.Context) ([]Network, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := networks.List(sc, networks.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	var list []Network
	if err := networks.ExtractNetworksInto(pages, &list); err != nil {
		return nil, openstack.Wrap(err)
	}
	return list, nil
}

func (n *neutron) CreateSecurityGroup(ctx context.Context, opts groups.CreateOpts) (*groups.SecGroup, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	sg, err := groups.Create(ctx, sc, opts).Extract()
	return sg, openstack.Wrap(err)
}

func (n *neutron) GetSecurityGroup(ctx context.Context, id string) (*groups.SecGroup, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	sg, err := groups.Get(ctx, sc, id).Extract()
	return sg, openstack.Wrap(err)
}

func (n *neutron) UpdateSecurityGroup(ctx context.Context, id string, opts groups.UpdateOpts) (*groups.SecGroup, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	sg, err := groups.Update(ctx, sc, id, opts).Extract()
	return sg, openstack.Wrap(err)
}

func (n *neutron) DeleteSecurityGroup(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(groups.Delete(ctx, sc, id).ExtractErr())
}

func (n *neutron) ListSecurityGroups(ctx context.Context) ([]groups.SecGroup, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := groups.List(sc, groups.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := groups.ExtractGroups(pages)
	return list, openstack.Wrap(err)
}

func (n *neutron) CreateSecurityGroupRule(ctx context.Context, opts rules.CreateOpts) (*rules.SecGroupRule, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	rule, err := rules.Create(ctx, sc, opts).Extract()
	return rule, openstack.Wrap(err)
}

func (n *neutron) GetSecurityGroupRule(ctx context.Context, id string) (*rules.SecGroupRule, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	rule, err := rules.Get(ctx, sc, id).Extract()
	return rule, openstack.Wrap(err)
}

func (n *neutron) DeleteSecurityGroupRule(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(rules.Delete(ctx, sc, id).ExtractErr())
}

func (n *neutron) ListSecurityGroupRules(ctx context.Context, group string) ([]rules.SecGroupRule, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := rules.List(sc, rules.ListOpts{SecGroupID: group}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := rules.ExtractRules(pages)
	return list, openstack.Wrap(err)
}

func (n *neutron) CreateSubnet(ctx context.Context, opts subnets.CreateOpts) (*subnets.Subnet, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	sn, err := subnets.Create(ctx, sc, opts).Extract()
	return sn, openstack.Wrap(err)
}

func (n *neutron) GetSubnet(ctx context.Context, id string) (*subnets.Subnet, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	sn, err := subnets.Get(ctx, sc, id).Extract()
	return sn, openstack.Wrap(err)
}

func (n *neutron) UpdateSubnet(ctx context.Context, id string, opts subnets.UpdateOpts) (*subnets.Subnet, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	sn, err := subnets.Update(ctx, sc, id, opts).Extract()
	return sn, openstack.Wrap(err)
}

func (n *neutron) DeleteSubnet(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(subnets.Delete(ctx, sc, id).ExtractErr())
}

func (n *neutron) ListSubnets(ctx context.Context) ([]subnets.Subnet, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := subnets.List(sc, subnets.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := subnets.ExtractSubnets(pages)
	return list, openstack.Wrap(err)
}

func (n *neutron) CreateRouter(ctx context.Context, opts routers.CreateOpts) (*routers.Router, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	r, err := routers.Create(ctx, sc, opts).Extract()
	return r, openstack.Wrap(err)
}

func (n *neutron) GetRouter(ctx context.Context, id string) (*routers.Router, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	r, err := routers.Get(ctx, sc, id).Extract()
	return r, openstack.Wrap(err)
}

func (n *neutron) UpdateRouter(ctx context.Context, id string, opts routers.UpdateOpts) (*routers.Router, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	r, err := routers.Update(ctx, sc, id, opts).Extract()
	return r, openstack.Wrap(err)
}

func (n *neutron) DeleteRouter(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(routers.Delete(ctx, sc, id).ExtractErr())
}

func (n *neutron) ListRouters(ctx context.Context) ([]routers.Router, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := routers.List(sc, routers.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := routers.ExtractRouters(pages)
	return list, openstack.Wrap(err)
}

func (n *neutron) CreatePort(ctx context.Context, opts ports.CreateOpts) (*ports.Port, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	port, err := ports.Create(ctx, sc, opts).Extract()
	return port, openstack.Wrap(err)
}

func (n *neutron) GetPort(ctx context.Context, id string) (*ports.Port, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	port, err := ports.Get(ctx, sc, id).Extract()
	return port, openstack.Wrap(err)
}

func (n *neutron) UpdatePort(ctx context.Context, id string, opts ports.UpdateOpts) (*ports.Port, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	port, err := ports.Update(ctx, sc, id, opts).Extract()
	return port, openstack.Wrap(err)
}

func (n *neutron) DeletePort(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(ports.Delete(ctx, sc, id).ExtractErr())
}

func (n *neutron) ListPorts(ctx context.Context) ([]ports.Port, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := ports.List(sc, ports.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := ports.ExtractPorts(pages)
	return list, openstack.Wrap(err)
}

func (n *neutron) CreateFloatingIP(ctx context.Context, opts floatingips.CreateOpts) (*floatingips.FloatingIP, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	fip, err := floatingips.Create(ctx, sc, opts).Extract()
	return fip, openstack.Wrap(err)
}

func (n *neutron) GetFloatingIP(ctx context.Context, id string) (*floatingips.FloatingIP, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	fip, err := floatingips.Get(ctx, sc, id).Extract()
	return fip, openstack.Wrap(err)
}

func (n *neutron) UpdateFloatingIP(ctx context.Context, id string, opts floatingips.UpdateOpts) (*floatingips.FloatingIP, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	fip, err := floatingips.Update(ctx, sc, id, opts).Extract()
	return fip, openstack.Wrap(err)
}

func (n *neutron) DeleteFloatingIP(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(floatingips.Delete(ctx, sc, id).ExtractErr())
}

func (n *neutron) ListFloatingIPs(ctx context.Context) ([]floatingips.FloatingIP, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := floatingips.List(sc, floatingips.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := floatingips.ExtractFloatingIPs(pages)
	return list, openstack.Wrap(err)
}

func (n *neutron) ReplaceTags(ctx context.Context, kind, id string, tags []string) ([]string, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	out, err := attributestags.ReplaceAll(ctx, sc, kind, id, attributestags.ReplaceAllOpts{Tags: tags}).Extract()
	return out, openstack.Wrap(err)
}
