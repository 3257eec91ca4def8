// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/floatingips"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/routers"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/mtu"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/security/groups"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/security/rules"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/ports"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/subnets"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
)

// fakeNeutron serves Neutron objects from memory. statuses scripts the
// status each GetNetwork or GetRouter reports; the last one repeats.
type fakeNeutron struct {
	networks map[string]*Network
	groups   map[string]*groups.SecGroup
	subnets  map[string]*subnets.Subnet
	routers  map[string]*routers.Router
	ports    map[string]*ports.Port
	fips     map[string]*floatingips.FloatingIP
	rules    map[string]*rules.SecGroupRule
	statuses []string
	created  []networks.CreateOptsBuilder
	tagged   map[string][]string
	nextID   int
}

func newFakeNeutron(statuses ...string) *fakeNeutron {
	return &fakeNeutron{
		networks: make(map[string]*Network),
		groups:   make(map[string]*groups.SecGroup),
		subnets:  make(map[string]*subnets.Subnet),
		routers:  make(map[string]*routers.Router),
		ports:    make(map[string]*ports.Port),
		fips:     make(map[string]*floatingips.FloatingIP),
		rules:    make(map[string]*rules.SecGroupRule),
		tagged:   make(map[string][]string),
		statuses: statuses,
	}
}

func notFound() error {
	return &openstack.Error{Code: openstack.FaultItemNotFound, HTTPCode: http.StatusNotFound, Message: "resource not found"}
}

func (f *fakeNeutron) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeNeutron) CreateNetwork(_ context.Context, opts networks.CreateOptsBuilder) (*Network, error) {
	f.created = append(f.created, opts)
	base, size := opts, 0
	if ext, ok := opts.(mtu.CreateOptsExt); ok {
		base, size = ext.CreateOptsBuilder, ext.MTU
	}
	plain := base.(networks.CreateOpts)
	net := &Network{}
	net.ID = f.id("net")
	net.Name = plain.Name
	net.Description = plain.Description
	net.Status = "BUILD"
	net.MTU = size
	f.networks[net.ID] = net
	copied := *net
	return &copied, nil
}

func (f *fakeNeutron) nextStatus(current string) string {
	if len(f.statuses) == 0 {
		return current
	}
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status
}

func (f *fakeNeutron) GetNetwork(_ context.Context, id string) (*Network, error) {
	net, ok := f.networks[id]
	if !ok {
		return nil, notFound()
	}
	net.Status = f.nextStatus(net.Status)
	copied := *net
	return &copied, nil
}

func (f *fakeNeutron) UpdateNetwork(_ context.Context, id string, opts networks.UpdateOpts) (*Network, error) {
	net, ok := f.networks[id]
	if !ok {
		return nil, notFound()
	}
	if opts.Name != nil {
		net.Name = *opts.Name
	}
	if opts.AdminStateUp != nil {
		net.AdminStateUp = *opts.AdminStateUp
	}
	copied := *net
	return &copied, nil
}

func (f *fakeNeutron) DeleteNetwork(_ context.Context, id string) error {
	if _, ok := f.networks[id]; !ok {
		return notFound()
	}
	delete(f.networks, id)
	return nil
}

func (f *fakeNeutron) ListNetworks(context.Context) ([]Network, error) {
	out := make([]Network, 0, len(f.networks))
	for _, n := range f.networks {
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeNeutron) CreateSecurityGroup(_ context.Context, opts groups.CreateOpts) (*groups.SecGroup, error) {
	sg := &groups.SecGroup{ID: f.id("sg"), Name: opts.Name, Description: opts.Description}
	f.groups[sg.ID] = sg
	copied := *sg
	return &copied, nil
}

func (f *fakeNeutron) GetSecurityGroup(_ context.Context, id string) (*groups.SecGroup, error) {
	sg, ok := f.groups[id]
	if !ok {
		return nil, notFound()
	}
	copied := *sg
	return &copied, nil
}

func (f *fakeNeutron) UpdateSecurityGroup(_ context.Context, id string, opts groups.UpdateOpts) (*groups.SecGroup, error) {
	sg, ok := f.groups[id]
	if !ok {
		return nil, notFound()
	}
	if opts.Description != nil {
		sg.Description = *opts.Description
	}
	copied := *sg
	return &copied, nil
}

func (f *fakeNeutron) DeleteSecurityGroup(_ context.Context, id string) error {
	if _, ok := f.groups[id]; !ok {
		return notFound()
	}
	delete(f.groups, id)
	return nil
}

func (f *fakeNeutron) ListSecurityGroups(context.Context) ([]groups.SecGroup, error) {
	out := make([]groups.SecGroup, 0, len(f.groups))
	for _, sg := range f.groups {
		out = append(out, *sg)
	}
	return out, nil
}

func (f *fakeNeutron) ReplaceTags(_ context.Context, kind, id string, tags []string) ([]string, error) {
	f.tagged[kind+"/"+id] = tags
	if net, ok := f.networks[id]; ok && kind == "networks" {
		net.Tags = tags
	}
	if sg, ok := f.groups[id]; ok && kind == "security-groups" {
		sg.Tags = tags
	}
	if sn, ok := f.subnets[id]; ok && kind == "subnets" {
		sn.Tags = tags
	}
	if r, ok := f.routers[id]; ok && kind == "routers" {
		r.Tags = tags
	}
	if port, ok := f.ports[id]; ok && kind == "ports" {
		port.Tags = tags
	}
	if fip, ok := f.fips[id]; ok && kind == "floatingips" {
		fip.Tags = tags
	}
	return tags, nil
}

func (f *fakeNeutron) CreateSubnet(_ context.Context, opts subnets.CreateOpts) (*subnets.Subnet, error) {
	if _, ok := f.networks[opts.NetworkID]; !ok {
		return nil, notFound()
	}
	sn := &subnets.Subnet{
		ID:              f.id("sn"),
		NetworkID:       opts.NetworkID,
		Name:            opts.Name,
		Description:     opts.Description,
		CIDR:            opts.CIDR,
		IPVersion:       int(opts.IPVersion),
		DNSNameservers:  opts.DNSNameservers,
		AllocationPools: opts.AllocationPools,
		EnableDHCP:      true,
	}
	if opts.GatewayIP != nil {
		sn.GatewayIP = *opts.GatewayIP
	}
	if opts.EnableDHCP != nil {
		sn.EnableDHCP = *opts.EnableDHCP
	}
	f.subnets[sn.ID] = sn
	copied := *sn
	return &copied, nil
}

func (f *fakeNeutron) GetSubnet(_ context.Context, id string) (*subnets.Subnet, error) {
	sn, ok := f.subnets[id]
	if !ok {
		return nil, notFound()
	}
	copied := *sn
	return &copied, nil
}

func (f *fakeNeutron) UpdateSubnet(_ context.Context, id string, opts subnets.UpdateOpts) (*subnets.Subnet, error) {
	sn, ok := f.subnets[id]
	if !ok {
		return nil, notFound()
	}
	if opts.Name != nil {
		sn.Name = *opts.Name
	}
	if opts.Description != nil {
		sn.Description = *opts.Description
	}
	if opts.GatewayIP != nil {
		sn.GatewayIP = *opts.GatewayIP
	}
	if opts.EnableDHCP != nil {
		sn.EnableDHCP = *opts.EnableDHCP
	}
	if opts.DNSNameservers != nil {
		sn.DNSNameservers = *opts.DNSNameservers
	}
	copied := *sn
	return &copied, nil
}

func (f *fakeNeutron) DeleteSubnet(_ context.Context, id string) error {
	if _, ok := f.subnets[id]; !ok {
		return notFound()
	}
	delete(f.subnets, id)
	return nil
}

func (f *fakeNeutron) ListSubnets(context.Context) ([]subnets.Subnet, error) {
	out := make([]subnets.Subnet, 0, len(f.subnets))
	for _, sn := range f.subnets {
		out = append(out, *sn)
	}
	return out, nil
}

func (f *fakeNeutron) CreateRouter(_ context.Context, opts routers.CreateOpts) (*routers.Router, error) {
	r := &routers.Router{ID: f.id("router"), Name: opts.Name, Description: opts.Description, Status: "BUILD", AdminStateUp: true}
	if opts.AdminStateUp != nil {
		r.AdminStateUp = *opts.AdminStateUp
	}
	if opts.GatewayInfo != nil {
		r.GatewayInfo = *opts.GatewayInfo
	}
	f.routers[r.ID] = r
	copied := *r
	return &copied, nil
}

func (f *fakeNeutron) GetRouter(_ context.Context, id string) (*routers.Router, error) {
	r, ok := f.routers[id]
	if !ok {
		return nil, notFound()
	}
	r.Status = f.nextStatus(r.Status)
	copied := *r
	return &copied, nil
}

func (f *fakeNeutron) UpdateRouter(_ context.Context, id string, opts routers.UpdateOpts) (*routers.Router, error) {
	r, ok := f.routers[id]
	if !ok {
		return nil, notFound()
	}
	if opts.Name != "" {
		r.Name = opts.Name
	}
	if opts.Description != nil {
		r.Description = *opts.Description
	}
	if opts.AdminStateUp != nil {
		r.AdminStateUp = *opts.AdminStateUp
	}
	if opts.GatewayInfo != nil {
		r.GatewayInfo = *opts.GatewayInfo
	}
	if opts.Routes != nil {
		r.Routes = *opts.Routes
	}
	copied := *r
	return &copied, nil
}

func (f *fakeNeutron) DeleteRouter(_ context.Context, id string) error {
	if _, ok := f.routers[id]; !ok {
		return notFound()
	}
	delete(f.routers, id)
	return nil
}

func (f *fakeNeutron) ListRouters(context.Context) ([]routers.Router, error) {
	out := make([]routers.Router, 0, len(f.routers))
	for _, r := range f.routers {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeNeutron) CreatePort(_ context.Context, opts ports.CreateOpts) (*ports.Port, error) {
	if _, ok := f.networks[opts.NetworkID]; !ok {
		return nil, notFound()
	}
	port := &ports.Port{
		ID:                  f.id("port"),
		NetworkID:           opts.NetworkID,
		Name:                opts.Name,
		Description:         opts.Description,
		Status:              "DOWN",
		AdminStateUp:        true,
		MACAddress:          "fa:16:3e:00:00:01",
		AllowedAddressPairs: opts.AllowedAddressPairs,
	}
	if opts.MACAddress != "" {
		port.MACAddress = opts.MACAddress
	}
	if ips, ok := opts.FixedIPs.([]ports.IP); ok {
		port.FixedIPs = ips
	}
	if opts.SecurityGroups != nil {
		port.SecurityGroups = *opts.SecurityGroups
	}
	if opts.AdminStateUp != nil {
		port.AdminStateUp = *opts.AdminStateUp
	}
	f.ports[port.ID] = port
	copied := *port
	return &copied, nil
}

func (f *fakeNeutron) GetPort(_ context.Context, id string) (*ports.Port, error) {
	port, ok := f.ports[id]
	if !ok {
		return nil, notFound()
	}
	copied := *port
	return &copied, nil
}

func (f *fakeNeutron) UpdatePort(_ context.Context, id string, opts ports.UpdateOpts) (*ports.Port, error) {
	port, ok := f.ports[id]
	if !ok {
		return nil, notFound()
	}
	if opts.Name != nil {
		port.Name = *opts.Name
	}
	if opts.Description != nil {
		port.Description = *opts.Description
	}
	if opts.AdminStateUp != nil {
		port.AdminStateUp = *opts.AdminStateUp
	}
	if opts.SecurityGroups != nil {
		port.SecurityGroups = *opts.SecurityGroups
	}
	if opts.AllowedAddressPairs != nil {
		port.AllowedAddressPairs = *opts.AllowedAddressPairs
	}
	copied := *port
	return &copied, nil
}

func (f *fakeNeutron) DeletePort(_ context.Context, id string) error {
	if _, ok := f.ports[id]; !ok {
		return notFound()
	}
	delete(f.ports, id)
	return nil
}

func (f *fakeNeutron) ListPorts(context.Context) ([]ports.Port, error) {
	out := make([]ports.Port, 0, len(f.ports))
	for _, port := range f.ports {
		out = append(out, *port)
	}
	return out, nil
}

func (f *fakeNeutron) CreateFloatingIP(_ context.Context, opts floatingips.CreateOpts) (*floatingips.FloatingIP, error) {
	fip := &floatingips.FloatingIP{
		ID:                f.id("fip"),
		FloatingNetworkID: opts.FloatingNetworkID,
		FloatingIP:        "203.0.113.10",
		PortID:            opts.PortID,
		FixedIP:           opts.FixedIP,
		Description:       opts.Description,
		Status:            "DOWN",
	}
	if opts.FloatingIP != "" {
		fip.FloatingIP = opts.FloatingIP
	}
	f.fips[fip.ID] = fip
	copied := *fip
	return &copied, nil
}

func (f *fakeNeutron) GetFloatingIP(_ context.Context, id string) (*floatingips.FloatingIP, error) {
	fip, ok := f.fips[id]
	if !ok {
		return nil, notFound()
	}
	copied := *fip
	return &copied, nil
}

func (f *fakeNeutron) UpdateFloatingIP(_ context.Context, id string, opts floatingips.UpdateOpts) (*floatingips.FloatingIP, error) {
	fip, ok := f.fips[id]
	if !ok {
		return nil, notFound()
	}
	if opts.PortID != nil {
		fip.PortID = *opts.PortID
		fip.FixedIP = opts.FixedIP
		fip.Status = "DOWN"
		if fip.PortID != "" {
			fip.Status = "ACTIVE"
		}
	}
	if opts.Description != nil {
		fip.Description = *opts.Description
	}
	copied := *fip
	return &copied, nil
}

func (f *fakeNeutron) DeleteFloatingIP(_ context.Context, id string) error {
	if _, ok := f.fips[id]; !ok {
		return notFound()
	}
	delete(f.fips, id)
	return nil
}

func (f *fakeNeutron) ListFloatingIPs(context.Context) ([]floatingips.FloatingIP, error) {
	out := make([]floatingips.FloatingIP, 0, len(f.fips))
	for _, fip := range f.fips {
		out = append(out, *fip)
	}
	return out, nil
}

func (f *fakeNeutron) CreateSecurityGroupRule(_ context.Context, opts rules.CreateOpts) (*rules.SecGroupRule, error) {
	if _, ok := f.groups[opts.SecGroupID]; !ok {
		return nil, notFound()
	}
	rule := &rules.SecGroupRule{
		ID:             f.id("rule"),
		SecGroupID:     opts.SecGroupID,
		Direction:      string(opts.Direction),
		EtherType:      string(opts.EtherType),
		Protocol:       string(opts.Protocol),
		PortRangeMin:   opts.PortRangeMin,
		PortRangeMax:   opts.PortRangeMax,
		RemoteIPPrefix: opts.RemoteIPPrefix,
		RemoteGroupID:  opts.RemoteGroupID,
		Description:    opts.Description,
	}
	f.rules[rule.ID] = rule
	copied := *rule
	return &copied, nil
}

func (f *fakeNeutron) GetSecurityGroupRule(_ context.Context, id string) (*rules.SecGroupRule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return nil, notFound()
	}
	copied := *rule
	return &copied, nil
}

func (f *fakeNeutron) DeleteSecurityGroupRule(_ context.Context, id string) error {
	if _, ok := f.rules[id]; !ok {
		return notFound()
	}
	delete(f.rules, id)
	return nil
}

func (f *fakeNeutron) ListSecurityGroupRules(_ context.Context, group string) ([]rules.SecGroupRule, error) {
	out := make([]rules.SecGroupRule, 0, len(f.rules))
	for _, rule := range f.rules {
		if group == "" || rule.SecGroupID == group {
			out = append(out, *rule)
		}
	}
	return out, nil
}
