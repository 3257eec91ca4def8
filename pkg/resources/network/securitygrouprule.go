// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/security/rules"
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
	ResourceTypeSecurityGroupRule = "OVH::Network::SecurityGroupRule"
)

var (
	SecurityGroupRuleDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeSecurityGroupRule,
		Discoverable: true,
	}

	SecurityGroupRuleSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields: []string{
			"security_group_id", "direction", "ethertype", "protocol", "port_range_min",
			"port_range_max", "remote_ip_prefix", "remote_group_id", "description",
		},
		Hints: map[string]model.FieldHint{
			"security_group_id": {Required: true, CreateOnly: true},
			"direction":         {Required: true, CreateOnly: true},
			"ethertype":         {Required: true, CreateOnly: true},
			"protocol":          {CreateOnly: true},
			"port_range_min":    {CreateOnly: true},
			"port_range_max":    {CreateOnly: true},
			"remote_ip_prefix":  {CreateOnly: true},
			"remote_group_id":   {CreateOnly: true},
			"description":       {CreateOnly: true},
		},
	}
)

// SecurityGroupRuleDefinition describes security group rules. Neutron has
// no update call for them: every change replaces the rule.
var SecurityGroupRuleDefinition = lifecycle.Definition{
	ResourceType:     ResourceTypeSecurityGroupRule,
	Budget:           lifecycle.BudgetPolicy{Limit: 1},
	Classifier:       openstack.NewClassifier(),
	Validate:         validateSecurityGroupRule,
	IdempotentDelete: true,
	CreateOnly:       registry.CreateOnlyFields(SecurityGroupRuleSchema),
}

func validateSecurityGroupRule(op lifecycle.Operation, m lifecycle.Model) error {
	if op != lifecycle.OperationCreate {
		return nil
	}
	for _, f := range []string{"security_group_id", "direction", "ethertype"} {
		if m.String(f) == "" {
			return fmt.Errorf("%s must be present", f)
		}
	}
	switch rules.RuleDirection(m.String("direction")) {
	case rules.DirIngress, rules.DirEgress:
	default:
		return fmt.Errorf("direction must be ingress or egress, got %q", m.String("direction"))
	}
	switch rules.RuleEtherType(m.String("ethertype")) {
	case rules.EtherType4, rules.EtherType6:
	default:
		return fmt.Errorf("ethertype must be IPv4 or IPv6, got %q", m.String("ethertype"))
	}
	return nil
}

// SecurityGroupRuleRemote translates rule models to Neutron calls.
type SecurityGroupRuleRemote struct {
	API NeutronAPI
}

var _ lifecycle.Remote = (*SecurityGroupRuleRemote)(nil)

// NewSecurityGroupRuleProvisioner builds the formae provisioner for
// security group rules backed by api.
func NewSecurityGroupRuleProvisioner(api NeutronAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(SecurityGroupRuleDefinition, &SecurityGroupRuleRemote{API: api}, opts...))
}

func (r *SecurityGroupRuleRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := rules.CreateOpts{
		SecGroupID:     resources.String(props, "security_group_id"),
		Direction:      rules.RuleDirection(resources.String(props, "direction")),
		EtherType:      rules.RuleEtherType(resources.String(props, "ethertype")),
		Protocol:       rules.RuleProtocol(resources.String(props, "protocol")),
		RemoteIPPrefix: resources.String(props, "remote_ip_prefix"),
		RemoteGroupID:  resources.String(props, "remote_group_id"),
		Description:    resources.String(props, "description"),
	}
	if v, ok := resources.Int(props, "port_range_min"); ok {
		opts.PortRangeMin = v
	}
	if v, ok := resources.Int(props, "port_range_max"); ok {
		opts.PortRangeMax = v
	}

	rule, err := r.API.CreateSecurityGroupRule(ctx, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeSecurityGroupRule(rule), nil
}

func (r *SecurityGroupRuleRemote) Update(context.Context, lifecycle.Model, *lifecycle.Model) (lifecycle.Observation, error) {
	return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindNotUpdatable,
		ResourceTypeSecurityGroupRule+" does not support updates", nil)
}

func (r *SecurityGroupRuleRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.DeleteSecurityGroupRule(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *SecurityGroupRuleRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	rule, err := r.API.GetSecurityGroupRule(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeSecurityGroupRule(rule), nil
}

// List narrows to one group with a security_group_id scope.
func (r *SecurityGroupRuleRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	list, err := r.API.ListSecurityGroupRules(ctx, scope.AdditionalProperties["security_group_id"])
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, rule := range list {
		ids = append(ids, rule.ID)
	}
	return ids, nil
}

func observeSecurityGroupRule(rule *rules.SecGroupRule) lifecycle.Observation {
	props := map[string]interface{}{
		"id":                rule.ID,
		"security_group_id": rule.SecGroupID,
		"direction":         rule.Direction,
		"ethertype":         rule.EtherType,
	}
	if rule.Protocol != "" {
		props["protocol"] = rule.Protocol
	}
	if rule.PortRangeMin != 0 {
		props["port_range_min"] = rule.PortRangeMin
	}
	if rule.PortRangeMax != 0 {
		props["port_range_max"] = rule.PortRangeMax
	}
	if rule.RemoteIPPrefix != "" {
		props["remote_ip_prefix"] = rule.RemoteIPPrefix
	}
	if rule.RemoteGroupID != "" {
		props["remote_group_id"] = rule.RemoteGroupID
	}
	if rule.Description != "" {
		props["description"] = rule.Description
	}
	return lifecycle.Observation{NativeID: rule.ID, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypeSecurityGroupRule,
		SecurityGroupRuleDescriptor,
		SecurityGroupRuleSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewSecurityGroupRuleProvisioner(&neutron{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
