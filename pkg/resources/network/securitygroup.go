// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"errors"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/security/groups"
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
	ResourceTypeSecurityGroup = "OVH::Network::SecurityGroup"
)

// SecurityGroup schema and descriptor
var (
	SecurityGroupDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeSecurityGroup,
		Discoverable: true,
	}

	SecurityGroupSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields:       []string{"name", "description", "tags"},
		Hints: map[string]model.FieldHint{
			"name": {Required: true, CreateOnly: true},
		},
	}
)

// SecurityGroupDefinition describes security groups. They carry no status.
var SecurityGroupDefinition = lifecycle.Definition{
	ResourceType: ResourceTypeSecurityGroup,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   openstack.NewClassifier(),
	Validate: func(_ lifecycle.Operation, m lifecycle.Model) error {
		if m.NativeID == "" && m.String("name") == "" {
			return errors.New("either a native id, or name, must be present")
		}
		return nil
	},
	SupportsUpdate: true,
	CreateOnly:     registry.CreateOnlyFields(SecurityGroupSchema),
}

// SecurityGroupRemote translates security group models to Neutron calls.
type SecurityGroupRemote struct {
	API NeutronAPI
}

var _ lifecycle.Remote = (*SecurityGroupRemote)(nil)

// NewSecurityGroupProvisioner builds the formae provisioner for security groups.
func NewSecurityGroupProvisioner(api NeutronAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(SecurityGroupDefinition, &SecurityGroupRemote{API: api}, opts...))
}

func (r *SecurityGroupRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	sg, err := r.API.CreateSecurityGroup(ctx, groups.CreateOpts{
		Name:        desired.String("name"),
		Description: desired.String("description"),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if tags := resources.Strings(desired.Properties, "tags"); len(tags) > 0 {
		if sg.Tags, err = r.API.ReplaceTags(ctx, "security-groups", sg.ID, tags); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeSecurityGroup(sg), nil
}

func (r *SecurityGroupRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	opts := groups.UpdateOpts{}
	if _, ok := desired.Properties["description"]; ok {
		description := desired.String("description")
		opts.Description = &description
	}
	sg, err := r.API.UpdateSecurityGroup(ctx, desired.NativeID, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, ok := desired.Properties["tags"]; ok {
		if sg.Tags, err = r.API.ReplaceTags(ctx, "security-groups", desired.NativeID, resources.Strings(desired.Properties, "tags")); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeSecurityGroup(sg), nil
}

func (r *SecurityGroupRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.DeleteSecurityGroup(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *SecurityGroupRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	sg, err := r.API.GetSecurityGroup(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeSecurityGroup(sg), nil
}

func (r *SecurityGroupRemote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	list, err := r.API.ListSecurityGroups(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, sg := range list {
		ids = append(ids, sg.ID)
	}
	return ids, nil
}

func observeSecurityGroup(sg *groups.SecGroup) lifecycle.Observation {
	props := map[string]interface{}{
		"id":          sg.ID,
		"name":        sg.Name,
		"description": sg.Description,
	}
	if len(sg.Tags) > 0 {
		props["tags"] = sg.Tags
	}
	return lifecycle.Observation{NativeID: sg.ID, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypeSecurityGroup,
		SecurityGroupDescriptor,
		SecurityGroupSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewSecurityGroupProvisioner(&neutron{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
