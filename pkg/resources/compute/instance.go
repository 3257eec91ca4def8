// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compute

import (
	"context"
	"errors"

	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/keypairs"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"
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
	ResourceTypeInstance = "OVH::Compute::Instance"
)

// Instance schema and descriptor
var (
	InstanceDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeInstance,
		Discoverable: true,
	}

	InstanceSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields: []string{
			"name", "flavor_id", "image_id", "networks",
			"security_groups", "key_name", "user_data",
			"availability_zone", "metadata", "config_drive",
		},
		Hints: map[string]model.FieldHint{
			"name":              {Required: true},
			"flavor_id":         {Required: true, CreateOnly: true},
			"image_id":          {Required: true, CreateOnly: true},
			"networks":          {CreateOnly: true},
			"key_name":          {CreateOnly: true},
			"user_data":         {CreateOnly: true},
			"availability_zone": {CreateOnly: true},
			"config_drive":      {CreateOnly: true},
		},
	}
)

// InstanceDefinition is the stabilization policy of a Nova server. Builds
// are bounded by wall clock rather than attempts.
var InstanceDefinition = lifecycle.Definition{
	ResourceType: ResourceTypeInstance,
	Budget: lifecycle.BudgetPolicy{
		Mode:         lifecycle.BudgetTimeout,
		Limit:        1200,
		InitialDelay: 15,
		PollDelay:    15,
	},
	Classifier: openstack.NewClassifier(),
	ClassifyStatus: lifecycle.StatusMap{
		Ready:  []string{"ACTIVE"},
		Failed: []string{"ERROR"},
		Gone:   []string{"DELETED", "SOFT_DELETED"},
	}.Classify,
	Validate: func(_ lifecycle.Operation, m lifecycle.Model) error {
		if m.NativeID != "" {
			return nil
		}
		if m.String("name") == "" || m.String("flavor_id") == "" || m.String("image_id") == "" {
			return errors.New("either a native id, or name, flavor_id and image_id must be present")
		}
		return nil
	},
	IdempotentDelete: true,
	SupportsUpdate:   true,
	CreateOnly:       registry.CreateOnlyFields(InstanceSchema),
}

// InstanceRemote translates instance models to Nova calls.
type InstanceRemote struct {
	API ServerAPI
}

var _ lifecycle.Remote = (*InstanceRemote)(nil)

// NewInstanceProvisioner builds the formae provisioner for instances backed by api.
func NewInstanceProvisioner(api ServerAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(InstanceDefinition, &InstanceRemote{API: api}, opts...))
}

func (r *InstanceRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	server, err := r.API.Create(ctx, createOpts(desired.Properties))
	if err != nil {
		return lifecycle.Observation{}, err
	}
	obs := observeServer(server)
	// The create response only carries the id and admin password.
	if obs.Status == "" {
		obs.Status = "BUILD"
	}
	return obs, nil
}

// Update renames the server and replaces its metadata. Nova applies both
// synchronously.
func (r *InstanceRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	if metadata := resources.StringMap(desired.Properties, "metadata"); metadata != nil {
		if err := r.API.ResetMetadata(ctx, desired.NativeID, metadata); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	server, err := r.API.Update(ctx, desired.NativeID, servers.UpdateOpts{Name: desired.String("name")})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	obs := observeServer(server)
	obs.Status = ""
	return obs, nil
}

func (r *InstanceRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.Delete(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID, Status: "DELETING"}, nil
}

func (r *InstanceRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	server, err := r.API.Get(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeServer(server), nil
}

func (r *InstanceRemote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	list, err := r.API.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func createOpts(props map[string]interface{}) servers.CreateOptsBuilder {
	opts := servers.CreateOpts{
		Name:             resources.String(props, "name"),
		FlavorRef:        resources.String(props, "flavor_id"),
		ImageRef:         resources.String(props, "image_id"),
		SecurityGroups:   resources.Strings(props, "security_groups"),
		AvailabilityZone: resources.String(props, "availability_zone"),
		Metadata:         resources.StringMap(props, "metadata"),
	}
	if userData := resources.String(props, "user_data"); userData != "" {
		opts.UserData = []byte(userData)
	}
	if configDrive, ok := resources.Bool(props, "config_drive"); ok {
		opts.ConfigDrive = &configDrive
	}
	if networks, ok := props["networks"].([]interface{}); ok {
		opts.Networks = make([]servers.Network, 0, len(networks))
		for _, raw := range networks {
			n, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			opts.Networks = append(opts.Networks, servers.Network{
				UUID:    resources.String(n, "uuid"),
				Port:    resources.String(n, "port"),
				FixedIP: resources.String(n, "fixed_ip"),
			})
		}
	}

	if keyName := resources.String(props, "key_name"); keyName != "" {
		return keypairs.CreateOptsExt{CreateOptsBuilder: opts, KeyName: keyName}
	}
	return opts
}

func observeServer(server *servers.Server) lifecycle.Observation {
	return lifecycle.Observation{
		NativeID:   server.ID,
		Status:     server.Status,
		StatusInfo: server.Fault.Message,
		Properties: instanceProperties(server),
	}
}

func instanceProperties(server *servers.Server) map[string]interface{} {
	props := map[string]interface{}{
		"id":   server.ID,
		"name": server.Name,
	}
	if flavorID, ok := server.Flavor["id"].(string); ok {
		props["flavor_id"] = flavorID
	}
	if imageID, ok := server.Image["id"].(string); ok {
		props["image_id"] = imageID
	}
	if server.KeyName != "" {
		props["key_name"] = server.KeyName
	}
	if len(server.Metadata) > 0 {
		props["metadata"] = server.Metadata
	}
	if len(server.SecurityGroups) > 0 {
		names := make([]string, 0, len(server.SecurityGroups))
		for _, sg := range server.SecurityGroups {
			if name, ok := sg["name"].(string); ok {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			props["security_groups"] = names
		}
	}
	if server.AvailabilityZone != "" {
		props["availability_zone"] = server.AvailabilityZone
	}
	if server.Status != "" {
		props["status"] = server.Status
	}
	return props
}

func init() {
	registry.Register(
		ResourceTypeInstance,
		InstanceDescriptor,
		InstanceSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewInstanceProvisioner(novaServers{&nova{client: c}}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
