// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package volume

import (
	"context"
	"errors"

	"github.com/gophercloud/gophercloud/v2/openstack/blockstorage/v3/volumes"
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
	ResourceTypeVolume = "OVH::Volume::Volume"
)

// Volume schema and descriptor
var (
	VolumeDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeVolume,
		Discoverable: true,
	}

	VolumeSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields:       []string{"name", "description", "size", "availability_zone", "volume_type", "metadata", "image_ref", "snapshot_id", "source_vol_id"},
		Hints: map[string]model.FieldHint{
			"size": {
				Required:   true,
				CreateOnly: true,
			},
			"availability_zone": {CreateOnly: true},
			"volume_type":       {CreateOnly: true},
			"image_ref":         {CreateOnly: true},
			"snapshot_id":       {CreateOnly: true},
			"source_vol_id":     {CreateOnly: true},
		},
	}
)

// Definition is the stabilization policy of a Cinder volume.
var Definition = lifecycle.Definition{
	ResourceType: ResourceTypeVolume,
	Budget: lifecycle.BudgetPolicy{
		Mode:         lifecycle.BudgetAttempts,
		Limit:        60,
		InitialDelay: 15,
		PollDelay:    15,
	},
	Classifier: openstack.NewClassifier(),
	ClassifyStatus: lifecycle.StatusMap{
		Ready:  []string{"available", "in-use"},
		Failed: []string{"error", "error_deleting", "error_restoring", "error_extending"},
		Gone:   []string{"deleted"},
	}.Classify,
	Validate: func(_ lifecycle.Operation, m lifecycle.Model) error {
		if m.NativeID != "" {
			return nil
		}
		if _, ok := resources.Int(m.Properties, "size"); !ok {
			return errors.New("either a native id, or size, must be present")
		}
		return nil
	},
	IdempotentDelete: true,
	SupportsUpdate:   true,
	CreateOnly:       registry.CreateOnlyFields(VolumeSchema),
}

// VolumeAPI is the subset of the Block Storage v3 API the translator uses.
type VolumeAPI interface {
	Create(ctx context.Context, opts volumes.CreateOpts) (*volumes.Volume, error)
	Get(ctx context.Context, id string) (*volumes.Volume, error)
	Update(ctx context.Context, id string, opts volumes.UpdateOpts) (*volumes.Volume, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]volumes.Volume, error)
}

// Remote translates volume models to Block Storage calls.
type Remote struct {
	API VolumeAPI
}

var _ lifecycle.Remote = (*Remote)(nil)

// NewProvisioner builds the formae provisioner for volumes backed by api.
func NewProvisioner(api VolumeAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(Definition, &Remote{API: api}, opts...))
}

func (r *Remote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	size, _ := resources.Int(props, "size")
	vol, err := r.API.Create(ctx, volumes.CreateOpts{
		Size:             size,
		Name:             resources.String(props, "name"),
		Description:      resources.String(props, "description"),
		AvailabilityZone: resources.String(props, "availability_zone"),
		VolumeType:       resources.String(props, "volume_type"),
		Metadata:         resources.StringMap(props, "metadata"),
		ImageID:          resources.String(props, "image_ref"),
		SnapshotID:       resources.String(props, "snapshot_id"),
		SourceVolID:      resources.String(props, "source_vol_id"),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observe(vol), nil
}

// Update changes the mutable fields: name, description and metadata.
func (r *Remote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := volumes.UpdateOpts{Metadata: resources.StringMap(props, "metadata")}
	if name, ok := props["name"].(string); ok {
		opts.Name = &name
	}
	if description, ok := props["description"].(string); ok {
		opts.Description = &description
	}

	vol, err := r.API.Update(ctx, desired.NativeID, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	obs := observe(vol)
	// Renames apply immediately; the volume status says nothing about them.
	obs.Status = ""
	return obs, nil
}

func (r *Remote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.Delete(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID, Status: "deleting"}, nil
}

func (r *Remote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	vol, err := r.API.Get(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observe(vol), nil
}

func (r *Remote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	vols, err := r.API.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(vols))
	for _, v := range vols {
		ids = append(ids, v.ID)
	}
	return ids, nil
}

func observe(vol *volumes.Volume) lifecycle.Observation {
	return lifecycle.Observation{
		NativeID:   vol.ID,
		Status:     vol.Status,
		Properties: volumeProperties(vol),
	}
}

func volumeProperties(vol *volumes.Volume) map[string]interface{} {
	props := map[string]interface{}{
		"id":          vol.ID,
		"name":        vol.Name,
		"description": vol.Description,
		"size":        vol.Size,
		"status":      vol.Status,
	}
	if vol.AvailabilityZone != "" {
		props["availability_zone"] = vol.AvailabilityZone
	}
	if vol.VolumeType != "" {
		props["volume_type"] = vol.VolumeType
	}
	if len(vol.Metadata) > 0 {
		props["metadata"] = vol.Metadata
	}
	if vol.SnapshotID != "" {
		props["snapshot_id"] = vol.SnapshotID
	}
	if vol.SourceVolID != "" {
		props["source_vol_id"] = vol.SourceVolID
	}
	return props
}

func init() {
	registry.Register(
		ResourceTypeVolume,
		VolumeDescriptor,
		VolumeSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewProvisioner(&cinder{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
