// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compute

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// VolumeAttachmentResourceType is the resource type for a block volume
// attached to an instance.
const VolumeAttachmentResourceType = "OVH::Compute::VolumeAttachment"

const statusAttached = "ATTACHED"

var (
	VolumeAttachmentDescriptor = plugin.ResourceDescriptor{
		Type:         VolumeAttachmentResourceType,
		Discoverable: true,
	}

	VolumeAttachmentSchema = model.Schema{
		Identifier:   "volume_id",
		Discoverable: true,
		Fields:       []string{"volume_id", "instance_id"},
		Hints: map[string]model.FieldHint{
			"volume_id":   {Required: true, CreateOnly: true},
			"instance_id": {Required: true, CreateOnly: true},
		},
	}
)

// VolumeAttachmentDefinition describes attachments. Both attach and detach
// settle asynchronously; the volume status tells when.
var VolumeAttachmentDefinition = lifecycle.Definition{
	ResourceType: VolumeAttachmentResourceType,
	Budget: lifecycle.BudgetPolicy{
		Mode:         lifecycle.BudgetAttempts,
		Limit:        40,
		InitialDelay: 5,
		PollDelay:    10,
	},
	Classifier: ovhtransport.NewClassifier(),
	ClassifyStatus: lifecycle.StatusMap{
		Ready:  []string{statusAttached},
		Failed: []string{"ERROR", "ERROR_ATTACHING", "ERROR_DETACHING"},
	}.Classify,
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op == lifecycle.OperationCreate && (m.String("volume_id") == "" || m.String("instance_id") == "") {
			return errors.New("volume_id and instance_id must be present")
		}
		return nil
	},
	CreateOnly:       registry.CreateOnlyFields(VolumeAttachmentSchema),
	IdempotentDelete: true,
}

// VolumeAttachmentRemote attaches and detaches volumes through the volume
// actions of the OVH API. The native ID is project/volumeId/instanceId.
type VolumeAttachmentRemote struct {
	Client  base.Doer
	Project string
}

var _ lifecycle.Remote = (*VolumeAttachmentRemote)(nil)

// NewVolumeAttachmentProvisioner builds the formae provisioner over client.
func NewVolumeAttachmentProvisioner(client base.Doer, project string, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(VolumeAttachmentDefinition,
		&VolumeAttachmentRemote{Client: client, Project: project}, opts...))
}

type attachment struct {
	project, volume, instance string
}

func (a attachment) nativeID() string {
	return fmt.Sprintf("%s/%s/%s", a.project, a.volume, a.instance)
}

func (a attachment) volumePath() string {
	return fmt.Sprintf("/cloud/project/%s/volume/%s", a.project, a.volume)
}

func parseAttachment(nativeID string) (attachment, error) {
	parts := strings.SplitN(nativeID, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return attachment{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			fmt.Sprintf("invalid native ID %q, expected project/volumeId/instanceId", nativeID), nil)
	}
	return attachment{project: parts[0], volume: parts[1], instance: parts[2]}, nil
}

func (r *VolumeAttachmentRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	if r.Project == "" {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			"project is required but not found in target config", nil)
	}
	a := attachment{project: r.Project, volume: desired.String("volume_id"), instance: desired.String("instance_id")}
	if _, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "POST",
		Path:   a.volumePath() + "/attach",
		Body:   map[string]interface{}{"instanceId": a.instance},
	}); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{
		NativeID:   a.nativeID(),
		Status:     "ATTACHING",
		Properties: map[string]interface{}{"volume_id": a.volume, "instance_id": a.instance},
	}, nil
}

func (r *VolumeAttachmentRemote) Update(_ context.Context, _ lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindNotUpdatable,
		VolumeAttachmentResourceType+" does not support updates", nil)
}

// Delete detaches the volume. A volume that is already gone counts as
// detached.
func (r *VolumeAttachmentRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	a, err := parseAttachment(current.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	_, err = r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "POST",
		Path:   a.volumePath() + "/detach",
		Body:   map[string]interface{}{"instanceId": a.instance},
	})
	var terr *ovhtransport.Error
	if errors.As(err, &terr) && terr.Code == ovhtransport.ErrorCodeResourceNotFound {
		return lifecycle.Observation{NativeID: current.NativeID}, nil
	}
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID, Status: "DETACHING"}, nil
}

// Read reports ATTACHED once the volume is in use by the instance, the
// volume status while it moves, and NotFound once it is detached.
func (r *VolumeAttachmentRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	a, err := parseAttachment(nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{Method: "GET", Path: a.volumePath()})
	if err != nil {
		return lifecycle.Observation{}, err
	}

	status, _ := response.Body["status"].(string)
	attached := false
	for _, id := range attachedTo(response.Body) {
		if id == a.instance {
			attached = true
		}
	}
	switch {
	case attached && strings.EqualFold(status, "in-use"):
		status = statusAttached
	case attached || isMoving(status):
		status = strings.ToUpper(status)
	default:
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindNotFound,
			fmt.Sprintf("volume %s is not attached to instance %s", a.volume, a.instance), nil)
	}
	return lifecycle.Observation{
		NativeID:   nativeID,
		Status:     status,
		Properties: map[string]interface{}{"volume_id": a.volume, "instance_id": a.instance},
	}, nil
}

// List reports one attachment per instance a volume of the project is
// attached to.
func (r *VolumeAttachmentRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	project := r.Project
	if scope.Project != "" {
		project = scope.Project
	}
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "GET",
		Path:   fmt.Sprintf("/cloud/project/%s/volume", project),
	})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, item := range response.BodyArray {
		vol, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		volumeID, _ := vol["id"].(string)
		for _, instance := range attachedTo(vol) {
			ids = append(ids, attachment{project: project, volume: volumeID, instance: instance}.nativeID())
		}
	}
	return ids, nil
}

func attachedTo(vol map[string]interface{}) []string {
	list, _ := vol["attachedTo"].([]interface{})
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isMoving(status string) bool {
	switch strings.ToLower(status) {
	case "attaching", "detaching", "reserved":
		return true
	}
	return false
}

func init() {
	registry.Register(
		VolumeAttachmentResourceType,
		VolumeAttachmentDescriptor,
		VolumeAttachmentSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			doer, err := c.OVH()
			if err != nil {
				return nil, err
			}
			return NewVolumeAttachmentProvisioner(doer, c.Config.ProjectID, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
